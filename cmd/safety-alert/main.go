package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-safety-alerts/internal/alerting"
	"github.com/mr1hm/go-safety-alerts/internal/api"
	"github.com/mr1hm/go-safety-alerts/internal/classifier"
	"github.com/mr1hm/go-safety-alerts/internal/config"
	"github.com/mr1hm/go-safety-alerts/internal/ingestion"
	"github.com/mr1hm/go-safety-alerts/internal/logging"
	"github.com/mr1hm/go-safety-alerts/internal/notify"
	"github.com/mr1hm/go-safety-alerts/internal/observability"
	"github.com/mr1hm/go-safety-alerts/internal/repository"
	"github.com/mr1hm/go-safety-alerts/internal/risk"
	"github.com/mr1hm/go-safety-alerts/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	broadcaster := stream.NewBroadcaster()

	channels := []notify.Channel{
		notify.NewPushChannel(cfg.Notify.PushURL),
		notify.NewStreamChannel(broadcaster),
		notify.NewHistoryChannel(db),
	}

	if cfg.Notify.MQTTBroker != "" {
		pub, err := notify.NewMQTTPublisher(cfg.Notify.MQTTBroker, cfg.Notify.MQTTClientID)
		if err != nil {
			logging.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		defer pub.Close()
		channels = append(channels, notify.NewVibrationChannel(pub, cfg.Notify.MQTTTopic))
	} else {
		slog.Warn("MQTT_BROKER not set, vibration channel disabled")
	}

	if cfg.Notify.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Notify.RedisAddr,
			Password: cfg.Notify.RedisPassword,
			DB:       cfg.Notify.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Warn("redis unreachable, visual commands will fail until it recovers", "addr", cfg.Notify.RedisAddr, "error", err)
		}
		pingCancel()
		defer rdb.Close()
		channels = append(channels, notify.NewVisualChannel(rdb, cfg.Notify.RedisChannel))
	} else {
		slog.Warn("REDIS_ADDR not set, visual channel disabled")
	}

	dispatcher := notify.NewDispatcher(cfg.Worker.BufferSize, cfg.Notify.DeliveryTimeout, metrics, channels...)
	dispatcher.Start(ctx)

	alerts := alerting.NewManager(dispatcher, metrics)
	feed := ingestion.NewFeedClient(cfg.Feed, metrics)
	if !feed.HasCredential() {
		slog.Warn("FEED_API_KEY not set, serving synthetic data only")
	}
	cls := classifier.NewDefault()

	monitor := ingestion.NewMonitor(cfg, feed, cls, alerts, metrics)
	if cfg.Monitor.Enabled {
		monitor.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := api.NewHandler(api.Deps{
		Alerts:      alerts,
		Monitor:     monitor,
		Feed:        feed,
		Classifier:  cls,
		Users:       risk.NewService(db, metrics),
		Profiles:    db,
		History:     db,
		Broadcaster: broadcaster,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	monitor.Stop()
	dispatcher.Stop() // drains queued deliveries before workers see cancel
	cancel()
	broadcaster.Close() // ends open SSE streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
