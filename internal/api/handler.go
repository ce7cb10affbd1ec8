package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/mr1hm/go-safety-alerts/internal/alerting"
	"github.com/mr1hm/go-safety-alerts/internal/ingestion"
	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/repository"
	"github.com/mr1hm/go-safety-alerts/internal/risk"
	"github.com/mr1hm/go-safety-alerts/internal/stream"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	defaultPageSize     = 10
	maxPageSize         = 100
	heartbeatInterval   = 15 * time.Second
)

type AlertLifecycle interface {
	Raise(alert models.DisasterAlert, build alerting.BuildFunc) (models.EmergencyNotification, bool, error)
	MarkRead() bool
	Clear() (models.EmergencyNotification, error)
	StatusCheck() (models.EmergencyNotification, error)
	Current() (models.EmergencyNotification, bool)
}

type StatusSource interface {
	Status() models.MonitoringStatus
}

type RecentFeed interface {
	FetchRecent(ctx context.Context, page, pageSize int) ingestion.FetchResult
}

type AlertClassifier interface {
	Classify(rec models.RawDisasterRecord) models.DisasterAlert
	SimulateAlert() models.DisasterAlert
}

type UserClassifier interface {
	ClassifyUser(ctx context.Context, userID string, situation models.UserSituation) (models.UserClassification, error)
	Classify(profile models.UserProfile, situation models.UserSituation) (models.UserClassification, error)
}

type Deps struct {
	Alerts      AlertLifecycle
	Monitor     StatusSource
	Feed        RecentFeed
	Classifier  AlertClassifier
	Users       UserClassifier
	Profiles    repository.ProfileRepository
	History     repository.NotificationRepository
	Broadcaster *stream.Broadcaster
}

type Handler struct {
	Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/monitoring/status", h.monitoringStatus)

	alerts := api.Group("/alerts")
	alerts.GET("/current", h.currentAlert)
	alerts.POST("/read", h.markRead)
	alerts.POST("/clear", h.clearAlert)
	alerts.POST("/status-check", h.statusCheck)
	alerts.GET("/stream", h.streamAlerts)
	alerts.GET("/history", h.alertHistory)

	api.POST("/debug/test-alert", h.createTestAlert)
	api.GET("/disasters/recent", h.recentDisasters)

	api.PUT("/users/:id/profile", h.putProfile)
	api.POST("/users/:id/classify", h.classifyStoredUser)
	api.POST("/classify/user", h.classifyUser)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) monitoringStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Monitor.Status())
}

func (h *Handler) currentAlert(c *gin.Context) {
	n, ok := h.Alerts.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "notification": n})
}

func (h *Handler) markRead(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"updated": h.Alerts.MarkRead()})
}

func (h *Handler) clearAlert(c *gin.Context) {
	n, err := h.Alerts.Clear()
	if errors.Is(err, alerting.ErrStateConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "no active alert"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear alert"})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) statusCheck(c *gin.Context) {
	n, err := h.Alerts.StatusCheck()
	if errors.Is(err, alerting.ErrStateConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "no active alert"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send status check"})
		return
	}
	c.JSON(http.StatusOK, n)
}

// streamAlerts sends a snapshot of the slot, then every dispatched notification, as server-sent events.
func (h *Handler) streamAlerts(c *gin.Context) {
	id, ch := h.Broadcaster.Subscribe()
	defer h.Broadcaster.Unsubscribe(id)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	snapshot := gin.H{"active": false}
	if n, ok := h.Alerts.Current(); ok {
		snapshot = gin.H{"active": true, "notification": n}
	}
	c.SSEvent("snapshot", snapshot)
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	ctx := c.Request.Context()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case n, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(n.Type), n)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC()})
			return true
		}
	})
}

func (h *Handler) alertHistory(c *gin.Context) {
	filter := repository.Filter{
		Limit: defaultHistoryLimit,
	}

	if t := c.Query("type"); t != "" {
		nt, ok := parseNotificationType(t)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notification type"})
			return
		}
		filter.Type = &nt
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= maxHistoryLimit {
			filter.Limit = lim
		}
	}

	notifications, err := h.History.ListNotifications(c.Request.Context(), filter)
	if err != nil {
		slog.Error("failed to list notification history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch alert history",
		})
		return
	}

	fc := toGeoJSON(notifications)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

// createTestAlert raises the simulated earthquake under a fresh id so demos can repeat.
func (h *Handler) createTestAlert(c *gin.Context) {
	alert := h.Classifier.SimulateAlert()
	alert.ID = "demo_" + ulid.Make().String()
	alert.IssuedAt = time.Now()

	n, raised, err := h.Alerts.Raise(alert, nil)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"raised":       raised,
		"notification": n,
	})
}

func (h *Handler) recentDisasters(c *gin.Context) {
	page := queryInt(c, "page", 1, 1, 1000)
	size := queryInt(c, "size", defaultPageSize, 1, maxPageSize)

	res := h.Feed.FetchRecent(c.Request.Context(), page, size)
	records := ingestion.FilterByKeyword(res.Records, c.Query("keyword"))

	alerts := make([]models.DisasterAlert, 0, len(records))
	for _, rec := range records {
		alerts = append(alerts, h.Classifier.Classify(rec))
	}

	c.JSON(http.StatusOK, gin.H{
		"source":   res.Source,
		"degraded": res.Err != nil,
		"page":     page,
		"size":     size,
		"alerts":   alerts,
	})
}

func (h *Handler) putProfile(c *gin.Context) {
	var profile models.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile body"})
		return
	}
	profile.UserID = c.Param("id")

	if err := risk.Validate(profile); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := h.Profiles.UpsertProfile(c.Request.Context(), profile); err != nil {
		slog.Error("failed to store profile", "user_id", profile.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) classifyStoredUser(c *gin.Context) {
	var situation models.UserSituation
	if err := c.ShouldBindJSON(&situation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid situation body"})
		return
	}

	result, err := h.Users.ClassifyUser(c.Request.Context(), c.Param("id"), situation)
	h.writeClassification(c, result, err)
}

type classifyRequest struct {
	Profile   models.UserProfile   `json:"profile"`
	Situation models.UserSituation `json:"situation"`
}

func (h *Handler) classifyUser(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.Users.Classify(req.Profile, req.Situation)
	h.writeClassification(c, result, err)
}

func (h *Handler) writeClassification(c *gin.Context, result models.UserClassification, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case errors.Is(err, risk.ErrInvalidProfile):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		slog.Error("user classification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
	}
}

func parseNotificationType(s string) (models.NotificationType, bool) {
	switch t := models.NotificationType(s); t {
	case models.NotificationEmergencyAlert, models.NotificationStatusCheck, models.NotificationAllClear:
		return t, true
	default:
		return "", false
	}
}

func queryInt(c *gin.Context, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < lo || v > hi {
		return def
	}
	return v
}
