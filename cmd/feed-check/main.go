// Command feed-check fetches one page from the disaster message feed, classifies
// every record and prints the alerts as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-safety-alerts/internal/classifier"
	"github.com/mr1hm/go-safety-alerts/internal/config"
	"github.com/mr1hm/go-safety-alerts/internal/ingestion"
	"github.com/mr1hm/go-safety-alerts/internal/logging"
	"github.com/mr1hm/go-safety-alerts/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}

	page := flag.Int("page", 1, "feed page number")
	size := flag.Int("size", cfg.Feed.PageSize, "records per page")
	keyword := flag.String("keyword", "", "only keep records whose name or message contains this")
	flag.Parse()

	// Logs go to stderr so stdout stays machine readable.
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, "text"))

	feed := ingestion.NewFeedClient(cfg.Feed, observability.NewMetrics())
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Feed.Timeout)
	defer cancel()

	res := feed.FetchRecent(ctx, *page, *size)
	if res.Err != nil {
		slog.Warn("live feed unavailable", "source", res.Source, "error", res.Err)
	}
	records := ingestion.FilterByKeyword(res.Records, *keyword)
	slog.Info("fetched records", "source", res.Source, "count", len(records))

	cls := classifier.NewDefault()
	enc := json.NewEncoder(os.Stdout)
	for _, rec := range records {
		if err := enc.Encode(cls.Classify(rec)); err != nil {
			logging.Fatalf("write alert: %v", err)
		}
	}
}
