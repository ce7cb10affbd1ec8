package ingestion

import (
	"strings"
	"time"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

// FilterByKeyword keeps records whose disaster name or message contains keyword,
// ignoring case. An empty keyword keeps everything.
func FilterByKeyword(records []models.RawDisasterRecord, keyword string) []models.RawDisasterRecord {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	out := make([]models.RawDisasterRecord, 0, len(records))
	for _, r := range records {
		if keyword == "" ||
			strings.Contains(strings.ToLower(r.DisasterName), keyword) ||
			strings.Contains(strings.ToLower(r.Message), keyword) {
			out = append(out, r)
		}
	}
	return out
}

// MostRecentWithinWindow returns the newest record created no earlier than
// now-window. Records without a parseable timestamp are never returned.
func MostRecentWithinWindow(records []models.RawDisasterRecord, window time.Duration, now time.Time) (models.RawDisasterRecord, bool) {
	var (
		best  models.RawDisasterRecord
		found bool
	)
	for _, r := range records {
		if r.CreatedAt.IsZero() || now.Sub(r.CreatedAt) > window {
			continue
		}
		if !found || r.CreatedAt.After(best.CreatedAt) {
			best = r
			found = true
		}
	}
	return best, found
}
