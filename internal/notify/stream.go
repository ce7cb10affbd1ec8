package notify

import (
	"context"
	"log/slog"

	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/stream"
)

// StreamChannel hands notifications to connected live subscribers.
type StreamChannel struct {
	b *stream.Broadcaster
}

func NewStreamChannel(b *stream.Broadcaster) *StreamChannel {
	return &StreamChannel{b: b}
}

func (s *StreamChannel) Name() string { return "stream" }

func (s *StreamChannel) Notify(_ context.Context, n models.EmergencyNotification) error {
	delivered := s.b.Broadcast(n)
	slog.Debug("notification streamed", "id", n.ID, "subscribers", delivered)
	return nil
}
