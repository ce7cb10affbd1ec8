package notify

import (
	"context"

	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/repository"
)

// HistoryChannel records every dispatched notification.
type HistoryChannel struct {
	repo repository.NotificationRepository
}

func NewHistoryChannel(repo repository.NotificationRepository) *HistoryChannel {
	return &HistoryChannel{repo: repo}
}

func (h *HistoryChannel) Name() string { return "history" }

func (h *HistoryChannel) Notify(ctx context.Context, n models.EmergencyNotification) error {
	return h.repo.AddNotification(ctx, n)
}
