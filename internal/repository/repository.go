package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

var ErrNotFound = errors.New("not found")

type Filter struct {
	Limit int
	Since *time.Time
	Type  *models.NotificationType
}

type ProfileRepository interface {
	UpsertProfile(ctx context.Context, p models.UserProfile) error
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
}

type NotificationRepository interface {
	// AddNotification ignores a notification whose id is already stored.
	AddNotification(ctx context.Context, n models.EmergencyNotification) error
	ListNotifications(ctx context.Context, opts Filter) ([]models.EmergencyNotification, error)
}
