package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

// FlashCommand drives screen flashes and signal lights for users who cannot hear alerts.
type FlashCommand struct {
	ID     string                  `json:"id"`
	Type   models.NotificationType `json:"type"`
	Color  string                  `json:"color"`
	Repeat int                     `json:"repeat"`
	Active bool                    `json:"active"`
}

func flashFor(n models.EmergencyNotification) FlashCommand {
	cmd := FlashCommand{ID: n.ID, Type: n.Type, Active: n.IsActive}
	switch n.Type {
	case models.NotificationAllClear:
		cmd.Color, cmd.Repeat = "#00C853", 1
		return cmd
	case models.NotificationStatusCheck:
		cmd.Color, cmd.Repeat = "#2979FF", 2
		return cmd
	}

	classification := ""
	if n.Data != nil {
		classification = n.Data.Classification
	}
	switch classification {
	case models.ClassificationCritical:
		cmd.Color, cmd.Repeat = "#FF1744", 5
	case models.ClassificationUrgent:
		cmd.Color, cmd.Repeat = "#FF9100", 3
	default:
		cmd.Color, cmd.Repeat = "#FFD600", 1
	}
	return cmd
}

// VisualChannel publishes flash commands on a Redis pub/sub channel.
type VisualChannel struct {
	rdb     *redis.Client
	channel string
}

func NewVisualChannel(rdb *redis.Client, channel string) *VisualChannel {
	return &VisualChannel{rdb: rdb, channel: channel}
}

func (v *VisualChannel) Name() string { return "visual" }

func (v *VisualChannel) Notify(ctx context.Context, n models.EmergencyNotification) error {
	payload, err := json.Marshal(flashFor(n))
	if err != nil {
		return fmt.Errorf("visual: marshal command: %w", err)
	}
	if err := v.rdb.Publish(ctx, v.channel, payload).Err(); err != nil {
		return fmt.Errorf("visual: publish to %s: %w", v.channel, err)
	}
	return nil
}
