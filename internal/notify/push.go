package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

const pushTimeout = 10 * time.Second

type pushMessage struct {
	ID               string                  `json:"id"`
	Type             models.NotificationType `json:"type"`
	Title            string                  `json:"title"`
	Body             string                  `json:"body"`
	Classification   string                  `json:"classification,omitempty"`
	VibrationPattern []int                   `json:"vibration_pattern"`
	Timestamp        time.Time               `json:"timestamp"`
}

// PushChannel posts notifications to a push gateway. Without a URL it does nothing.
type PushChannel struct {
	url    string
	client *resty.Client
}

func NewPushChannel(url string) *PushChannel {
	return &PushChannel{
		url: url,
		client: resty.New().
			SetTimeout(pushTimeout).
			SetHeader("Content-Type", "application/json"),
	}
}

func (p *PushChannel) Name() string { return "push" }

func (p *PushChannel) Notify(ctx context.Context, n models.EmergencyNotification) error {
	if p.url == "" {
		return nil
	}

	msg := pushMessage{
		ID:               n.ID,
		Type:             n.Type,
		Title:            n.Title,
		Body:             n.Body,
		VibrationPattern: n.VibrationPattern,
		Timestamp:        n.Timestamp,
	}
	if n.Data != nil {
		msg.Classification = n.Data.Classification
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("push: post gateway: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push: gateway returned %d: %s", resp.StatusCode(), truncate(resp.String(), 512))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
