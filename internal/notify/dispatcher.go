// Package notify fans notifications out to delivery channels without blocking the caller.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/observability"
	"github.com/mr1hm/go-safety-alerts/internal/worker"
)

// Channel is one delivery target. Notify must honor ctx cancellation.
type Channel interface {
	Name() string
	Notify(ctx context.Context, n models.EmergencyNotification) error
}

type delivery struct {
	channel Channel
	n       models.EmergencyNotification
}

// lane is one channel with its own single-worker queue, so a channel sees
// notifications in the order they were dispatched.
type lane struct {
	channel Channel
	pool    *worker.Pool[delivery]
}

type Dispatcher struct {
	lanes   []lane
	timeout time.Duration
	metrics *observability.Metrics
}

func NewDispatcher(bufferSize int, timeout time.Duration, metrics *observability.Metrics, channels ...Channel) *Dispatcher {
	d := &Dispatcher{
		timeout: timeout,
		metrics: metrics,
	}
	for _, c := range channels {
		d.lanes = append(d.lanes, lane{
			channel: c,
			pool:    worker.NewPool("notify-"+c.Name(), 1, bufferSize, d.deliver),
		})
	}
	return d
}

func (d *Dispatcher) Start(ctx context.Context) {
	names := make([]string, 0, len(d.lanes))
	for _, l := range d.lanes {
		names = append(names, l.channel.Name())
		l.pool.Start(ctx)
	}
	slog.Info("starting notification dispatcher", "channels", names)
}

// Stop waits for queued deliveries to finish.
func (d *Dispatcher) Stop() {
	for _, l := range d.lanes {
		l.pool.Stop()
	}
	slog.Info("notification dispatcher stopped")
}

// Notify queues one delivery per channel and returns immediately. Deliveries that
// do not fit in a channel's queue are dropped; a slow channel never delays another.
func (d *Dispatcher) Notify(n models.EmergencyNotification) {
	for _, l := range d.lanes {
		if err := l.pool.TrySubmit(delivery{channel: l.channel, n: n.Clone()}); err != nil {
			d.metrics.NotificationsDropped.WithLabelValues(l.channel.Name()).Inc()
			slog.Warn("notification dropped", "channel", l.channel.Name(), "id", n.ID, "type", n.Type, "error", err)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, job delivery) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	name := job.channel.Name()
	if err := job.channel.Notify(ctx, job.n); err != nil {
		d.metrics.NotificationsSent.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("%s: deliver %s: %w", name, job.n.ID, err)
	}
	d.metrics.NotificationsSent.WithLabelValues(name, "success").Inc()
	slog.Debug("notification delivered", "channel", name, "id", job.n.ID, "type", job.n.Type)
	return nil
}
