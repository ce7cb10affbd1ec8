package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-safety-alerts/internal/alerting"
	"github.com/mr1hm/go-safety-alerts/internal/config"
	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/observability"
)

const (
	outcomeRaised  = "raised"
	outcomeIdle    = "idle"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
	outcomePanic   = "panic"
)

type Feed interface {
	FetchRecent(ctx context.Context, page, pageSize int) FetchResult
	EngageFallback()
	FallbackEngaged() bool
}

type Classifier interface {
	Classify(rec models.RawDisasterRecord) models.DisasterAlert
}

type AlertRaiser interface {
	Raise(alert models.DisasterAlert, build alerting.BuildFunc) (models.EmergencyNotification, bool, error)
}

// Monitor polls the feed on a fixed interval and raises the newest fresh alert.
// Repeated feed failures demote it to fallback mode until the process exits.
type Monitor struct {
	interval    time.Duration
	maxRetries  int
	freshness   time.Duration
	pageSize    int
	tickTimeout time.Duration

	feed       Feed
	classifier Classifier
	alerts     AlertRaiser
	clock      clockwork.Clock
	metrics    *observability.Metrics

	// tickMu allows one tick in flight. Ticks that find it held are skipped.
	tickMu sync.Mutex

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	retryCount int
	fallback   bool
	lastTick   time.Time
	tickCount  int64
	lastErr    string
}

type MonitorOption func(*Monitor)

func WithMonitorClock(c clockwork.Clock) MonitorOption {
	return func(m *Monitor) { m.clock = c }
}

func NewMonitor(cfg *config.Config, feed Feed, classifier Classifier, alerts AlertRaiser, metrics *observability.Metrics, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		interval:    cfg.Monitor.Interval,
		maxRetries:  cfg.Monitor.MaxRetries,
		freshness:   cfg.Monitor.FreshnessWindow,
		pageSize:    cfg.Feed.PageSize,
		tickTimeout: cfg.Feed.Timeout + time.Second,
		feed:        feed,
		classifier:  classifier,
		alerts:      alerts,
		clock:       clockwork.NewRealClock(),
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start schedules the loop and runs the first tick immediately. No-op when already running.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := m.clock.NewTicker(m.interval)

	m.running = true
	m.cancel = cancel
	m.done = done
	m.metrics.MonitorRunning.Set(1)

	go m.run(loopCtx, ticker, done)
}

func (m *Monitor) run(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer func() {
		m.mu.Lock()
		if m.done == done {
			m.running = false
			m.metrics.MonitorRunning.Set(0)
		}
		m.mu.Unlock()
	}()
	defer ticker.Stop()

	slog.Info("starting monitor", "interval", m.interval, "max_retries", m.maxRetries)

	// Initial tick
	m.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor shutting down")
			return
		case <-ticker.Chan():
			m.Tick(ctx)
		}
	}
}

// Stop cancels the schedule and waits for an in-flight tick to finish. No-op when stopped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("monitor stopped")
}

// Tick runs one poll-classify-raise cycle. It never panics and never returns an
// error; failures go to the retry counter.
func (m *Monitor) Tick(ctx context.Context) {
	if !m.tickMu.TryLock() {
		m.metrics.Ticks.WithLabelValues(outcomeSkipped).Inc()
		slog.Debug("tick skipped: previous tick still running")
		return
	}
	defer m.tickMu.Unlock()

	outcome := m.tick(ctx)
	m.metrics.Ticks.WithLabelValues(outcome).Inc()
}

func (m *Monitor) tick(parent context.Context) (outcome string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("monitor tick panicked", "panic", r)
			m.recordFailure(fmt.Errorf("tick panic: %v", r))
			outcome = outcomePanic
		}
	}()

	// Stop must not abort a tick half way; the timeout still bounds it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), m.tickTimeout)
	defer cancel()

	now := m.clock.Now()
	m.mu.Lock()
	m.lastTick = now
	m.tickCount++
	m.mu.Unlock()

	res := m.feed.FetchRecent(ctx, 1, m.pageSize)
	if res.Err != nil {
		m.recordFailure(res.Err)
		return outcomeFailed
	}
	m.recordSuccess()

	rec, ok := MostRecentWithinWindow(res.Records, m.freshness, now)
	if !ok {
		slog.Debug("no fresh disaster", "source", res.Source, "records", len(res.Records))
		return outcomeIdle
	}

	alert := m.classifier.Classify(rec)
	if !alert.IsRelevant {
		slog.Debug("fresh record not relevant", "id", alert.ID, "confidence", alert.Confidence)
		return outcomeIdle
	}
	if alert.IsAmbiguous() {
		slog.Warn("low-confidence classification", "id", alert.ID, "type", alert.Type, "confidence", alert.Confidence)
	}

	_, raised, err := m.alerts.Raise(alert, nil)
	if err != nil {
		slog.Warn("raise rejected", "id", alert.ID, "error", err)
		return outcomeIdle
	}
	if !raised {
		return outcomeIdle
	}
	slog.Info("fresh disaster raised", "id", alert.ID, "source", res.Source, "type", alert.Type)
	return outcomeRaised
}

func (m *Monitor) recordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.retryCount++
	m.lastErr = err.Error()
	slog.Warn("feed fetch failed", "retry_count", m.retryCount, "max_retries", m.maxRetries, "error", err)

	if m.retryCount < m.maxRetries {
		return
	}
	m.retryCount = 0
	if m.fallback {
		return
	}
	m.fallback = true
	m.feed.EngageFallback()
	m.metrics.FallbackEngaged.Set(1)
	slog.Warn("retry budget exhausted, fallback mode engaged for the rest of the process lifetime",
		"max_retries", m.maxRetries)
}

func (m *Monitor) recordSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retryCount = 0
	m.lastErr = ""
}

func (m *Monitor) Status() models.MonitoringStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.MonitoringStatus{
		IsRunning:           m.running,
		RetryCount:          m.retryCount,
		LastTick:            m.lastTick,
		FallbackModeEngaged: m.fallback || m.feed.FallbackEngaged(),
		TickCount:           m.tickCount,
		LastError:           m.lastErr,
	}
}
