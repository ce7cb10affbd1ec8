// Package alerting owns the single active alert slot and its lifecycle:
// Idle -> Active (raise), Active -> Active (supersede), Active -> Idle (clear).
package alerting

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/observability"
)

var ErrStateConflict = errors.New("alert state conflict")

const defaultSeenCapacity = 1024

// Notifier receives every notification the manager produces. Implementations must not block.
type Notifier interface {
	Notify(n models.EmergencyNotification)
}

// Manager guards the active alert slot with one mutex. Every transition and
// every read holds it, so readers see either the old or the new notification.
type Manager struct {
	mu      sync.RWMutex
	current *models.EmergencyNotification
	seen    *idSet

	// dispatchMu is taken before mu is released, so notifications reach the
	// notifier in the order of the transitions that produced them.
	dispatchMu sync.Mutex

	notifier Notifier
	clock    clockwork.Clock
	metrics  *observability.Metrics
}

type Option func(*Manager)

func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithSeenCapacity bounds how many processed alert ids are remembered for dedup.
func WithSeenCapacity(n int) Option {
	return func(m *Manager) { m.seen = newIDSet(n) }
}

func NewManager(notifier Notifier, metrics *observability.Metrics, opts ...Option) *Manager {
	m := &Manager{
		seen:     newIDSet(defaultSeenCapacity),
		notifier: notifier,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Raise moves the slot to Active with the notification built from alert.
// An alert whose id was already processed is a no-op and returns false.
// A nil build uses BuildNotification.
func (m *Manager) Raise(alert models.DisasterAlert, build BuildFunc) (models.EmergencyNotification, bool, error) {
	if alert.ID == "" {
		m.metrics.StateConflicts.Inc()
		slog.Warn("raise rejected: alert has no id", "type", alert.Type)
		return models.EmergencyNotification{}, false, fmt.Errorf("%w: alert has no id", ErrStateConflict)
	}
	if build == nil {
		build = BuildNotification
	}

	m.mu.Lock()
	if m.seen.contains(alert.ID) {
		m.mu.Unlock()
		m.metrics.AlertsDeduplicated.Inc()
		slog.Debug("raise ignored: alert already processed", "id", alert.ID)
		return models.EmergencyNotification{}, false, nil
	}

	n := build(alert, m.clock.Now())
	n.ID = alert.ID
	n.IsActive = true
	n.IsRead = false

	var superseded string
	if m.current != nil {
		superseded = m.current.ID
	}
	m.current = &n
	m.seen.add(alert.ID)
	out := n.Clone()
	m.dispatchMu.Lock()
	m.mu.Unlock()
	defer m.dispatchMu.Unlock()

	m.metrics.AlertsRaised.WithLabelValues(alert.Classification).Inc()
	slog.Info("alert raised",
		"id", alert.ID,
		"type", alert.Type,
		"classification", alert.Classification,
		"superseded", superseded,
	)
	m.dispatch(out)

	return out, true, nil
}

// MarkRead flags the held notification as read. Returns false when Idle.
func (m *Manager) MarkRead() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false
	}
	updated := m.current.Clone()
	updated.IsRead = true
	m.current = &updated
	return true
}

// Clear moves the slot to Idle and dispatches an all-clear, which is never stored.
func (m *Manager) Clear() (models.EmergencyNotification, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		m.metrics.StateConflicts.Inc()
		slog.Warn("clear ignored: no active alert")
		return models.EmergencyNotification{}, fmt.Errorf("%w: no active alert", ErrStateConflict)
	}
	previous := *m.current
	m.current = nil
	now := m.clock.Now()
	m.dispatchMu.Lock()
	m.mu.Unlock()
	defer m.dispatchMu.Unlock()

	n := allClearNotification(newID("clear"), previous, now)
	m.metrics.AlertsCleared.Inc()
	slog.Info("alert cleared", "id", previous.ID)
	m.dispatch(n)

	return n.Clone(), nil
}

// StatusCheck asks recipients of the held alert to report their status. The
// notification is dispatched but does not replace the slot.
func (m *Manager) StatusCheck() (models.EmergencyNotification, error) {
	m.mu.RLock()
	if m.current == nil {
		m.mu.RUnlock()
		return models.EmergencyNotification{}, fmt.Errorf("%w: no active alert", ErrStateConflict)
	}
	held := m.current.Clone()
	now := m.clock.Now()
	m.dispatchMu.Lock()
	m.mu.RUnlock()
	defer m.dispatchMu.Unlock()

	n := statusCheckNotification(newID("status"), held, now)
	m.dispatch(n)
	return n.Clone(), nil
}

// Current returns a copy of the held notification, or false when Idle.
func (m *Manager) Current() (models.EmergencyNotification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return models.EmergencyNotification{}, false
	}
	return m.current.Clone(), true
}

func (m *Manager) dispatch(n models.EmergencyNotification) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(n)
}

func newID(prefix string) string {
	return prefix + "_" + ulid.Make().String()
}

// idSet remembers the most recent ids in insertion order, evicting the oldest.
type idSet struct {
	capacity int
	order    []string
	ids      map[string]struct{}
}

func newIDSet(capacity int) *idSet {
	if capacity < 1 {
		capacity = 1
	}
	return &idSet{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		ids:      make(map[string]struct{}, capacity),
	}
}

func (s *idSet) contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *idSet) add(id string) {
	if s.contains(id) {
		return
	}
	if len(s.order) == s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	s.order = append(s.order, id)
	s.ids[id] = struct{}{}
}
