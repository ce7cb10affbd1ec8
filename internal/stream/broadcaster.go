// Package stream fans notifications out to live subscribers such as SSE clients.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

const subscriberBuffer = 16

type Broadcaster struct {
	subscribers map[uint64]chan models.EmergencyNotification
	nextID      atomic.Uint64
	mu          sync.RWMutex
	closed      bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan models.EmergencyNotification),
	}
}

// Subscribe registers a new subscriber. After Close the returned channel is already closed.
func (b *Broadcaster) Subscribe() (uint64, <-chan models.EmergencyNotification) {
	id := b.nextID.Add(1)
	ch := make(chan models.EmergencyNotification, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Broadcast returns the number of subscribers that received n.
func (b *Broadcaster) Broadcast(n models.EmergencyNotification) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- n.Clone():
			delivered++
		default:
			// slow subscriber
		}
	}
	return delivered
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
