package profile

import (
	"sync"
	"time"

	"github.com/casesurf/casesurf/pkg/models"
)

// Broker fans profile change events out to connected SSE streams.
// Subscribers are keyed by user so a credit deduction or plan upgrade
// reaches every open tab of that user.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan models.ProfileEvent]struct{}
}

// NewBroker creates a new profile event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string]map[chan models.ProfileEvent]struct{}),
	}
}

// Subscribe registers a listener for one user's profile events. The
// returned cancel function must be called when the stream closes.
func (b *Broker) Subscribe(userID string) (<-chan models.ProfileEvent, func()) {
	ch := make(chan models.ProfileEvent, 8)

	b.mu.Lock()
	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[chan models.ProfileEvent]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if subs, ok := b.subscribers[userID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subscribers, userID)
			}
		}
		b.mu.Unlock()
		close(ch)
	}

	return ch, cancel
}

// Publish delivers an event to every subscriber of the user. Slow
// subscribers are skipped rather than blocking the publisher.
func (b *Broker) Publish(event models.ProfileEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports open streams for a user
func (b *Broker) SubscriberCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[userID])
}
