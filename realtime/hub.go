// Package realtime fans stored notifications out to open per-user streams.
package realtime

import (
	"sync"

	"github.com/sportmate/server/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const subscriberBuffer = 16

// Hub is the process-wide registry of live subscriber channels. Publish
// never blocks: a subscriber that stops draining loses messages instead of
// stalling the workflow that emitted them.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[primitive.ObjectID]map[chan *entity.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[primitive.ObjectID]map[chan *entity.Notification]struct{}),
	}
}

// Subscribe registers a stream for the user. The returned cancel func must
// be called when the stream closes; it also closes the channel.
func (h *Hub) Subscribe(userID primitive.ObjectID) (<-chan *entity.Notification, func()) {
	ch := make(chan *entity.Notification, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan *entity.Notification]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[userID], ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(userID primitive.ObjectID, notification *entity.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- notification:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(userID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
