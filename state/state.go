package state

import (
	"errorwatch/models"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Hub fans newly stored errors out to live stream subscribers
type Hub struct {
	subscribers map[string]chan models.StoredErrorRead
	bufferSize  int
	dropped     uint64
	sync.RWMutex
}

// NewHub creates a hub whose subscribers buffer up to bufferSize records
func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		subscribers: make(map[string]chan models.StoredErrorRead),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new subscriber and returns its id and channel
func (h *Hub) Subscribe() (string, <-chan models.StoredErrorRead) {
	id := uuid.NewString()
	ch := make(chan models.StoredErrorRead, h.bufferSize)

	h.Lock()
	defer h.Unlock()
	h.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(id string) bool {
	h.Lock()
	ch, exists := h.subscribers[id]
	if exists {
		delete(h.subscribers, id)
	}
	h.Unlock()

	if exists {
		close(ch)
	}
	return exists
}

// Publish hands rec to every subscriber without blocking. A subscriber whose
// buffer is full misses the record.
func (h *Hub) Publish(rec models.StoredErrorRead) {
	h.RLock()
	defer h.RUnlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- rec:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

// SubscriberCount returns the number of live subscribers
func (h *Hub) SubscriberCount() int {
	h.RLock()
	defer h.RUnlock()
	return len(h.subscribers)
}

// DroppedTotal returns how many deliveries were skipped on full buffers
func (h *Hub) DroppedTotal() uint64 {
	return atomic.LoadUint64(&h.dropped)
}

// Close unsubscribes everyone, ending their streams
func (h *Hub) Close() {
	h.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]chan models.StoredErrorRead)
	h.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}
