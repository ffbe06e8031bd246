package broadcast

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/metrics"
)

var (
	ErrTooManySubscribers = errors.New("too many subscribers")
	ErrHubClosed          = errors.New("broadcast hub closed")
)

const defaultBuffer = 64

// Subscription is one receiver on the shared topic. Its channel is closed when
// the subscriber is dropped, unsubscribed or the hub shuts down.
type Subscription struct {
	ch chan []byte
}

// Messages yields JSON-encoded change events in publish order.
func (s *Subscription) Messages() <-chan []byte { return s.ch }

// Hub fans every published event out to all current subscribers. Delivery is
// at most once: nothing is buffered for clients that are not connected, and a
// subscriber whose buffer is full is disconnected rather than waited on.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	max    int
	buffer int
	closed bool
	logger *log.Logger
}

// NewHub returns a hub admitting at most maxSubscribers (0 = unlimited). buffer
// is the default per-subscriber queue length.
func NewHub(logger *log.Logger, maxSubscribers, buffer int) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		max:    maxSubscribers,
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new receiver. buffer <= 0 uses the hub default.
func (h *Hub) Subscribe(buffer int) (*Subscription, error) {
	if buffer <= 0 {
		buffer = h.buffer
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.max > 0 && len(h.subs) >= h.max {
		return nil, ErrTooManySubscribers
	}

	s := &Subscription{ch: make(chan []byte, buffer)}
	h.subs[s] = struct{}{}
	metrics.Subscribers.Inc()
	return s, nil
}

// Unsubscribe removes s. Calling it more than once is harmless.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *Subscription) bool {
	if _, ok := h.subs[s]; !ok {
		return false
	}
	delete(h.subs, s)
	close(s.ch)
	metrics.Subscribers.Dec()
	return true
}

// Publish encodes ev once and offers it to every subscriber without blocking.
// Publishes are serialized so each subscriber observes server publish order.
func (h *Hub) Publish(ev types.ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Printf("broadcast marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	metrics.EventsPublished.Inc()

	for s := range h.subs {
		select {
		case s.ch <- data:
		default:
			h.logger.Printf("broadcast subscriber too slow, disconnecting")
			h.removeLocked(s)
			metrics.SubscribersDropped.Inc()
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for s := range h.subs {
		h.removeLocked(s)
	}
}
