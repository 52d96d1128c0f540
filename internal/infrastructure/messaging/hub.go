package messaging

import (
	"sync"

	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/pubsub"
)

// Hub is the in-process push message bus. Transports (webhook, Redis) deliver
// into it; the push service subscribes per delivery kind.
type Hub struct {
	bus *pubsub.Hub[domain.DeliveryKind, domain.RemoteMessage]

	mu      sync.Mutex
	initial *domain.RemoteMessage
}

func NewHub() *Hub {
	return &Hub{bus: pubsub.NewHub[domain.DeliveryKind, domain.RemoteMessage]()}
}

// Subscribe returns messages of kind until unsubscribe is called.
func (h *Hub) Subscribe(kind domain.DeliveryKind) (<-chan domain.RemoteMessage, func()) {
	return h.bus.Subscribe(kind)
}

// Deliver publishes msg to subscribers of kind. An opened message no listener
// received is what launched the app; it is kept for TakeInitial.
func (h *Hub) Deliver(kind domain.DeliveryKind, msg domain.RemoteMessage) int {
	n := h.bus.Publish(kind, msg)
	if n == 0 && kind == domain.DeliveryOpened {
		h.mu.Lock()
		m := msg
		h.initial = &m
		h.mu.Unlock()
	}
	return n
}

// TakeInitial returns the launch message once.
func (h *Hub) TakeInitial() (*domain.RemoteMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.initial
	h.initial = nil
	return m, m != nil
}
