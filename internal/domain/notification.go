package domain

// StoredNotification is one entry of the local notification log.
// Timestamp is the received-at time in unix milliseconds.
type StoredNotification struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Timestamp int64             `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
}

// MessageNotification is the display part of a push message.
type MessageNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// RemoteMessage is a message delivered by the push service.
type RemoteMessage struct {
	MessageID    string               `json:"messageId"`
	Notification *MessageNotification `json:"notification,omitempty"`
	Data         map[string]string    `json:"data,omitempty"`
}

// DeliveryKind tells how a message reached the installation.
type DeliveryKind string

const (
	DeliveryForeground DeliveryKind = "foreground"
	DeliveryBackground DeliveryKind = "background"
	DeliveryOpened     DeliveryKind = "opened"
)

// Valid reports whether k is one of the known delivery kinds.
func (k DeliveryKind) Valid() bool {
	switch k {
	case DeliveryForeground, DeliveryBackground, DeliveryOpened:
		return true
	}
	return false
}

// DeliverMessageRequest is the inbound webhook payload.
type DeliverMessageRequest struct {
	Kind    DeliveryKind  `json:"kind" validate:"required,oneof=foreground background opened"`
	Message RemoteMessage `json:"message"`
}
