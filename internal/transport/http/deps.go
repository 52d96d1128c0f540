package http

import (
	"context"

	"github.com/go-push-inbox/internal/application/agent"
	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/transport/http/middleware"
)

// AgentAPI is what the router needs from the running agent.
type AgentAPI interface {
	Notifications() []domain.StoredNotification
	UnreadCount() int
	MarkRead(ctx context.Context, id string) []domain.StoredNotification
	Delete(ctx context.Context, id string) []domain.StoredNotification
	ClearAll(ctx context.Context)
	Token(ctx context.Context) (string, bool)
	Events() (<-chan agent.Event, func())
}

// MessageBus accepts messages posted to the webhook.
type MessageBus interface {
	Deliver(kind domain.DeliveryKind, msg domain.RemoteMessage) int
}

// Deps holds the collaborators the router wires into handlers.
// Verifier is nil when delivery tokens are not configured.
type Deps struct {
	Agent      AgentAPI
	Bus        MessageBus
	Verifier   middleware.TokenVerifier
	Permission domain.AuthorizationStatus
}
