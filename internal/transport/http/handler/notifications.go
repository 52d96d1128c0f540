package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-push-inbox/internal/domain"
)

// Inbox is what the notification endpoints need from the running agent.
type Inbox interface {
	Notifications() []domain.StoredNotification
	UnreadCount() int
	MarkRead(ctx context.Context, id string) []domain.StoredNotification
	Delete(ctx context.Context, id string) []domain.StoredNotification
	ClearAll(ctx context.Context)
}

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	inbox Inbox
}

func NewNotificationHandler(inbox Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

func (h *NotificationHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.inbox.Notifications()))
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, UnreadEnvelope{Unread: h.inbox.UnreadCount()})
}

// MarkAsRead answers with the whole list. Unknown ids leave it unchanged.
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.inbox.MarkRead(r.Context(), chi.URLParam(r, "id"))))
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.inbox.Delete(r.Context(), chi.URLParam(r, "id"))))
}

func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.inbox.ClearAll(r.Context())
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notifications cleared"})
}

func nonNil(list []domain.StoredNotification) []domain.StoredNotification {
	if list == nil {
		return []domain.StoredNotification{}
	}
	return list
}
