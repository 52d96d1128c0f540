package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-push-inbox/internal/application/agent"
	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockInbox struct{ mock.Mock }

func (m *mockInbox) Notifications() []domain.StoredNotification {
	list, _ := m.Called().Get(0).([]domain.StoredNotification)
	return list
}

func (m *mockInbox) UnreadCount() int { return m.Called().Int(0) }

func (m *mockInbox) MarkRead(ctx context.Context, id string) []domain.StoredNotification {
	list, _ := m.Called(ctx, id).Get(0).([]domain.StoredNotification)
	return list
}

func (m *mockInbox) Delete(ctx context.Context, id string) []domain.StoredNotification {
	list, _ := m.Called(ctx, id).Get(0).([]domain.StoredNotification)
	return list
}

func (m *mockInbox) ClearAll(ctx context.Context) { m.Called(ctx) }

type mockDeliverer struct{ mock.Mock }

func (m *mockDeliverer) Deliver(kind domain.DeliveryKind, msg domain.RemoteMessage) int {
	return m.Called(kind, msg).Int(0)
}

type stubTokens struct {
	token string
	ok    bool
}

func (s stubTokens) Token(context.Context) (string, bool) { return s.token, s.ok }

type chanEvents struct {
	ch           chan agent.Event
	unsubscribed chan struct{}
}

func (c *chanEvents) Events() (<-chan agent.Event, func()) {
	return c.ch, func() { close(c.unsubscribed) }
}

// --- helpers ---

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var sample = []domain.StoredNotification{
	{ID: "b", Title: "B", Timestamp: 2},
	{ID: "a", Title: "A", Timestamp: 1, Read: true},
}

// --- health ---

func TestPing(t *testing.T) {
	h := NewHealthHandler()
	rr := httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil), "action", "ping"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/nope", nil), "action", "nope"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- notifications ---

func TestList_ReturnsEmptyArrayNotNull(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("Notifications").Return(nil)
	rr := httptest.NewRecorder()
	NewNotificationHandler(inbox).List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestList_WireShape(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("Notifications").Return(sample[:1])
	rr := httptest.NewRecorder()
	NewNotificationHandler(inbox).List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))
	assert.JSONEq(t, `[{"id":"b","title":"B","body":"","timestamp":2,"read":false}]`, rr.Body.String())
}

func TestUnreadCount(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("UnreadCount").Return(3)
	rr := httptest.NewRecorder()
	NewNotificationHandler(inbox).UnreadCount(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications/unread-count", nil))
	assert.JSONEq(t, `{"unread":3}`, rr.Body.String())
}

func TestMarkAsRead(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("MarkRead", mock.Anything, "b").Return(sample)
	rr := httptest.NewRecorder()
	r := withChiParam(httptest.NewRequest(http.MethodPut, "/v1/notifications/b", nil), "id", "b")
	NewNotificationHandler(inbox).MarkAsRead(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []domain.StoredNotification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, sample, got)
	inbox.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("Delete", mock.Anything, "b").Return(sample[1:])
	rr := httptest.NewRecorder()
	r := withChiParam(httptest.NewRequest(http.MethodDelete, "/v1/notifications/b", nil), "id", "b")
	NewNotificationHandler(inbox).Delete(rr, r)

	var got []domain.StoredNotification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestClear(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("ClearAll", mock.Anything).Return()
	rr := httptest.NewRecorder()
	NewNotificationHandler(inbox).Clear(rr, httptest.NewRequest(http.MethodDelete, "/v1/notifications", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	inbox.AssertExpectations(t)
}

// --- device ---

func TestDeviceToken(t *testing.T) {
	rr := httptest.NewRecorder()
	NewDeviceHandler(stubTokens{token: "abc", ok: true}, domain.AuthorizationAuthorized).
		Token(rr, httptest.NewRequest(http.MethodGet, "/v1/device/token", nil))
	assert.JSONEq(t, `{"token":"abc","permission":"authorized"}`, rr.Body.String())
}

func TestDeviceToken_Unavailable(t *testing.T) {
	rr := httptest.NewRecorder()
	NewDeviceHandler(stubTokens{}, domain.AuthorizationDenied).
		Token(rr, httptest.NewRequest(http.MethodGet, "/v1/device/token", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp DeviceTokenEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Empty(t, resp.Token)
	assert.Equal(t, domain.AuthorizationDenied, resp.Permission)
	assert.NotEmpty(t, resp.Error)
}

// --- messages ---

func TestDeliver_InvalidBody(t *testing.T) {
	hub := &mockDeliverer{}
	rr := httptest.NewRecorder()
	NewMessageHandler(hub, logging.Discard()).
		Deliver(rr, httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader("not-json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	hub.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestDeliver_ValidationFailure(t *testing.T) {
	hub := &mockDeliverer{}
	rr := httptest.NewRecorder()
	body := `{"kind":"sideways","message":{"messageId":"m1"}}`
	NewMessageHandler(hub, logging.Discard()).
		Deliver(rr, httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "kind")
}

func TestDeliver_Accepted(t *testing.T) {
	hub := &mockDeliverer{}
	msg := domain.RemoteMessage{
		MessageID:    "m1",
		Notification: &domain.MessageNotification{Title: "Hi", Body: "there"},
		Data:         map[string]string{"k": "v"},
	}
	hub.On("Deliver", domain.DeliveryForeground, msg).Return(1)

	body, _ := json.Marshal(domain.DeliverMessageRequest{Kind: domain.DeliveryForeground, Message: msg})
	rr := httptest.NewRecorder()
	NewMessageHandler(hub, logging.Discard()).
		Deliver(rr, httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(body)))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"message":"accepted","delivered":1}`, rr.Body.String())
	hub.AssertExpectations(t)
}

// --- events ---

func TestStream_WritesEventsUntilClientLeaves(t *testing.T) {
	src := &chanEvents{ch: make(chan agent.Event, 1), unsubscribed: make(chan struct{})}
	srv := httptest.NewServer(http.HandlerFunc(NewEventHandler(src, logging.Discard()).Stream))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	src.ch <- agent.Event{Type: agent.EventUpdated, Notifications: sample, Unread: 1}

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "data:") {
			lines = append(lines, line)
		}
		if len(lines) == 2 {
			break
		}
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "event: notification.updated", lines[0])

	var ev agent.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &ev))
	assert.Equal(t, 1, ev.Unread)
	assert.Len(t, ev.Notifications, 2)

	cancel()
	<-src.unsubscribed
}
