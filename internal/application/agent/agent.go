package agent

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-push-inbox/internal/application/inbox"
	"github.com/go-push-inbox/internal/application/push"
	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/pubsub"
	"github.com/sirupsen/logrus"
)

const (
	EventCreated = "notification.created"
	EventUpdated = "notification.updated"

	eventsTopic = "inbox"
)

// Event is a state change pushed to live streams.
type Event struct {
	Type          string                      `json:"type"`
	Notification  *domain.StoredNotification  `json:"notification,omitempty"`
	Notifications []domain.StoredNotification `json:"notifications"`
	Unread        int                         `json:"unread"`
	At            time.Time                   `json:"at"`
}

type notificationStore interface {
	FetchAll(ctx context.Context) []domain.StoredNotification
	Add(ctx context.Context, n domain.StoredNotification) []domain.StoredNotification
	MarkRead(ctx context.Context, id string) []domain.StoredNotification
	Delete(ctx context.Context, id string) []domain.StoredNotification
	ClearAll(ctx context.Context)
}

type Deps struct {
	Push  push.Service
	Inbox notificationStore
	Log   logrus.FieldLogger
}

// Agent holds the inbox state of a running installation and reacts to
// incoming messages.
type Agent struct {
	push   push.Service
	inbox  notificationStore
	log    logrus.FieldLogger
	events *pubsub.Hub[string, Event]
	now    func() time.Time

	// opMu orders inbox writes with the state snapshots they produce.
	opMu sync.Mutex
	// lifeMu makes Stop wait for a Start in progress.
	lifeMu sync.Mutex

	mu            sync.RWMutex
	notifications []domain.StoredNotification
	token         string
	stop          func()
}

func New(d Deps) *Agent {
	return &Agent{
		push:          d.Push,
		inbox:         d.Inbox,
		log:           d.Log.WithField("component", "agent"),
		events:        pubsub.NewHub[string, Event](),
		now:           time.Now,
		notifications: []domain.StoredNotification{},
	}
}

// Start loads the stored inbox, resolves the device token and begins
// listening for messages. A launch message is handled before Start returns.
// Calling Start on a running agent does nothing.
func (a *Agent) Start(ctx context.Context) {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	a.mu.RLock()
	running := a.stop != nil
	a.mu.RUnlock()
	if running {
		return
	}

	a.push.Setup(ctx)
	a.setState(a.inbox.FetchAll(ctx))

	if tok, ok := a.push.Token(ctx); ok {
		a.mu.Lock()
		a.token = tok
		a.mu.Unlock()
	}

	stop := a.push.Listen(ctx, push.Handlers{
		OnForeground: func(ctx context.Context, msg domain.RemoteMessage) { a.HandleNew(ctx, msg) },
		OnOpened:     func(ctx context.Context, msg domain.RemoteMessage) { a.HandleNew(ctx, msg) },
	})
	a.mu.Lock()
	a.stop = stop
	a.mu.Unlock()

	if msg, ok := a.push.InitialNotification(); ok {
		a.HandleNew(ctx, *msg)
	}
	a.log.WithField("stored", len(a.Notifications())).Info("agent started")
}

// Stop tears down the message listeners and waits for them to exit.
func (a *Agent) Stop() {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	a.mu.Lock()
	stop := a.stop
	a.stop = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
		a.log.Info("agent stopped")
	}
}

// HandleNew stores an incoming message and alerts the user about it.
func (a *Agent) HandleNew(ctx context.Context, msg domain.RemoteMessage) domain.StoredNotification {
	n := inbox.FromRemoteMessage(msg, a.now())
	a.opMu.Lock()
	list := a.inbox.Add(ctx, n)
	a.setState(list)
	a.opMu.Unlock()

	a.log.WithFields(logrus.Fields{"id": n.ID, "title": n.Title}).Info("new notification")
	a.push.Display(ctx, n.Title, n.Body, n.Data)
	a.emit(EventCreated, &n, list)
	return n
}

func (a *Agent) MarkRead(ctx context.Context, id string) []domain.StoredNotification {
	a.opMu.Lock()
	list := a.inbox.MarkRead(ctx, id)
	a.setState(list)
	a.opMu.Unlock()
	a.emit(EventUpdated, nil, list)
	return slices.Clone(list)
}

func (a *Agent) Delete(ctx context.Context, id string) []domain.StoredNotification {
	a.opMu.Lock()
	list := a.inbox.Delete(ctx, id)
	a.setState(list)
	a.opMu.Unlock()
	a.emit(EventUpdated, nil, list)
	return slices.Clone(list)
}

// ClearAll empties the inbox. The in-memory state is cleared even if the
// write fails.
func (a *Agent) ClearAll(ctx context.Context) {
	a.opMu.Lock()
	a.inbox.ClearAll(ctx)
	a.setState(nil)
	a.opMu.Unlock()
	a.emit(EventUpdated, nil, nil)
}

// Notifications returns the current inbox, newest first.
func (a *Agent) Notifications() []domain.StoredNotification {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.notifications)
}

func (a *Agent) UnreadCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return unread(a.notifications)
}

// Token returns the device token, retrying resolution if Start could not
// obtain one.
func (a *Agent) Token(ctx context.Context) (string, bool) {
	a.mu.RLock()
	tok := a.token
	a.mu.RUnlock()
	if tok != "" {
		return tok, true
	}
	tok, ok := a.push.Token(ctx)
	if !ok {
		return "", false
	}
	a.mu.Lock()
	a.token = tok
	a.mu.Unlock()
	return tok, true
}

// Events streams state changes until unsubscribe is called.
func (a *Agent) Events() (<-chan Event, func()) {
	return a.events.Subscribe(eventsTopic)
}

func (a *Agent) setState(list []domain.StoredNotification) {
	if list == nil {
		list = []domain.StoredNotification{}
	}
	a.mu.Lock()
	a.notifications = slices.Clone(list)
	a.mu.Unlock()
}

func (a *Agent) emit(kind string, n *domain.StoredNotification, list []domain.StoredNotification) {
	if list == nil {
		list = []domain.StoredNotification{}
	}
	a.events.Publish(eventsTopic, Event{
		Type:          kind,
		Notification:  n,
		Notifications: slices.Clone(list),
		Unread:        unread(list),
		At:            a.now().UTC(),
	})
}

func unread(list []domain.StoredNotification) int {
	c := 0
	for _, n := range list {
		if !n.Read {
			c++
		}
	}
	return c
}
