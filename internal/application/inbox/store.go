package inbox

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/id"
	"github.com/sirupsen/logrus"
)

const (
	// StorageKey is the single key the log is persisted under.
	StorageKey = "app_notifications"
	// MaxStoredNotifications bounds the log; older entries fall off the end.
	MaxStoredNotifications = 50

	defaultTitle = "Notification"
)

// KeyValueStore is the persistence the log needs: whole-value read and overwrite.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	SetItem(ctx context.Context, key string, value []byte) error
}

// Store is the local notification log, newest first. Every mutation is a
// read-modify-write of the whole list under one mutex, so the store is the
// single writer of its key within the process.
//
// Persistence failures never reach callers: they are logged and the list
// currently in storage is returned instead.
type Store struct {
	mu  sync.Mutex
	kv  KeyValueStore
	log logrus.FieldLogger
}

func NewStore(kv KeyValueStore, log logrus.FieldLogger) *Store {
	return &Store{
		kv:  kv,
		log: log.WithFields(logrus.Fields{"component": "inbox", "key": StorageKey}),
	}
}

// FromRemoteMessage converts an incoming push message into a log entry received at now.
func FromRemoteMessage(msg domain.RemoteMessage, now time.Time) domain.StoredNotification {
	n := domain.StoredNotification{
		ID:        msg.MessageID,
		Title:     defaultTitle,
		Timestamp: now.UnixMilli(),
		Data:      msg.Data,
	}
	if n.ID == "" {
		n.ID = id.NotificationID()
	}
	if msg.Notification != nil {
		if msg.Notification.Title != "" {
			n.Title = msg.Notification.Title
		}
		n.Body = msg.Notification.Body
	}
	return n
}

// FetchAll returns the stored list; absent or unreadable data yields an empty list.
func (s *Store) FetchAll(ctx context.Context) []domain.StoredNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetch(ctx)
}

// Add prepends n unless an entry with the same id exists, then trims the list
// to MaxStoredNotifications.
func (s *Store) Add(ctx context.Context, n domain.StoredNotification) []domain.StoredNotification {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.fetch(ctx)
	for _, item := range current {
		if item.ID == n.ID {
			return current
		}
	}

	updated := make([]domain.StoredNotification, 0, len(current)+1)
	updated = append(updated, n)
	updated = append(updated, current...)
	if len(updated) > MaxStoredNotifications {
		updated = updated[:MaxStoredNotifications]
	}
	return s.persist(ctx, "add", updated)
}

// MarkRead sets the read flag of the entry with id. Other entries are untouched.
func (s *Store) MarkRead(ctx context.Context, notificationID string) []domain.StoredNotification {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.fetch(ctx)
	updated := make([]domain.StoredNotification, len(current))
	copy(updated, current)
	for i := range updated {
		if updated[i].ID == notificationID {
			updated[i].Read = true
		}
	}
	return s.persist(ctx, "mark_read", updated)
}

// Delete removes the entry with id; an unknown id leaves the list as is.
func (s *Store) Delete(ctx context.Context, notificationID string) []domain.StoredNotification {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.fetch(ctx)
	updated := make([]domain.StoredNotification, 0, len(current))
	for _, item := range current {
		if item.ID != notificationID {
			updated = append(updated, item)
		}
	}
	return s.persist(ctx, "delete", updated)
}

// ClearAll persists an empty list.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist(ctx, "clear_all", []domain.StoredNotification{})
}

// UnreadCount is the number of entries not yet marked read.
func (s *Store) UnreadCount(ctx context.Context) int {
	count := 0
	for _, n := range s.FetchAll(ctx) {
		if !n.Read {
			count++
		}
	}
	return count
}

func (s *Store) fetch(ctx context.Context) []domain.StoredNotification {
	raw, found, err := s.kv.GetItem(ctx, StorageKey)
	if err != nil {
		s.log.WithError(err).Error("could not read notifications")
		return []domain.StoredNotification{}
	}
	if !found {
		return []domain.StoredNotification{}
	}
	var list []domain.StoredNotification
	if err := json.Unmarshal(raw, &list); err != nil {
		s.log.WithError(err).Error("stored notifications are corrupt, treating as empty")
		return []domain.StoredNotification{}
	}
	if list == nil {
		list = []domain.StoredNotification{}
	}
	return list
}

// persist writes list and returns it. On failure it logs and returns what
// storage still holds.
func (s *Store) persist(ctx context.Context, op string, list []domain.StoredNotification) []domain.StoredNotification {
	raw, err := json.Marshal(list)
	if err == nil {
		err = s.kv.SetItem(ctx, StorageKey, raw)
	}
	if err != nil {
		s.log.WithError(err).WithField("op", op).Error("could not save notifications")
		return s.fetch(ctx)
	}
	return list
}
