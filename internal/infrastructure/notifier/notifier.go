package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-push-inbox/internal/domain"
	"github.com/sirupsen/logrus"
)

// Sink presents a local notification somewhere the user will see it.
type Sink interface {
	Name() string
	Show(ctx context.Context, ch domain.Channel, req domain.DisplayRequest) error
}

// Notifier keeps the channel registry and fans displayed notifications out to sinks.
type Notifier struct {
	mu       sync.RWMutex
	channels map[string]domain.Channel
	sinks    []Sink
	log      logrus.FieldLogger
}

func New(log logrus.FieldLogger, sinks ...Sink) *Notifier {
	return &Notifier{
		channels: make(map[string]domain.Channel),
		sinks:    sinks,
		log:      log.WithField("component", "notifier"),
	}
}

// CreateChannel registers ch and returns its id. Re-creating a channel updates
// its name and importance.
func (n *Notifier) CreateChannel(ch domain.Channel) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.channels[ch.ID] = ch
	return ch.ID
}

func (n *Notifier) Channel(id string) (domain.Channel, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ch, ok := n.channels[id]
	return ch, ok
}

// Display shows req on every sink. Channels with importance none are muted.
// All sinks are tried; their failures are joined.
func (n *Notifier) Display(ctx context.Context, req domain.DisplayRequest) error {
	ch, ok := n.Channel(req.ChannelID)
	if !ok {
		return fmt.Errorf("display on %q: %w", req.ChannelID, domain.ErrChannelNotFound)
	}
	if ch.Importance == domain.ImportanceNone {
		n.log.WithField("channel", ch.ID).Debug("channel muted, notification dropped")
		return nil
	}
	var errs []error
	for _, s := range n.sinks {
		if err := s.Show(ctx, ch, req); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
