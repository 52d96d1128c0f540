package push

import (
	"context"
	"errors"
	"sync"

	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/token"
	"github.com/sirupsen/logrus"
)

const (
	// TokenKey holds the installation's device token.
	TokenKey = "fcmToken"
	// EndpointKey holds the push service endpoint registered for the token.
	EndpointKey = "snsEndpointArn"

	DefaultChannelID   = "default_channel"
	DefaultChannelName = "Default notifications"

	fallbackTitle = "Notification"
)

// DefaultChannel is created by Setup and used for every displayed notification.
var DefaultChannel = domain.Channel{
	ID:         DefaultChannelID,
	Name:       DefaultChannelName,
	Importance: domain.ImportanceHigh,
}

// Service is the facade over the push and local-notification backends.
type Service interface {
	Setup(ctx context.Context)
	RequestPermission(ctx context.Context) bool
	Token(ctx context.Context) (string, bool)
	Display(ctx context.Context, title, body string, data map[string]string)
	// Listen starts the message listeners and returns the func that stops them.
	Listen(ctx context.Context, h Handlers) (unsubscribe func())
	InitialNotification() (*domain.RemoteMessage, bool)
}

// Handlers receive messages the app has to react to. Nil handlers are skipped.
type Handlers struct {
	OnForeground func(ctx context.Context, msg domain.RemoteMessage)
	OnOpened     func(ctx context.Context, msg domain.RemoteMessage)
}

type messageSource interface {
	Subscribe(kind domain.DeliveryKind) (<-chan domain.RemoteMessage, func())
	TakeInitial() (*domain.RemoteMessage, bool)
}

type displayer interface {
	CreateChannel(ch domain.Channel) string
	Display(ctx context.Context, req domain.DisplayRequest) error
}

type keyValueStore interface {
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	SetItem(ctx context.Context, key string, value []byte) error
}

// TokenRegistrar registers a device token with the push service.
type TokenRegistrar interface {
	Register(ctx context.Context, token, existingEndpoint string) (string, error)
}

// Authorizer answers a permission request.
type Authorizer interface {
	RequestPermission(ctx context.Context) (domain.AuthorizationStatus, error)
}

// StaticAuthorizer reports a fixed, configured status.
type StaticAuthorizer domain.AuthorizationStatus

func (a StaticAuthorizer) RequestPermission(context.Context) (domain.AuthorizationStatus, error) {
	return domain.AuthorizationStatus(a), nil
}

// ServiceDeps groups the collaborators of the push service.
// Registrar may be nil when no push platform is configured.
type ServiceDeps struct {
	Messages   messageSource
	Notifier   displayer
	Storage    keyValueStore
	Registrar  TokenRegistrar
	Authorizer Authorizer
	Log        logrus.FieldLogger
}

type service struct {
	messages   messageSource
	notifier   displayer
	storage    keyValueStore
	registrar  TokenRegistrar
	authorizer Authorizer
	log        logrus.FieldLogger
	newToken   func() (string, error)
}

func NewService(d ServiceDeps) Service {
	return &service{
		messages:   d.Messages,
		notifier:   d.Notifier,
		storage:    d.Storage,
		registrar:  d.Registrar,
		authorizer: d.Authorizer,
		log:        d.Log.WithField("component", "push"),
		newToken:   token.NewDeviceToken,
	}
}

// Setup creates the default notification channel. Safe to call repeatedly.
func (s *service) Setup(_ context.Context) {
	s.notifier.CreateChannel(DefaultChannel)
}

func (s *service) RequestPermission(ctx context.Context) bool {
	status, err := s.authorizer.RequestPermission(ctx)
	if err != nil {
		s.log.WithError(err).Error("error requesting notification permission")
		return false
	}
	if !status.Enabled() {
		s.log.WithField("status", status).Info("notification permission refused")
		return false
	}
	s.log.WithField("status", status).Debug("authorization status")
	return true
}

// Token returns the installation's device token, creating and registering it
// on first use. Any failure is logged and reported as ("", false).
func (s *service) Token(ctx context.Context) (string, bool) {
	if !s.RequestPermission(ctx) {
		return "", false
	}
	tok, err := s.resolveToken(ctx)
	if err != nil {
		s.log.WithError(err).Error("error getting device token")
		return "", false
	}
	s.log.WithField("token", tok).Info("device token")
	return tok, true
}

func (s *service) resolveToken(ctx context.Context) (string, error) {
	raw, found, err := s.storage.GetItem(ctx, TokenKey)
	if err != nil {
		return "", err
	}
	tok := string(raw)
	if !found || tok == "" {
		if tok, err = s.newToken(); err != nil {
			return "", err
		}
	}

	if s.registrar != nil {
		existing, _, err := s.storage.GetItem(ctx, EndpointKey)
		if err != nil {
			return "", err
		}
		endpoint, err := s.registrar.Register(ctx, tok, string(existing))
		if err != nil {
			return "", errors.Join(domain.ErrTokenUnavailable, err)
		}
		if err := s.storage.SetItem(ctx, EndpointKey, []byte(endpoint)); err != nil {
			return "", err
		}
	}

	if err := s.storage.SetItem(ctx, TokenKey, []byte(tok)); err != nil {
		return "", err
	}
	return tok, nil
}

// Display shows a local notification on the default channel. Errors are logged.
func (s *service) Display(ctx context.Context, title, body string, data map[string]string) {
	channelID := s.notifier.CreateChannel(DefaultChannel)
	err := s.notifier.Display(ctx, domain.DisplayRequest{
		ChannelID: channelID,
		Title:     title,
		Body:      body,
		Data:      data,
		Sound:     "default",
		Vibration: []int{300, 500},
	})
	if err != nil {
		s.log.WithError(err).Error("error displaying notification")
		return
	}
	s.log.Debug("notification displayed")
}

func (s *service) InitialNotification() (*domain.RemoteMessage, bool) {
	msg, ok := s.messages.TakeInitial()
	if ok {
		s.log.WithField("message_id", msg.MessageID).Info("app opened from a notification")
	}
	return msg, ok
}

// Listen wires the three delivery kinds:
//   - background messages with a notification part are displayed locally;
//   - foreground messages go to h.OnForeground without being displayed;
//   - opened messages go to h.OnOpened.
//
// The returned func unsubscribes and waits for the listeners to exit. It is
// safe to call more than once. Cancelling ctx also stops the listeners.
func (s *service) Listen(ctx context.Context, h Handlers) func() {
	var wg sync.WaitGroup
	var unsubs []func()

	listen := func(kind domain.DeliveryKind, handle func(domain.RemoteMessage)) {
		ch, unsub := s.messages.Subscribe(kind)
		unsubs = append(unsubs, unsub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					handle(msg)
				}
			}
		}()
	}

	listen(domain.DeliveryBackground, func(msg domain.RemoteMessage) {
		s.log.WithField("message_id", msg.MessageID).Info("message received in background")
		if msg.Notification == nil {
			return
		}
		title := msg.Notification.Title
		if title == "" {
			title = fallbackTitle
		}
		s.Display(ctx, title, msg.Notification.Body, msg.Data)
	})
	listen(domain.DeliveryForeground, func(msg domain.RemoteMessage) {
		s.log.WithField("message_id", msg.MessageID).Info("message received in foreground")
		if h.OnForeground != nil {
			h.OnForeground(ctx, msg)
		}
	})
	listen(domain.DeliveryOpened, func(msg domain.RemoteMessage) {
		s.log.WithField("message_id", msg.MessageID).Info("app opened from a notification (background)")
		if h.OnOpened != nil {
			h.OnOpened(ctx, msg)
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
			wg.Wait()
		})
	}
}
