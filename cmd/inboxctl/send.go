package main

import (
	"fmt"
	"strings"

	"github.com/go-push-inbox/internal/domain"
	jwtinfra "github.com/go-push-inbox/internal/infrastructure/jwt"
	"github.com/go-push-inbox/internal/infrastructure/messaging"
	"github.com/go-push-inbox/internal/pkg/id"
	"github.com/go-push-inbox/internal/pkg/validate"
	"github.com/go-push-inbox/internal/transport/http/client"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const (
	transportHTTP  = "http"
	transportRedis = "redis"
)

var (
	sendKind      string
	sendID        string
	sendTitle     string
	sendBody      string
	sendData      map[string]string
	sendTransport string
	sendDataOnly  bool

	sendCmd = &cobra.Command{
		Use:   "send",
		Short: "deliver a test message to the agent",
		Long: `Deliver a message as if the push service had sent it.

Over http the message is posted to the agent's webhook, with a delivery
token when JWT_PRIVATE_KEY_PATH points at a key. Over redis it is
published on REDIS_CHANNEL.`,
		Example: `inboxctl send --title "Hello" --body "from inboxctl"
inboxctl send --kind background --data-only --data orderId=42
inboxctl send --transport redis --kind opened --title "Tap me"`,
		Args: cobra.NoArgs,
		RunE: runSend,
	}
)

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendKind, "kind", string(domain.DeliveryForeground), "delivery kind: foreground, background or opened")
	f.StringVar(&sendID, "id", "", "message id (generated when empty)")
	f.StringVar(&sendTitle, "title", "", "notification title")
	f.StringVar(&sendBody, "body", "", "notification body")
	f.StringToStringVar(&sendData, "data", nil, "data payload as key=value pairs")
	f.BoolVar(&sendDataOnly, "data-only", false, "send without a notification part")
	f.StringVar(&sendTransport, "transport", transportHTTP, "http or redis")
}

func buildMessage() (domain.DeliverMessageRequest, error) {
	msgID := sendID
	if msgID == "" {
		msgID = id.New()
	}
	req := domain.DeliverMessageRequest{
		Kind: domain.DeliveryKind(sendKind),
		Message: domain.RemoteMessage{
			MessageID: msgID,
			Data:      sendData,
		},
	}
	if !sendDataOnly {
		req.Message.Notification = &domain.MessageNotification{Title: sendTitle, Body: sendBody}
	}
	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	return req, nil
}

func runSend(cmd *cobra.Command, _ []string) error {
	req, err := buildMessage()
	if err != nil {
		return err
	}

	switch strings.ToLower(sendTransport) {
	case transportHTTP:
		var opts []client.Option
		if p, err := jwtinfra.NewProvider(cfg); err != nil {
			log.WithError(err).Debug("sending without a delivery token")
		} else if p != nil {
			opts = append(opts, client.WithSigner(p, "inboxctl"))
		}
		n, err := client.New(agentURL, opts...).Send(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %s (%s), %d listener(s)\n", req.Message.MessageID, req.Kind, n)
	case transportRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is not set: %w", domain.ErrBadRequest)
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := messaging.PublishRedis(cmd.Context(), rdb, cfg.RedisChannel, req); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %s (%s) on %s\n", req.Message.MessageID, req.Kind, cfg.RedisChannel)
	default:
		return fmt.Errorf("unknown transport %q: %w", sendTransport, domain.ErrBadRequest)
	}
	return nil
}
