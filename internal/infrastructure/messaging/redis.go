package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/validate"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisBridge replays messages published on a Redis Pub/Sub channel into the Hub,
// so a backend can reach the installation without the HTTP webhook.
type RedisBridge struct {
	pubsub  *redis.PubSub
	channel string
	hub     *Hub
	log     logrus.FieldLogger
	done    chan struct{}
}

// StartRedisBridge subscribes to channel and starts forwarding. The subscription
// is confirmed before it returns.
func StartRedisBridge(ctx context.Context, client *redis.Client, channel string, hub *Hub, log logrus.FieldLogger) (*RedisBridge, error) {
	ps := client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe redis channel %s: %w", channel, err)
	}
	b := &RedisBridge{
		pubsub:  ps,
		channel: channel,
		hub:     hub,
		log:     log.WithFields(logrus.Fields{"component": "redis-bridge", "channel": channel}),
		done:    make(chan struct{}),
	}
	go b.run()
	b.log.Info("redis bridge subscribed")
	return b, nil
}

func (b *RedisBridge) run() {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		b.handlePayload(msg.Payload)
	}
}

func (b *RedisBridge) handlePayload(payload string) {
	req, err := DecodeEnvelope([]byte(payload))
	if err != nil {
		b.log.WithError(err).Warn("dropping redis message")
		return
	}
	b.hub.Deliver(req.Kind, req.Message)
}

// Close unsubscribes and waits for the forwarding goroutine to exit.
func (b *RedisBridge) Close() error {
	err := b.pubsub.Close()
	<-b.done
	return err
}

// DecodeEnvelope parses and validates a delivery envelope.
func DecodeEnvelope(data []byte) (domain.DeliverMessageRequest, error) {
	var req domain.DeliverMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("decode envelope: %w", err)
	}
	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	return req, nil
}

// PublishRedis sends one delivery envelope to channel.
func PublishRedis(ctx context.Context, client *redis.Client, channel string, req domain.DeliverMessageRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish redis channel %s: %w", channel, err)
	}
	return nil
}
