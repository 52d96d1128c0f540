package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-push-inbox/internal/application/agent"
	"github.com/go-push-inbox/internal/application/inbox"
	"github.com/go-push-inbox/internal/application/push"
	"github.com/go-push-inbox/internal/config"
	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/infrastructure/bolt"
	"github.com/go-push-inbox/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-push-inbox/internal/infrastructure/jwt"
	"github.com/go-push-inbox/internal/infrastructure/memory"
	"github.com/go-push-inbox/internal/infrastructure/messaging"
	"github.com/go-push-inbox/internal/infrastructure/notifier"
	s3infra "github.com/go-push-inbox/internal/infrastructure/s3"
	"github.com/go-push-inbox/internal/infrastructure/smtp"
	"github.com/go-push-inbox/internal/infrastructure/sns"
	"github.com/go-push-inbox/internal/pkg/logging"
	transporthttp "github.com/go-push-inbox/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type keyValueStore interface {
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	SetItem(ctx context.Context, key string, value []byte) error
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Debug("no .env file found, reading from environment")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("agent exited")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	sinks := []notifier.Sink{notifier.NewLogSink(log)}
	var registrar push.TokenRegistrar
	if cfg.NotifyEmailTo != "" {
		sinks = append(sinks, smtp.NewEmailSink(smtp.NewMailer(cfg), cfg.NotifyEmailTo))
	}
	if cfg.NotifySMSTo != "" || cfg.SNSPlatformApplicationARN != "" {
		snsClient, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		if cfg.NotifySMSTo != "" {
			sinks = append(sinks, sns.NewSMSSink(snsClient, cfg.NotifySMSTo))
		}
		if cfg.SNSPlatformApplicationARN != "" {
			registrar = sns.NewRegistrar(snsClient, cfg.SNSPlatformApplicationARN)
		}
	}

	hub := messaging.NewHub()
	permission := domain.ParseAuthorizationStatus(cfg.NotificationPermission)
	svc := push.NewService(push.ServiceDeps{
		Messages:   hub,
		Notifier:   notifier.New(log, sinks...),
		Storage:    kv,
		Registrar:  registrar,
		Authorizer: push.StaticAuthorizer(permission),
		Log:        log,
	})

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		bridge, err := messaging.StartRedisBridge(ctx, client, cfg.RedisChannel, hub, log)
		if err != nil {
			return err
		}
		defer bridge.Close()
	}

	a := agent.New(agent.Deps{Push: svc, Inbox: inbox.NewStore(kv, log), Log: log})
	a.Start(ctx)
	defer a.Stop()

	deps := &transporthttp.Deps{Agent: a, Bus: hub, Permission: permission}
	if p, err := jwtinfra.NewProvider(cfg); err != nil {
		log.WithError(err).Warn("delivery token verification not available")
	} else if p != nil {
		deps.Verifier = p
	}

	srv := transporthttp.NewServer(ctx, fmt.Sprintf(":%s", cfg.AppPort), transporthttp.NewRouter(ctx, cfg, deps, log))

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.AppPort, "env": cfg.AppEnv, "storage": cfg.KVBackend}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStorage returns the configured key-value backend and its close func.
func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (keyValueStore, func(), error) {
	switch cfg.KVBackend {
	case "bolt":
		db, err := bolt.Open(cfg.DataPath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("close bolt store")
			}
		}, nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTable, log)
		return dynamo.NewKVRepo(client, cfg.DynamoTable), func() {}, nil
	case "s3":
		client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return s3infra.NewStore(client, cfg.S3BucketName, cfg.S3Prefix), func() {}, nil
	case "memory":
		log.Warn("memory storage: notifications are lost on exit")
		return memory.NewStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
}
