package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-push-inbox/internal/config"
	jwtinfra "github.com/go-push-inbox/internal/infrastructure/jwt"
	"github.com/go-push-inbox/internal/transport/http/handler"
	appmiddleware "github.com/go-push-inbox/internal/transport/http/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the agent's router. ctx bounds background
// work started by middleware.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	deliverMw := []func(http.Handler) http.Handler{
		appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.WebhookRatePerSecond), cfg.WebhookBurst).Limit,
	}
	if deps.Verifier != nil {
		deliverMw = append(deliverMw,
			appmiddleware.Auth(deps.Verifier),
			appmiddleware.RequireScope(jwtinfra.ScopeDeliver),
		)
	} else {
		log.Warn("delivery tokens not configured, webhook accepts unsigned messages")
	}

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(deps.Agent)
	deviceH := handler.NewDeviceHandler(deps.Agent, deps.Permission)
	msgH := handler.NewMessageHandler(deps.Bus, log)
	eventH := handler.NewEventHandler(deps.Agent, log)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)

		r.Get("/device/token", deviceH.Token)

		r.Get("/notifications", notifH.List)
		r.Delete("/notifications", notifH.Clear)
		r.Get("/notifications/unread-count", notifH.UnreadCount)
		r.Put("/notifications/{id}", notifH.MarkAsRead)
		r.Delete("/notifications/{id}", notifH.Delete)

		r.Get("/events", eventH.Stream)

		r.With(deliverMw...).Post("/messages", msgH.Deliver)
	})

	return r
}
