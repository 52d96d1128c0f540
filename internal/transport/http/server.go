package http

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewServer wraps handler in an http.Server whose request contexts derive
// from ctx, so cancelling ctx ends long-lived responses such as /v1/events
// and lets Shutdown complete.
func NewServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /v1/events holds responses open.
		IdleTimeout: 60 * time.Second,
	}
}
