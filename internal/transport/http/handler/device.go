package handler

import (
	"context"
	"net/http"

	"github.com/go-push-inbox/internal/domain"
)

type tokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// DeviceHandler exposes the installation's push registration.
type DeviceHandler struct {
	tokens     tokenSource
	permission domain.AuthorizationStatus
}

func NewDeviceHandler(tokens tokenSource, permission domain.AuthorizationStatus) *DeviceHandler {
	return &DeviceHandler{tokens: tokens, permission: permission}
}

func (h *DeviceHandler) Token(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.tokens.Token(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, DeviceTokenEnvelope{
			Permission: h.permission,
			Error:      domain.ErrTokenUnavailable.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, DeviceTokenEnvelope{Token: tok, Permission: h.permission})
}
