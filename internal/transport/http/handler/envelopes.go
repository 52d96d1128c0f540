package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-push-inbox/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// UnreadEnvelope wraps the unread counter.
type UnreadEnvelope struct {
	Unread int `json:"unread"`
}

// DeviceTokenEnvelope wraps the device token. Token is empty when it could not
// be obtained.
type DeviceTokenEnvelope struct {
	Token      string                     `json:"token"`
	Permission domain.AuthorizationStatus `json:"permission"`
	Error      string                     `json:"error,omitempty"`
}

// DeliveryEnvelope is returned when a message is accepted.
type DeliveryEnvelope struct {
	Message   string `json:"message"`
	Delivered int    `json:"delivered"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain errors to status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrChannelNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTokenUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
