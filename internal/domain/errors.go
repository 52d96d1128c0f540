package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Infrastructure wraps these so the transport layer can map them without leaking details.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrBadRequest       = errors.New("bad request")
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrChannelNotFound  = errors.New("notification channel not found")
	ErrTokenUnavailable = errors.New("device token unavailable")
)
