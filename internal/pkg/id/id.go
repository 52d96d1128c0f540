package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NotificationID is the identifier given to a message that arrived without one.
func NotificationID() string {
	return "notification-" + New()
}
