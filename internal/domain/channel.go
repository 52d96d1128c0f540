package domain

// Importance levels follow the Android notification channel scale.
type Importance int

const (
	ImportanceNone    Importance = 0
	ImportanceMin     Importance = 1
	ImportanceLow     Importance = 2
	ImportanceDefault Importance = 3
	ImportanceHigh    Importance = 4
)

// Channel groups local notifications that share presentation settings.
type Channel struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Importance Importance `json:"importance"`
}

// DisplayRequest is a local notification to present to the user.
// Vibration is a pattern in milliseconds.
type DisplayRequest struct {
	ChannelID string            `json:"channel_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Sound     string            `json:"sound,omitempty"`
	Vibration []int             `json:"vibration,omitempty"`
}
