package models

import (
	"time"

	"github.com/google/uuid"
)

// Preferences is one row per user, created with defaults at signup and
// updated via upsert. Every field has an explicit default; there is no
// free-form settings blob.
type Preferences struct {
	UserID             uuid.UUID `json:"userId"`
	Theme              string    `json:"theme"`              // "light" | "dark" | "system"
	EmailNotifications bool      `json:"emailNotifications"` // default true
	PushNotifications  bool      `json:"pushNotifications"`  // default false
	PublicProfile      bool      `json:"publicProfile"`      // default false
	DailyGoalMinutes   int       `json:"dailyGoalMinutes"`   // default 30
	ReminderTime       string    `json:"reminderTime"`       // "HH:MM", default "18:00"
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the documented defaults for a fresh account.
func DefaultPreferences(userID uuid.UUID) *Preferences {
	return &Preferences{
		UserID:             userID,
		Theme:              "system",
		EmailNotifications: true,
		PushNotifications:  false,
		PublicProfile:      false,
		DailyGoalMinutes:   30,
		ReminderTime:       "18:00",
	}
}
