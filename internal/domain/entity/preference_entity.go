package entity

import "time"

// Preferences is the explicit, injectable settings object for a user.
// It is loaded once per request at the settings boundary and saved as a
// whole; nothing reads it as ambient global state.
type Preferences struct {
	UserID    string    `json:"-"`
	Language  string    `json:"language"`
	DarkMode  bool      `json:"dark_mode"`
	UpdatedAt time.Time `json:"-"`
}

// DefaultPreferences returns the settings applied before a user has
// saved anything.
func DefaultPreferences(userID string) Preferences {
	return Preferences{UserID: userID, Language: "en", DarkMode: true}
}
