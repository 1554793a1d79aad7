package domain

import "time"

// UserRecord is one enrolled identity: a sanitized username plus the
// reference image persisted for it. Usernames are unique; re-enrollment
// overwrites the prior reference image.
type UserRecord struct {
	Username   string    `json:"username"`
	ImagePath  string    `json:"-"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// LoginResult is the outcome of matching a probe image against the
// identity store.
type LoginResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
