package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttemptKind labels what the client was trying to do.
type AttemptKind string

const (
	AttemptVerify   AttemptKind = "verify"
	AttemptLogin    AttemptKind = "login"
	AttemptRegister AttemptKind = "register"
)

// Valid reports whether k is a known attempt kind.
func (k AttemptKind) Valid() bool {
	switch k {
	case AttemptVerify, AttemptLogin, AttemptRegister:
		return true
	}
	return false
}

// Attempt is one audit trail row for a liveness or authentication call.
// Username is empty when the caller was not recognized.
type Attempt struct {
	ID        uuid.UUID
	Kind      AttemptKind
	Username  string
	Success   bool
	Score     float64
	Reason    string
	LatencyMs int64
	CreatedAt time.Time
}
