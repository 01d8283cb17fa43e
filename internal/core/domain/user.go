package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account owner. Every wallet, person and ledger entry
// is scoped to exactly one user.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	CreatedAt    time.Time `json:"created_at"`
}
