package domain

import (
	"time"

	"github.com/google/uuid"
)

// Person is a named counterparty for RECEIVED/GIVEN entries. A person can
// only be deleted while no ledger entry references them.
type Person struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PersonStatus classifies the debt direction of a person's net balance.
type PersonStatus string

const (
	PersonStatusTheyOweMe PersonStatus = "THEY_OWE_ME"
	PersonStatusIOweThem  PersonStatus = "I_OWE_THEM"
	PersonStatusSettled   PersonStatus = "SETTLED"
)
