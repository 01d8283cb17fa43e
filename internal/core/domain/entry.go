package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind represents the kind of money movement a ledger entry records.
type EntryKind string

const (
	EntryKindReceived EntryKind = "RECEIVED" // someone gave you money
	EntryKindGiven    EntryKind = "GIVEN"    // you gave someone money
	EntryKindExpense  EntryKind = "EXPENSE"  // spent money, no person
	EntryKindIncome   EntryKind = "INCOME"   // income, no person
	EntryKindTransfer EntryKind = "TRANSFER" // wallet-to-wallet internal transfer
)

// KindSpec is the structural contract of one entry kind: which references
// must be present and which kind undoes it. The balance effect follows from
// the wallet slots: the from-wallet is always debited by the entry amount
// and the to-wallet is always credited.
type KindSpec struct {
	NeedsPerson bool
	NeedsFrom   bool
	NeedsTo     bool
	Inverse     EntryKind
}

// kindSpecs is the closed table over all five kinds. Adding a kind without
// a row here makes it unsupported everywhere at once.
var kindSpecs = map[EntryKind]KindSpec{
	EntryKindReceived: {NeedsPerson: true, NeedsTo: true, Inverse: EntryKindGiven},
	EntryKindGiven:    {NeedsPerson: true, NeedsFrom: true, Inverse: EntryKindReceived},
	EntryKindExpense:  {NeedsFrom: true, Inverse: EntryKindIncome},
	EntryKindIncome:   {NeedsTo: true, Inverse: EntryKindExpense},
	EntryKindTransfer: {NeedsFrom: true, NeedsTo: true, Inverse: EntryKindTransfer},
}

// SpecFor returns the structural spec for a kind, or ok=false for an
// unknown kind.
func SpecFor(kind EntryKind) (KindSpec, bool) {
	s, ok := kindSpecs[kind]
	return s, ok
}

// CheckShape validates the presence/absence of references against the spec.
// It returns an empty string when the shape is valid, otherwise a message
// naming the first violated rule.
func (s KindSpec) CheckShape(kind EntryKind, hasPerson, hasFrom, hasTo bool) string {
	switch {
	case s.NeedsPerson && !hasPerson:
		return fmt.Sprintf("personId is required for %s", kind)
	case !s.NeedsPerson && hasPerson:
		return fmt.Sprintf("personId must be null for %s", kind)
	case s.NeedsFrom && !hasFrom:
		return fmt.Sprintf("fromWalletId is required for %s", kind)
	case !s.NeedsFrom && hasFrom:
		return fmt.Sprintf("fromWalletId must be null for %s", kind)
	case s.NeedsTo && !hasTo:
		return fmt.Sprintf("toWalletId is required for %s", kind)
	case !s.NeedsTo && hasTo:
		return fmt.Sprintf("toWalletId must be null for %s", kind)
	}
	return ""
}

// Entry is one immutable recorded money movement. After creation the only
// field that may ever change is ReversedByID, set exactly once when the
// entry is reversed. Reversal entries (IsReversal=true) can never be
// reversed themselves.
type Entry struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	PersonID      *uuid.UUID      `json:"person_id,omitempty"`
	FromWalletID  *uuid.UUID      `json:"from_wallet_id,omitempty"`
	ToWalletID    *uuid.UUID      `json:"to_wallet_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          EntryKind       `json:"kind"`
	Description   *string         `json:"description,omitempty"`
	EffectiveDate time.Time       `json:"effective_date"`
	CreatedAt     time.Time       `json:"created_at"`
	IsReversal    bool            `json:"is_reversal"`
	ReversedByID  *uuid.UUID      `json:"reversed_by_id,omitempty"`
}

// IsReversed reports whether the entry has already been undone.
func (e *Entry) IsReversed() bool {
	return e.ReversedByID != nil
}

// ReversalDescription builds the description carried by a reversal entry,
// referencing the original entry's id and keeping its description.
func ReversalDescription(original *Entry) string {
	base := ""
	if original.Description != nil {
		base = *original.Description
	}
	if base == "" {
		return fmt.Sprintf("REVERSAL of #%s", original.ID)
	}
	return fmt.Sprintf("REVERSAL of #%s - %s", original.ID, base)
}
