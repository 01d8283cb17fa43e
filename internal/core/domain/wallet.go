package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletKind distinguishes the two wallet slots a user may hold.
type WalletKind string

const (
	WalletKindCash   WalletKind = "CASH"
	WalletKindOnline WalletKind = "ONLINE"
)

// IsValid reports whether the wallet kind is one of the defined values.
func (k WalletKind) IsValid() bool {
	return k == WalletKindCash || k == WalletKindOnline
}

// Wallet holds a single balance for a (user, kind) pair. At most one wallet
// per kind exists per user. The balance is exact decimal and is allowed to
// go negative: an overdrawn wallet records debt rather than being rejected.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Kind      WalletKind      `json:"kind"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
