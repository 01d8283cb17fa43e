package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Auth ---

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

// --- Wallets ---

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	Kind string `json:"kind" binding:"required,oneof=CASH ONLINE"`
}

// WalletResponse is the API representation of a wallet.
type WalletResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt string          `json:"created_at"`
}

// BalanceSummaryResponse aggregates wallet balances per kind.
type BalanceSummaryResponse struct {
	Cash   decimal.Decimal `json:"cash"`
	Online decimal.Decimal `json:"online"`
	Total  decimal.Decimal `json:"total"`
}

// --- People ---

// CreatePersonRequest is the request body for person creation.
type CreatePersonRequest struct {
	Name  string  `json:"name" binding:"required,max=100"`
	Phone *string `json:"phone,omitempty" binding:"omitempty,phone_number,max=20"`
	Notes *string `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// PersonResponse is a person together with their aggregated debt position.
type PersonResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Phone         *string         `json:"phone,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalGiven    decimal.Decimal `json:"total_given"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
}

// --- Transactions ---

// CreateTransactionRequest is the request body for ledger entry creation.
// Which reference fields are required depends on the kind; the service
// enforces the per-kind shape rules.
type CreateTransactionRequest struct {
	Kind          string          `json:"kind" binding:"required,oneof=RECEIVED GIVEN EXPENSE INCOME TRANSFER"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PersonID      *uuid.UUID      `json:"person_id,omitempty"`
	FromWalletID  *uuid.UUID      `json:"from_wallet_id,omitempty"`
	ToWalletID    *uuid.UUID      `json:"to_wallet_id,omitempty"`
	Description   *string         `json:"description,omitempty" binding:"omitempty,max=255"`
	EffectiveDate *time.Time      `json:"effective_date,omitempty"`
}

// TransactionResponse is the API representation of a ledger entry.
type TransactionResponse struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	PersonID      *string         `json:"person_id,omitempty"`
	FromWalletID  *string         `json:"from_wallet_id,omitempty"`
	ToWalletID    *string         `json:"to_wallet_id,omitempty"`
	Description   *string         `json:"description,omitempty"`
	EffectiveDate string          `json:"effective_date"`
	CreatedAt     string          `json:"created_at"`
	IsReversal    bool            `json:"is_reversal"`
	ReversedByID  *string         `json:"reversed_by_id,omitempty"`
}
