package ports

import (
	"context"
	"time"

	"moneytracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// --- Service Ports (Business Logic) ---

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// AuthResult holds the outcome of a successful register or login.
type AuthResult struct {
	UserID uuid.UUID
	Email  string
	Token  string
	Expiry time.Time
}

// LedgerService is the transaction and reversal engine: it validates a
// requested entry against its kind's structural rules, mutates wallet
// balances and appends the entry as one atomic unit.
type LedgerService interface {
	CreateEntry(ctx context.Context, userID uuid.UUID, req CreateEntryRequest) (*domain.Entry, error)
	ReverseEntry(ctx context.Context, userID, entryID uuid.UUID) (*domain.Entry, error)
}

// CreateEntryRequest holds validated input for entry creation.
type CreateEntryRequest struct {
	Kind          domain.EntryKind
	Amount        decimal.Decimal
	PersonID      *uuid.UUID
	FromWalletID  *uuid.UUID
	ToWalletID    *uuid.UUID
	Description   *string
	EffectiveDate *time.Time // nil = now
}

// WalletService defines wallet management business logic.
type WalletService interface {
	CreateWallet(ctx context.Context, userID uuid.UUID, kind domain.WalletKind) (*domain.Wallet, error)
	ListWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
}

// PersonService defines counterparty management business logic. Person reads
// always carry the debt summary.
type PersonService interface {
	CreatePerson(ctx context.Context, userID uuid.UUID, req CreatePersonRequest) (*PersonSummary, error)
	ListPeople(ctx context.Context, userID uuid.UUID) ([]PersonSummary, error)
	GetPerson(ctx context.Context, userID, personID uuid.UUID) (*PersonSummary, error)
	DeletePerson(ctx context.Context, userID, personID uuid.UUID) error
}

// CreatePersonRequest holds validated input for person creation.
type CreatePersonRequest struct {
	Name  string
	Phone *string
	Notes *string
}

// PersonSummary is a person together with their aggregated debt position.
// NetBalance = TotalReceived - TotalGiven; reversal entries are ordinary
// entries of the opposite kind, so a reversed movement nets out by itself.
type PersonSummary struct {
	Person        domain.Person
	TotalReceived decimal.Decimal
	TotalGiven    decimal.Decimal
	NetBalance    decimal.Decimal
	Status        domain.PersonStatus
}

// ReportingService defines the read-only query side of the ledger.
type ReportingService interface {
	ListEntries(ctx context.Context, userID uuid.UUID, filter EntryFilter) ([]domain.Entry, error)
	BalanceSummary(ctx context.Context, userID uuid.UUID) (*BalanceSummary, error)
}

// EntryFilter holds the caller-facing log filters. From/To are calendar
// dates; To is inclusive and widened to an exclusive end-of-day bound.
type EntryFilter struct {
	Kind       *domain.EntryKind
	WalletKind *domain.WalletKind
	From       *time.Time
	To         *time.Time
}

// BalanceSummary is the sum of current wallet balances grouped by kind.
type BalanceSummary struct {
	Cash   decimal.Decimal
	Online decimal.Decimal
	Total  decimal.Decimal
}

// AuditService records audited actions (fire-and-forget).
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
