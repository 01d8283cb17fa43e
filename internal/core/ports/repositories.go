package ports

import (
	"context"
	"time"

	"moneytracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic
// locking of the balance read-modify-write.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	ExistsByUserAndKind(ctx context.Context, userID uuid.UUID, kind domain.WalletKind) (bool, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
}

// PersonRepository defines persistence operations for persons.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Person, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EntryRepository defines persistence operations for ledger entries.
// Entries are append-only; the single permitted update is the set-once
// reversed_by back-link.
type EntryRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	// MarkReversed sets the reversed_by link on the original entry within a
	// transaction. It returns false when the entry was already reversed (the
	// guarded update touched no row).
	MarkReversed(ctx context.Context, tx pgx.Tx, originalID, reversalID uuid.UUID) (bool, error)
	Search(ctx context.Context, params EntrySearchParams) ([]domain.Entry, error)
	ExistsByPerson(ctx context.Context, personID uuid.UUID) (bool, error)
	SumByPersonAndKind(ctx context.Context, userID, personID uuid.UUID, kind domain.EntryKind) (decimal.Decimal, error)
}

// EntrySearchParams holds the log filters. Nil fields are unbounded, never
// null-matched. DateTo is an exclusive upper bound.
type EntrySearchParams struct {
	UserID     uuid.UUID
	Kind       *domain.EntryKind
	WalletKind *domain.WalletKind
	DateFrom   *time.Time
	DateTo     *time.Time
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
