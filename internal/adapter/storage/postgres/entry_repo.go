package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const entryColumns = `id, user_id, person_id, from_wallet_id, to_wallet_id, amount, kind,
	description, effective_date, created_at, is_reversal, reversed_by_id`

// EntryRepo implements ports.EntryRepository.
type EntryRepo struct {
	pool Pool
}

// NewEntryRepo creates a new EntryRepo.
func NewEntryRepo(pool Pool) *EntryRepo {
	return &EntryRepo{pool: pool}
}

// Create inserts a new ledger entry within a database transaction.
func (r *EntryRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.Entry) error {
	query := `INSERT INTO entries (id, user_id, person_id, from_wallet_id, to_wallet_id, amount, kind,
		description, effective_date, created_at, is_reversal, reversed_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.UserID, e.PersonID, e.FromWalletID, e.ToWalletID,
		e.Amount, e.Kind, e.Description, e.EffectiveDate, e.CreatedAt,
		e.IsReversal, e.ReversedByID,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// GetByID fetches an entry by UUID.
func (r *EntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE id = $1`, entryColumns)

	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

// MarkReversed sets the reversed_by link on an entry. The update is guarded
// so only the first reversal of an entry wins; a second attempt touches no
// row and returns false.
func (r *EntryRepo) MarkReversed(ctx context.Context, tx pgx.Tx, originalID, reversalID uuid.UUID) (bool, error) {
	query := `UPDATE entries SET reversed_by_id = $1 WHERE id = $2 AND reversed_by_id IS NULL`

	tag, err := tx.Exec(ctx, query, reversalID, originalID)
	if err != nil {
		return false, fmt.Errorf("mark entry reversed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Search fetches a user's entries with optional filters, newest first.
func (r *EntryRepo) Search(ctx context.Context, params ports.EntrySearchParams) ([]domain.Entry, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("e.user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("e.kind = $%d", argIdx))
		args = append(args, *params.Kind)
		argIdx++
	}
	if params.WalletKind != nil {
		// An entry matches when either referenced wallet has the kind.
		conditions = append(conditions, fmt.Sprintf(
			`(EXISTS(SELECT 1 FROM wallets w WHERE w.id = e.from_wallet_id AND w.kind = $%d)
			OR EXISTS(SELECT 1 FROM wallets w WHERE w.id = e.to_wallet_id AND w.kind = $%d))`,
			argIdx, argIdx))
		args = append(args, *params.WalletKind)
		argIdx++
	}
	if params.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("e.effective_date >= $%d", argIdx))
		args = append(args, *params.DateFrom)
		argIdx++
	}
	if params.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("e.effective_date < $%d", argIdx))
		args = append(args, *params.DateTo)
		argIdx++
	}

	query := fmt.Sprintf(`SELECT e.id, e.user_id, e.person_id, e.from_wallet_id, e.to_wallet_id,
		e.amount, e.kind, e.description, e.effective_date, e.created_at, e.is_reversal, e.reversed_by_id
		FROM entries e WHERE %s ORDER BY e.effective_date DESC, e.id DESC`,
		strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e := domain.Entry{}
		err := rows.Scan(
			&e.ID, &e.UserID, &e.PersonID, &e.FromWalletID, &e.ToWalletID,
			&e.Amount, &e.Kind, &e.Description, &e.EffectiveDate, &e.CreatedAt,
			&e.IsReversal, &e.ReversedByID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return entries, nil
}

// ExistsByPerson reports whether any entry references the person.
func (r *EntryRepo) ExistsByPerson(ctx context.Context, personID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM entries WHERE person_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, personID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check entries by person: %w", err)
	}
	return exists, nil
}

// SumByPersonAndKind totals the amounts of a person's entries of one kind.
func (r *EntryRepo) SumByPersonAndKind(ctx context.Context, userID, personID uuid.UUID, kind domain.EntryKind) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM entries
		WHERE user_id = $1 AND person_id = $2 AND kind = $3`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, userID, personID, kind).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum entries by person and kind: %w", err)
	}
	return sum, nil
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	e := &domain.Entry{}
	err := row.Scan(
		&e.ID, &e.UserID, &e.PersonID, &e.FromWalletID, &e.ToWalletID,
		&e.Amount, &e.Kind, &e.Description, &e.EffectiveDate, &e.CreatedAt,
		&e.IsReversal, &e.ReversedByID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return e, nil
}
