package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"
	"moneytracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// maxTxAttempts bounds the internal retries on store-level write conflicts
// before the failure is surfaced to the caller.
const maxTxAttempts = 3

// LedgerServiceImpl implements ports.LedgerService with pessimistic locking.
type LedgerServiceImpl struct {
	entryRepo  ports.EntryRepository
	walletRepo ports.WalletRepository
	personRepo ports.PersonRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	entryRepo ports.EntryRepository,
	walletRepo ports.WalletRepository,
	personRepo ports.PersonRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		entryRepo:  entryRepo,
		walletRepo: walletRepo,
		personRepo: personRepo,
		transactor: transactor,
		log:        log,
	}
}

// CreateEntry validates the request against its kind's structural rules,
// mutates the referenced wallet balances and appends the entry, all within
// one database transaction.
func (s *LedgerServiceImpl) CreateEntry(ctx context.Context, userID uuid.UUID, req ports.CreateEntryRequest) (*domain.Entry, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	spec, ok := domain.SpecFor(req.Kind)
	if !ok {
		return nil, apperror.ErrUnsupportedKind(string(req.Kind))
	}

	if msg := spec.CheckShape(req.Kind, req.PersonID != nil, req.FromWalletID != nil, req.ToWalletID != nil); msg != "" {
		return nil, apperror.ErrInvalidStructure(msg)
	}
	if req.Kind == domain.EntryKindTransfer && *req.FromWalletID == *req.ToWalletID {
		return nil, apperror.ErrInvalidStructure("fromWalletId and toWalletId must be different for TRANSFER")
	}

	if req.PersonID != nil {
		if _, err := s.findOwnedPerson(ctx, *req.PersonID, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	effectiveDate := now
	if req.EffectiveDate != nil {
		effectiveDate = req.EffectiveDate.UTC()
	}

	entry := &domain.Entry{
		ID:            uuid.New(),
		UserID:        userID,
		PersonID:      req.PersonID,
		FromWalletID:  req.FromWalletID,
		ToWalletID:    req.ToWalletID,
		Amount:        req.Amount,
		Kind:          req.Kind,
		Description:   req.Description,
		EffectiveDate: effectiveDate,
		CreatedAt:     now,
	}

	err := s.withRetry(ctx, func(tx pgx.Tx) error {
		from, to, err := s.lockWallets(ctx, tx, userID, req.FromWalletID, req.ToWalletID)
		if err != nil {
			return err
		}
		return s.applyAndAppend(ctx, tx, entry, from, to)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("kind", string(entry.Kind)).
		Str("user_id", userID.String()).
		Str("amount", entry.Amount.String()).
		Msg("ledger entry created")

	return entry, nil
}

// ReverseEntry creates a new entry undoing the balance effect of an existing
// one and links the two. The reversal entry and the set-once back-link are
// committed atomically.
func (s *LedgerServiceImpl) ReverseEntry(ctx context.Context, userID, entryID uuid.UUID) (*domain.Entry, error) {
	original, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find entry: %w", err))
	}
	if original == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if original.UserID != userID {
		return nil, apperror.ErrForbidden("transaction")
	}
	if original.IsReversal {
		return nil, apperror.ErrAlreadyReversal()
	}
	if original.IsReversed() {
		return nil, apperror.ErrAlreadyReversed()
	}

	spec, ok := domain.SpecFor(original.Kind)
	if !ok {
		return nil, apperror.InternalError(fmt.Errorf("entry %s has unknown kind %s", original.ID, original.Kind))
	}

	now := time.Now().UTC()
	description := domain.ReversalDescription(original)

	// Wallet references mirror the original with the roles swapped: money
	// flows back the way it came. For single-wallet kinds one side is nil,
	// which leaves the swapped slot nil as well.
	reversal := &domain.Entry{
		ID:            uuid.New(),
		UserID:        userID,
		PersonID:      original.PersonID,
		FromWalletID:  original.ToWalletID,
		ToWalletID:    original.FromWalletID,
		Amount:        original.Amount,
		Kind:          spec.Inverse,
		Description:   &description,
		EffectiveDate: now,
		CreatedAt:     now,
		IsReversal:    true,
	}

	err = s.withRetry(ctx, func(tx pgx.Tx) error {
		from, to, err := s.lockWallets(ctx, tx, userID, reversal.FromWalletID, reversal.ToWalletID)
		if err != nil {
			return err
		}
		if err := s.applyAndAppend(ctx, tx, reversal, from, to); err != nil {
			return err
		}

		linked, err := s.entryRepo.MarkReversed(ctx, tx, original.ID, reversal.ID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("link reversal: %w", err))
		}
		if !linked {
			// A concurrent reversal won the race; abort ours.
			return apperror.ErrAlreadyReversed()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("entry_id", original.ID.String()).
		Str("reversal_id", reversal.ID.String()).
		Str("user_id", userID.String()).
		Msg("ledger entry reversed")

	return reversal, nil
}

// applyAndAppend debits the from-wallet, credits the to-wallet and inserts
// the entry. Wallets not referenced by the entry are nil and untouched.
func (s *LedgerServiceImpl) applyAndAppend(ctx context.Context, tx pgx.Tx, entry *domain.Entry, from, to *domain.Wallet) error {
	if from != nil {
		if err := s.walletRepo.UpdateBalance(ctx, tx, from.ID, from.Balance.Sub(entry.Amount)); err != nil {
			return apperror.InternalError(fmt.Errorf("debit wallet: %w", err))
		}
	}
	if to != nil {
		if err := s.walletRepo.UpdateBalance(ctx, tx, to.ID, to.Balance.Add(entry.Amount)); err != nil {
			return apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
		}
	}
	if err := s.entryRepo.Create(ctx, tx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("append entry: %w", err))
	}
	return nil
}

// lockWallets resolves and row-locks the referenced wallets, verifying
// ownership. Wallets are locked in ascending id order so two contending
// transfers over the same pair cannot deadlock.
func (s *LedgerServiceImpl) lockWallets(ctx context.Context, tx pgx.Tx, userID uuid.UUID, fromID, toID *uuid.UUID) (from, to *domain.Wallet, err error) {
	ids := make([]uuid.UUID, 0, 2)
	if fromID != nil {
		ids = append(ids, *fromID)
	}
	if toID != nil {
		ids = append(ids, *toID)
	}
	if len(ids) == 2 && strings.Compare(ids[0].String(), ids[1].String()) > 0 {
		ids[0], ids[1] = ids[1], ids[0]
	}

	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range ids {
		w, err := s.walletRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, nil, apperror.ErrNotFound("wallet")
		}
		if w.UserID != userID {
			return nil, nil, apperror.ErrForbidden("wallet")
		}
		locked[id] = w
	}

	if fromID != nil {
		from = locked[*fromID]
	}
	if toID != nil {
		to = locked[*toID]
	}
	return from, to, nil
}

// findOwnedPerson resolves a person reference, distinguishing a missing
// person from one owned by another user.
func (s *LedgerServiceImpl) findOwnedPerson(ctx context.Context, personID, userID uuid.UUID) (*domain.Person, error) {
	person, err := s.personRepo.GetByID(ctx, personID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find person: %w", err))
	}
	if person == nil {
		return nil, apperror.ErrNotFound("person")
	}
	if person.UserID != userID {
		return nil, apperror.ErrForbidden("person")
	}
	return person, nil
}

// withRetry runs fn inside a database transaction, retrying a bounded number
// of times on serialization failures, deadlocks and lock timeouts. Validation
// failures inside fn abort immediately and roll back.
func (s *LedgerServiceImpl) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		tx, err := s.transactor.Begin(ctx)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback(ctx)
			if isRetryableTxErr(err) {
				lastErr = err
				s.log.Warn().Err(err).Int("attempt", attempt).Msg("ledger tx conflict, retrying")
				continue
			}
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			if isRetryableTxErr(err) {
				lastErr = err
				s.log.Warn().Err(err).Int("attempt", attempt).Msg("ledger commit conflict, retrying")
				continue
			}
			return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		return nil
	}

	if isLockTimeout(lastErr) {
		return apperror.ErrLockTimeout(lastErr)
	}
	return apperror.ErrConflict("concurrent ledger update, please retry")
}

// Retryable SQLSTATEs: serialization_failure, deadlock_detected,
// lock_not_available.
func isRetryableTxErr(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}
