package service

import (
	"context"
	"fmt"
	"time"

	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"
	"moneytracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(walletRepo ports.WalletRepository, log zerolog.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{walletRepo: walletRepo, log: log}
}

// CreateWallet opens an empty wallet of the given kind. A user holds at most
// one wallet per kind; the database unique constraint backs the check.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID, kind domain.WalletKind) (*domain.Wallet, error) {
	if !kind.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown wallet kind: %s", kind))
	}

	exists, err := s.walletRepo.ExistsByUserAndKind(ctx, userID, kind)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check wallet kind: %w", err))
	}
	if exists {
		return nil, apperror.ErrConflict(fmt.Sprintf("wallet of kind %s already exists", kind))
	}

	wallet := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("kind", string(kind)).
		Str("user_id", userID.String()).
		Msg("wallet created")

	return wallet, nil
}

// ListWallets returns all wallets owned by the user.
func (s *WalletServiceImpl) ListWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}
