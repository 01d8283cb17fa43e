package service

import (
	"context"
	"testing"

	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestWalletService_CreateWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewWalletService(walletRepo, newTestLogger())

	ctx := context.Background()
	userID := uuid.New()

	walletRepo.EXPECT().ExistsByUserAndKind(ctx, userID, domain.WalletKindCash).Return(false, nil)
	walletRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, w *domain.Wallet) error {
			assert.Equal(t, userID, w.UserID)
			assert.Equal(t, domain.WalletKindCash, w.Kind)
			assert.True(t, w.Balance.IsZero())
			return nil
		},
	)

	wallet, err := svc.CreateWallet(ctx, userID, domain.WalletKindCash)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.IsZero())
}

func TestWalletService_CreateWallet_DuplicateKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewWalletService(walletRepo, newTestLogger())

	ctx := context.Background()
	userID := uuid.New()

	walletRepo.EXPECT().ExistsByUserAndKind(ctx, userID, domain.WalletKindOnline).Return(true, nil)

	wallet, err := svc.CreateWallet(ctx, userID, domain.WalletKindOnline)
	assert.Nil(t, wallet)
	assertAppError(t, err, "RES_003")
}

func TestWalletService_CreateWallet_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewWalletService(walletRepo, newTestLogger())

	wallet, err := svc.CreateWallet(context.Background(), uuid.New(), domain.WalletKind("CRYPTO"))
	assert.Nil(t, wallet)
	assertAppError(t, err, "VAL_001")
}

func TestWalletService_ListWallets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewWalletService(walletRepo, newTestLogger())

	ctx := context.Background()
	userID := uuid.New()

	walletRepo.EXPECT().ListByUser(ctx, userID).Return([]domain.Wallet{
		{ID: uuid.New(), UserID: userID, Kind: domain.WalletKindCash},
		{ID: uuid.New(), UserID: userID, Kind: domain.WalletKindOnline},
	}, nil)

	wallets, err := svc.ListWallets(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, wallets, 2)
}
