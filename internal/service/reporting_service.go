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

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	entryRepo  ports.EntryRepository
	walletRepo ports.WalletRepository
	log        zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(entryRepo ports.EntryRepository, walletRepo ports.WalletRepository, log zerolog.Logger) *ReportingServiceImpl {
	return &ReportingServiceImpl{entryRepo: entryRepo, walletRepo: walletRepo, log: log}
}

// ListEntries returns the user's ledger entries, newest first. The To bound
// is a calendar date taken inclusively: it is widened to the start of the
// next day and applied as an exclusive upper bound.
func (s *ReportingServiceImpl) ListEntries(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) ([]domain.Entry, error) {
	if filter.Kind != nil {
		if _, ok := domain.SpecFor(*filter.Kind); !ok {
			return nil, apperror.ErrUnsupportedKind(string(*filter.Kind))
		}
	}
	if filter.WalletKind != nil && !filter.WalletKind.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown wallet kind: %s", *filter.WalletKind))
	}

	params := ports.EntrySearchParams{
		UserID:     userID,
		Kind:       filter.Kind,
		WalletKind: filter.WalletKind,
		DateFrom:   filter.From,
	}
	if filter.To != nil {
		end := startOfDay(*filter.To).AddDate(0, 0, 1)
		params.DateTo = &end
	}

	entries, err := s.entryRepo.Search(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("search entries: %w", err))
	}
	return entries, nil
}

// BalanceSummary sums the current wallet balances grouped by kind. Missing
// wallets contribute zero.
func (s *ReportingServiceImpl) BalanceSummary(ctx context.Context, userID uuid.UUID) (*ports.BalanceSummary, error) {
	wallets, err := s.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	summary := &ports.BalanceSummary{
		Cash:   decimal.Zero,
		Online: decimal.Zero,
		Total:  decimal.Zero,
	}
	for _, w := range wallets {
		switch w.Kind {
		case domain.WalletKindCash:
			summary.Cash = summary.Cash.Add(w.Balance)
		case domain.WalletKindOnline:
			summary.Online = summary.Online.Add(w.Balance)
		}
		summary.Total = summary.Total.Add(w.Balance)
	}
	return summary, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
