package repositories

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
)

// BalanceHistoryReader defines read operations for the balance journal
type BalanceHistoryReader interface {
	// ListBalanceHistory returns a page of journal entries, oldest first.
	ListBalanceHistory(ctx context.Context, accountID int64, window domain.TimeRange, limit int, nextToken *string) ([]domain.BalanceHistory, *string, error)

	// FindLatestBalanceHistory returns the most recent entry or apperrors.ErrNotFound.
	FindLatestBalanceHistory(ctx context.Context, accountID int64) (*domain.BalanceHistory, error)
}

// BalanceHistoryWriter appends to the balance journal
type BalanceHistoryWriter interface {
	AppendBalanceHistory(ctx context.Context, entry *domain.BalanceHistory) error
}

// BalanceHistoryRepositoryFacade combines all balance journal interfaces
type BalanceHistoryRepositoryFacade interface {
	BalanceHistoryReader
	BalanceHistoryWriter
}
