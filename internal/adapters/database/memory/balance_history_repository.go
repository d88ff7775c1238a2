package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
)

type balanceHistoryRepository struct {
	run runner
}

var _ portsrepo.BalanceHistoryRepositoryFacade = balanceHistoryRepository{}

func (r balanceHistoryRepository) AppendBalanceHistory(ctx context.Context, entry *domain.BalanceHistory) error {
	return r.run(func(st *state) error {
		if _, ok := st.accounts[entry.AccountID]; !ok {
			return fmt.Errorf("%w: account %d", apperrors.ErrNotFound, entry.AccountID)
		}
		st.seq.history++
		entry.ID = st.seq.history
		st.history[entry.ID] = *entry
		return nil
	})
}

func (r balanceHistoryRepository) ListBalanceHistory(ctx context.Context, accountID int64, window domain.TimeRange, limit int, nextToken *string) ([]domain.BalanceHistory, *string, error) {
	var matched []domain.BalanceHistory
	err := r.run(func(st *state) error {
		for _, entry := range st.history {
			if entry.AccountID == accountID && window.Contains(entry.CreatedAt) {
				matched = append(matched, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paginate(matched, func(h domain.BalanceHistory) cursorKey {
		return cursorKey{createdAt: h.CreatedAt, id: h.ID}
	}, false, limit, nextToken)
}

func (r balanceHistoryRepository) FindLatestBalanceHistory(ctx context.Context, accountID int64) (*domain.BalanceHistory, error) {
	var latest *domain.BalanceHistory
	err := r.run(func(st *state) error {
		for _, entry := range st.history {
			if entry.AccountID != accountID {
				continue
			}
			if latest == nil || compareKeys(cursorKey{entry.CreatedAt, entry.ID}, cursorKey{latest.CreatedAt, latest.ID}) > 0 {
				candidate := entry
				latest = &candidate
			}
		}
		if latest == nil {
			return fmt.Errorf("%w: no balance history for account %d", apperrors.ErrNotFound, accountID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}
