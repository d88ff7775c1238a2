package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
)

type transactionRepository struct {
	run runner
}

var _ portsrepo.TransactionRepositoryFacade = transactionRepository{}

func (r transactionRepository) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	return r.run(func(st *state) error {
		if _, ok := st.accounts[txn.AccountID]; !ok {
			return fmt.Errorf("%w: account %d", apperrors.ErrNotFound, txn.AccountID)
		}
		st.seq.transaction++
		txn.ID = st.seq.transaction
		st.transactions[txn.ID] = *txn
		return nil
	})
}

func (r transactionRepository) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	var found domain.Transaction
	err := r.run(func(st *state) error {
		txn, ok := st.transactions[transactionID]
		if !ok {
			return fmt.Errorf("%w: transaction %d", apperrors.ErrNotFound, transactionID)
		}
		found = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r transactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID int64, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var matched []domain.Transaction
	err := r.run(func(st *state) error {
		for _, txn := range st.transactions {
			if txn.AccountID != accountID {
				continue
			}
			if filter.Type != nil && txn.Type != *filter.Type {
				continue
			}
			if !filter.Contains(txn.CreatedAt) {
				continue
			}
			matched = append(matched, txn)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paginate(matched, func(t domain.Transaction) cursorKey {
		return cursorKey{createdAt: t.CreatedAt, id: t.ID}
	}, true, limit, nextToken)
}

func (r transactionRepository) TotalsByAccountID(ctx context.Context, accountID int64) (domain.TransactionTotals, error) {
	var totals domain.TransactionTotals
	err := r.run(func(st *state) error {
		for _, txn := range st.transactions {
			if txn.AccountID == accountID {
				totals.Add(txn)
			}
		}
		return nil
	})
	return totals, err
}
