package repositories

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// ListTransactionsByAccountID returns a page of the account's transactions,
	// newest first, and a token for the next page.
	ListTransactionsByAccountID(ctx context.Context, accountID int64, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// TotalsByAccountID sums credits and debits over every transaction of the account.
	TotalsByAccountID(ctx context.Context, accountID int64) (domain.TransactionTotals, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction appends an immutable transaction and assigns its ID.
	SaveTransaction(ctx context.Context, txn *domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
