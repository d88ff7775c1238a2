package services

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/SscSPs/finex_ledger/internal/dto"
)

// AccountReaderSvc defines read operations over accounts and their audit trail.
type AccountReaderSvc interface {
	GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	GetTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// ListTransactions returns a page of the account's transactions, newest first.
	ListTransactions(ctx context.Context, accountID int64, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)

	// ListBalanceHistory returns a page of the account's journal, oldest first.
	ListBalanceHistory(ctx context.Context, accountID int64, params dto.ListBalanceHistoryParams) ([]domain.BalanceHistory, *string, error)
}

// AccountAdminSvc defines administrative operations on accounts.
type AccountAdminSvc interface {
	// UpdateAccountStatus moves the account along the status machine.
	UpdateAccountStatus(ctx context.Context, accountID int64, req dto.UpdateAccountStatusRequest) (*domain.Account, error)

	// ReconcileAccount rebuilds the balance from the transaction trail and
	// compares it with the stored balance and the latest journal entry.
	ReconcileAccount(ctx context.Context, accountID int64) (*domain.ReconciliationReport, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountAdminSvc
}
