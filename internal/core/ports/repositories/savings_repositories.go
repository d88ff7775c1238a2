package repositories

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
)

// SavingsReader defines read operations for savings accounts
type SavingsReader interface {
	FindSavingsAccountByID(ctx context.Context, savingsID int64) (*domain.SavingsAccount, error)

	// ListSavingsAccountsByOwner returns a page of the owner's savings accounts,
	// oldest first, and a token for the next page.
	ListSavingsAccountsByOwner(ctx context.Context, ownerID int64, filter domain.SavingsFilter, limit int, nextToken *string) ([]domain.SavingsAccount, *string, error)

	ExistsSavingsAccountByOwnerAndName(ctx context.Context, ownerID int64, name string) (bool, error)
}

// SavingsWriter defines write operations for savings accounts
type SavingsWriter interface {
	// CreateSavingsAccount assigns ID and version. A name clash for the same
	// owner yields apperrors.ErrDuplicateName.
	CreateSavingsAccount(ctx context.Context, savings *domain.SavingsAccount) error

	// UpdateSavingsAccount saves name, balance, rate and status with the same
	// version semantics as AccountWriter.UpdateAccount.
	UpdateSavingsAccount(ctx context.Context, savings *domain.SavingsAccount) error
}

// SavingsTransactionSupport defines locking reads for savings accounts
type SavingsTransactionSupport interface {
	FindSavingsAccountByIDForUpdate(ctx context.Context, savingsID int64) (*domain.SavingsAccount, error)
}

// SavingsRepositoryFacade combines all savings-related repository interfaces
type SavingsRepositoryFacade interface {
	SavingsReader
	SavingsWriter
	SavingsTransactionSupport
}
