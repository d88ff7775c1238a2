package repositories

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// FindCurrentAccountByOwner returns the owner's oldest ACTIVE CURRENT
	// account, or the oldest CURRENT account of any status when none is active.
	FindCurrentAccountByOwner(ctx context.Context, ownerID int64) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// CreateAccount persists a new account and assigns its ID and initial version.
	CreateAccount(ctx context.Context, account *domain.Account) error

	// UpdateAccount saves balance and status if the stored version still equals
	// account.Version, then increments account.Version. A stale version yields
	// apperrors.ErrConcurrentUpdate.
	UpdateAccount(ctx context.Context, account *domain.Account) error
}

// AccountTransactionSupport defines operations that support account transactions
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them in ascending ID
	// order for the rest of the unit of work. Missing IDs are absent from the map.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
