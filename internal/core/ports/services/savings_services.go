package services

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/SscSPs/finex_ledger/internal/dto"
)

// SavingsReaderSvc defines read operations for savings accounts owned by userID.
type SavingsReaderSvc interface {
	GetSavingsAccount(ctx context.Context, userID, savingsID int64) (*domain.SavingsAccount, error)
	// ListSavingsAccounts returns a page of the user's savings accounts, oldest first.
	ListSavingsAccounts(ctx context.Context, userID int64, params dto.ListSavingsParams) ([]domain.SavingsAccount, *string, error)
}

// SavingsWriterSvc defines lifecycle operations for savings accounts.
type SavingsWriterSvc interface {
	// OpenSavingsAccount creates a savings account funded from the user's
	// oldest ACTIVE CURRENT account.
	OpenSavingsAccount(ctx context.Context, userID int64, req dto.OpenSavingsRequest) (*domain.SavingsAccount, error)

	UpdateSavingsAccount(ctx context.Context, userID, savingsID int64, req dto.UpdateSavingsRequest) (*domain.SavingsAccount, error)

	// CloseSavingsAccount sets the status to CLOSED. The balance must be zero.
	CloseSavingsAccount(ctx context.Context, userID, savingsID int64) (*domain.SavingsAccount, error)
}

// SavingsMovementSvc moves money between savings and current accounts.
type SavingsMovementSvc interface {
	DepositFromCurrent(ctx context.Context, userID, savingsID int64, req dto.SavingsMovementRequest) (*domain.SavingsMovementResult, error)
	WithdrawToCurrent(ctx context.Context, userID, savingsID int64, req dto.SavingsMovementRequest) (*domain.SavingsMovementResult, error)
}

// SavingsSvcFacade combines all savings-related service interfaces
type SavingsSvcFacade interface {
	SavingsReaderSvc
	SavingsWriterSvc
	SavingsMovementSvc
}
