package dto

import (
	"time"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenSavingsRequest opens a savings account funded from the caller's current account.
type OpenSavingsRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	InitialBalance decimal.Decimal `json:"initialBalance" binding:"nonnegative_decimal" swaggertype:"string" example:"1000.00"`
	Currency       string          `json:"currency" binding:"required,currency" example:"HUF"`
	InterestRate   decimal.Decimal `json:"interestRate" binding:"nonnegative_decimal" swaggertype:"string" example:"3.50"`
}

// SavingsMovementRequest moves money between a savings account and a current account.
type SavingsMovementRequest struct {
	CurrentAccountID int64           `json:"currentAccountId" binding:"required,gt=0"`
	Amount           decimal.Decimal `json:"amount" binding:"positive_decimal" swaggertype:"string" example:"250.00"`
	Message          string          `json:"message" binding:"max=255"`
}

// UpdateSavingsRequest changes savings account details.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateSavingsRequest struct {
	Name         *string               `json:"name" binding:"omitempty,min=1,max=100"`
	InterestRate *decimal.Decimal      `json:"interestRate" binding:"omitempty,nonnegative_decimal" swaggertype:"string"`
	Status       *domain.SavingsStatus `json:"status" binding:"omitempty,oneof=ACTIVE FROZEN CLOSED"`
}

// ListSavingsParams defines query parameters for listing savings accounts.
// MinBalance is an inclusive decimal lower bound.
type ListSavingsParams struct {
	Limit      int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken  *string `form:"nextToken"`
	Status     *string `form:"status"`
	MinBalance *string `form:"minBalance"`
}

// ListSavingsAccountsResponse is one page of savings accounts, oldest first.
type ListSavingsAccountsResponse struct {
	SavingsAccounts []SavingsAccountResponse `json:"savingsAccounts"`
	NextToken       *string                  `json:"nextToken,omitempty"`
}

// SavingsAccountResponse defines the data returned for a savings account.
type SavingsAccountResponse struct {
	SavingsAccountID int64                `json:"savingsAccountId"`
	OwnerID          int64                `json:"ownerId"`
	Name             string               `json:"name"`
	Balance          decimal.Decimal      `json:"balance" swaggertype:"string"`
	Currency         string               `json:"currency"`
	InterestRate     decimal.Decimal      `json:"interestRate" swaggertype:"string"`
	Status           domain.SavingsStatus `json:"status"`
	Version          int64                `json:"version"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// SavingsMovementResponse is returned after a deposit or withdrawal.
type SavingsMovementResponse struct {
	SavingsAccountID  int64               `json:"savingsAccountId"`
	CurrentAccountID  int64               `json:"currentAccountId"`
	SavingsNewBalance decimal.Decimal     `json:"savingsNewBalance" swaggertype:"string"`
	CurrentNewBalance decimal.Decimal     `json:"currentNewBalance" swaggertype:"string"`
	Transaction       TransactionResponse `json:"transaction"`
	Message           string              `json:"message"`
	CreatedAt         time.Time           `json:"createdAt"`
}

func ToSavingsAccountResponse(s *domain.SavingsAccount) SavingsAccountResponse {
	return SavingsAccountResponse{
		SavingsAccountID: s.ID,
		OwnerID:          s.OwnerID,
		Name:             s.Name,
		Balance:          s.Balance,
		Currency:         s.Currency,
		InterestRate:     s.InterestRate,
		Status:           s.Status,
		Version:          s.Version,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func ToListSavingsAccountsResponse(accounts []domain.SavingsAccount, nextToken *string) ListSavingsAccountsResponse {
	res := ListSavingsAccountsResponse{
		SavingsAccounts: make([]SavingsAccountResponse, len(accounts)),
		NextToken:       nextToken,
	}
	for i := range accounts {
		res.SavingsAccounts[i] = ToSavingsAccountResponse(&accounts[i])
	}
	return res
}

func ToSavingsMovementResponse(r *domain.SavingsMovementResult) SavingsMovementResponse {
	return SavingsMovementResponse{
		SavingsAccountID:  r.SavingsAccountID,
		CurrentAccountID:  r.AccountID,
		SavingsNewBalance: r.SavingsNewBalance,
		CurrentNewBalance: r.AccountNewBalance,
		Transaction:       ToTransactionResponse(r.Transaction),
		Message:           r.Message,
		CreatedAt:         r.CreatedAt,
	}
}
