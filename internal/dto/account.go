package dto

import (
	"time"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      int64                `json:"accountId"`
	OwnerID        int64                `json:"ownerId"`
	AccountNumber  string               `json:"accountNumber"`
	Balance        decimal.Decimal      `json:"balance" swaggertype:"string"`
	OpeningBalance decimal.Decimal      `json:"openingBalance" swaggertype:"string"`
	Currency       string               `json:"currency"`
	Type           domain.AccountType   `json:"type"`
	Status         domain.AccountStatus `json:"status"`
	Version        int64                `json:"version"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// UpdateAccountStatusRequest changes an account's administrative status.
type UpdateAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status" binding:"required,oneof=ACTIVE BLOCKED FROZEN CLOSED"`
}

// ListBalanceHistoryParams defines query parameters for the balance journal.
type ListBalanceHistoryParams struct {
	Limit     int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string    `form:"nextToken"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// BalanceHistoryResponse is one journal entry.
type BalanceHistoryResponse struct {
	BalanceHistoryID int64           `json:"balanceHistoryId"`
	AccountID        int64           `json:"accountId"`
	Balance          decimal.Decimal `json:"balance" swaggertype:"string"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ListBalanceHistoryResponse is one page of journal entries, oldest first.
type ListBalanceHistoryResponse struct {
	Entries   []BalanceHistoryResponse `json:"entries"`
	NextToken *string                  `json:"nextToken,omitempty"`
}

// ReconciliationResponse reports whether an account's audit trail adds up.
type ReconciliationResponse struct {
	AccountID            int64            `json:"accountId"`
	StoredBalance        decimal.Decimal  `json:"storedBalance" swaggertype:"string"`
	OpeningBalance       decimal.Decimal  `json:"openingBalance" swaggertype:"string"`
	TotalCredits         decimal.Decimal  `json:"totalCredits" swaggertype:"string"`
	TotalDebits          decimal.Decimal  `json:"totalDebits" swaggertype:"string"`
	ComputedBalance      decimal.Decimal  `json:"computedBalance" swaggertype:"string"`
	TransactionCount     int              `json:"transactionCount"`
	LatestHistoryBalance *decimal.Decimal `json:"latestHistoryBalance,omitempty" swaggertype:"string"`
	BalanceMatches       bool             `json:"balanceMatches"`
	HistoryMatches       bool             `json:"historyMatches"`
	Consistent           bool             `json:"consistent"`
	CheckedAt            time.Time        `json:"checkedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.ID,
		OwnerID:        acc.OwnerID,
		AccountNumber:  acc.AccountNumber,
		Balance:        acc.Balance,
		OpeningBalance: acc.OpeningBalance,
		Currency:       acc.Currency,
		Type:           acc.Type,
		Status:         acc.Status,
		Version:        acc.Version,
		CreatedAt:      acc.CreatedAt,
	}
}

func ToListBalanceHistoryResponse(entries []domain.BalanceHistory, nextToken *string) ListBalanceHistoryResponse {
	res := ListBalanceHistoryResponse{
		Entries:   make([]BalanceHistoryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i, e := range entries {
		res.Entries[i] = BalanceHistoryResponse{
			BalanceHistoryID: e.ID,
			AccountID:        e.AccountID,
			Balance:          e.Balance,
			CreatedAt:        e.CreatedAt,
		}
	}
	return res
}

func ToReconciliationResponse(r *domain.ReconciliationReport) ReconciliationResponse {
	return ReconciliationResponse{
		AccountID:            r.AccountID,
		StoredBalance:        r.StoredBalance,
		OpeningBalance:       r.OpeningBalance,
		TotalCredits:         r.TotalCredits,
		TotalDebits:          r.TotalDebits,
		ComputedBalance:      r.ComputedBalance,
		TransactionCount:     r.TransactionCount,
		LatestHistoryBalance: r.LatestHistoryBalance,
		BalanceMatches:       r.BalanceMatches,
		HistoryMatches:       r.HistoryMatches,
		Consistent:           r.IsConsistent(),
		CheckedAt:            r.CheckedAt,
	}
}
