package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingResult is the outcome of a single posting.
type PostingResult struct {
	Transaction Transaction
	NewBalance  decimal.Decimal
}

// TransferResult is the outcome of a two-leg transfer.
type TransferResult struct {
	FromAccountID  int64
	ToAccountID    int64
	FromNewBalance decimal.Decimal
	ToNewBalance   decimal.Decimal
	OutTransaction Transaction
	InTransaction  Transaction
	CategoryIDs    []int64
	// CategoryLinkError is set when the transfer committed but the category
	// link requests could not be recorded.
	CategoryLinkError error
}

// SavingsMovementResult is the outcome of a current<->savings movement.
type SavingsMovementResult struct {
	SavingsAccountID  int64
	AccountID         int64
	SavingsNewBalance decimal.Decimal
	AccountNewBalance decimal.Decimal
	Transaction       Transaction
	Message           string
	CreatedAt         time.Time
}

// ReconciliationReport compares an account's stored balance with the balance
// rebuilt from its audit trail.
type ReconciliationReport struct {
	AccountID            int64
	StoredBalance        decimal.Decimal
	OpeningBalance       decimal.Decimal
	TotalCredits         decimal.Decimal
	TotalDebits          decimal.Decimal
	ComputedBalance      decimal.Decimal
	TransactionCount     int
	LatestHistoryBalance *decimal.Decimal
	BalanceMatches       bool
	HistoryMatches       bool
	CheckedAt            time.Time
}

// IsConsistent reports whether both checks passed.
func (r ReconciliationReport) IsConsistent() bool {
	return r.BalanceMatches && r.HistoryMatches
}

// NewReconciliationReport rebuilds the balance from totals and compares it
// with the stored balance and the latest journal entry. An account with no
// journal entries matches when its balance still equals the opening balance.
func NewReconciliationReport(account Account, totals TransactionTotals, latest *BalanceHistory, now time.Time) ReconciliationReport {
	computed := account.OpeningBalance.Add(totals.Credits).Sub(totals.Debits)
	report := ReconciliationReport{
		AccountID:        account.ID,
		StoredBalance:    account.Balance,
		OpeningBalance:   account.OpeningBalance,
		TotalCredits:     totals.Credits,
		TotalDebits:      totals.Debits,
		ComputedBalance:  computed,
		TransactionCount: totals.Count,
		BalanceMatches:   computed.Equal(account.Balance),
		CheckedAt:        now,
	}
	if latest != nil {
		balance := latest.Balance
		report.LatestHistoryBalance = &balance
		report.HistoryMatches = balance.Equal(account.Balance)
	} else {
		report.HistoryMatches = account.Balance.Equal(account.OpeningBalance)
	}
	return report
}
