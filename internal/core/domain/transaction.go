package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction and origin of a posting.
type TransactionType string

const (
	TransactionTypeIncome      TransactionType = "INCOME"
	TransactionTypeOutcome     TransactionType = "OUTCOME"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
)

// IsCredit reports whether the type increases the balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeIncome || t == TransactionTypeTransferIn
}

// IsDebit reports whether the type decreases the balance.
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeOutcome || t == TransactionTypeTransferOut
}

// IsValid reports whether t is one of the four posting kinds.
func (t TransactionType) IsValid() bool {
	return t.IsCredit() || t.IsDebit()
}

// ParseTransactionType converts a case-insensitive string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownTransactionType, s)
	}
	return t, nil
}

// Transaction is an immutable record of one posting against one account.
type Transaction struct {
	ID                int64           `json:"id"`
	AccountID         int64           `json:"accountId"`
	Type              TransactionType `json:"type"`
	Amount            decimal.Decimal `json:"amount"` // Always positive
	Currency          string          `json:"currency"`
	Message           string          `json:"message,omitempty"`
	FromAccountNumber string          `json:"fromAccountNumber,omitempty"`
	ToAccountNumber   string          `json:"toAccountNumber,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// SignedAmount returns the effect of the transaction on its account balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Type *TransactionType
	TimeRange
}

// TransactionTotals aggregates an account's transactions for reconciliation.
type TransactionTotals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
	Count   int
}

// Add folds a transaction into the totals.
func (t *TransactionTotals) Add(txn Transaction) {
	if txn.Type.IsCredit() {
		t.Credits = t.Credits.Add(txn.Amount)
	} else {
		t.Debits = t.Debits.Add(txn.Amount)
	}
	t.Count++
}
