package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType describes what an account is used for.
type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCredit  AccountType = "CREDIT"
)

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusBlocked AccountStatus = "BLOCKED"
	AccountStatusFrozen  AccountStatus = "FROZEN"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

// IsValid reports whether s is one of the known statuses.
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusBlocked, AccountStatusFrozen, AccountStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether an account may move from s to next.
// CLOSED is terminal; suspended accounts may be reactivated or closed.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	switch s {
	case AccountStatusActive:
		return next == AccountStatusBlocked || next == AccountStatusFrozen || next == AccountStatusClosed
	case AccountStatusBlocked, AccountStatusFrozen:
		return next == AccountStatusActive || next == AccountStatusClosed
	}
	return false
}

// Account is a money-holding account. Balance only changes through postings.
type Account struct {
	ID             int64           `json:"id"`
	OwnerID        int64           `json:"ownerId"`
	AccountNumber  string          `json:"accountNumber"`  // Unique, immutable
	Balance        decimal.Decimal `json:"balance"`        // Never negative
	OpeningBalance decimal.Decimal `json:"openingBalance"` // Seed balance at provisioning
	Currency       string          `json:"currency"`       // ISO 4217, stored upper case
	Type           AccountType     `json:"type"`
	Status         AccountStatus   `json:"status"`
	Version        int64           `json:"version"` // Optimistic concurrency counter
	CreatedAt      time.Time       `json:"createdAt"`
}

// IsActive reports whether the account accepts postings.
func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
