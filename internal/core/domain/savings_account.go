package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsStatus is the lifecycle status of a savings account.
type SavingsStatus string

const (
	SavingsStatusActive SavingsStatus = "ACTIVE"
	SavingsStatusFrozen SavingsStatus = "FROZEN"
	SavingsStatusClosed SavingsStatus = "CLOSED"
)

func (s SavingsStatus) IsValid() bool {
	return s == SavingsStatusActive || s == SavingsStatusFrozen || s == SavingsStatusClosed
}

// CanTransitionTo reports whether a savings account may move from s to next.
func (s SavingsStatus) CanTransitionTo(next SavingsStatus) bool {
	switch s {
	case SavingsStatusActive:
		return next == SavingsStatusFrozen || next == SavingsStatusClosed
	case SavingsStatusFrozen:
		return next == SavingsStatusActive || next == SavingsStatusClosed
	}
	return false
}

// SavingsAccount is a named savings pot funded from the owner's current account.
type SavingsAccount struct {
	ID           int64           `json:"id"`
	OwnerID      int64           `json:"ownerId"`
	Name         string          `json:"name"` // Unique per owner
	Balance      decimal.Decimal `json:"balance"`
	Currency     string          `json:"currency"`
	InterestRate decimal.Decimal `json:"interestRate"` // Informational only
	Status       SavingsStatus   `json:"status"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (s SavingsAccount) IsActive() bool {
	return s.Status == SavingsStatusActive
}

// SavingsFilter narrows savings listings. MinBalance is inclusive.
type SavingsFilter struct {
	Status     *SavingsStatus
	MinBalance *decimal.Decimal
}

// Matches reports whether s passes every set criterion.
func (f SavingsFilter) Matches(s SavingsAccount) bool {
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	if f.MinBalance != nil && s.Balance.LessThan(*f.MinBalance) {
		return false
	}
	return true
}
