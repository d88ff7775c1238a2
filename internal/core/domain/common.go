package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for monetary amounts.
const MoneyScale = 2

var (
	// MaxMoney is the largest amount or balance a NUMERIC(18,2) column holds.
	MaxMoney = decimal.RequireFromString("9999999999999999.99")
	// MaxInterestRate is the largest rate a NUMERIC(5,2) column holds.
	MaxInterestRate = decimal.RequireFromString("999.99")
)

// TimeRange is an optional [From, To] window on creation time.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether ts falls inside the range. Nil bounds are open.
func (r TimeRange) Contains(ts time.Time) bool {
	if r.From != nil && ts.Before(*r.From) {
		return false
	}
	if r.To != nil && ts.After(*r.To) {
		return false
	}
	return true
}

// Validate rejects ranges whose lower bound is after the upper bound.
func (r TimeRange) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return fmt.Errorf("%w: 'from' must not be after 'to'", apperrors.ErrValidation)
	}
	return nil
}

// ValidateAmount checks that a posting amount is positive with at most two decimals.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", apperrors.ErrValidation, MoneyScale)
	}
	if amount.GreaterThan(MaxMoney) {
		return fmt.Errorf("%w: amount must not exceed %s", apperrors.ErrValidation, MaxMoney)
	}
	return nil
}

// ValidateBalance checks a stored balance: non-negative, two decimals, within MaxMoney.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.IsNegative() || !balance.Equal(balance.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: balance must be non-negative with at most %d decimal places", apperrors.ErrValidation, MoneyScale)
	}
	if balance.GreaterThan(MaxMoney) {
		return fmt.Errorf("%w: balance would exceed %s", apperrors.ErrValidation, MaxMoney)
	}
	return nil
}

// ValidateInterestRate checks a savings rate: non-negative, two decimals, within MaxInterestRate.
func ValidateInterestRate(rate decimal.Decimal) error {
	if rate.IsNegative() || !rate.Equal(rate.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: interest rate must be non-negative with at most %d decimal places", apperrors.ErrValidation, MoneyScale)
	}
	if rate.GreaterThan(MaxInterestRate) {
		return fmt.Errorf("%w: interest rate must not exceed %s", apperrors.ErrValidation, MaxInterestRate)
	}
	return nil
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SameCurrency compares currency codes case-insensitively.
func SameCurrency(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
