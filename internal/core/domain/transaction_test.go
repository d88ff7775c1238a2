package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionType_Direction(t *testing.T) {
	tests := []struct {
		txType     domain.TransactionType
		wantCredit bool
		wantDebit  bool
	}{
		{domain.TransactionTypeIncome, true, false},
		{domain.TransactionTypeTransferIn, true, false},
		{domain.TransactionTypeOutcome, false, true},
		{domain.TransactionTypeTransferOut, false, true},
		{domain.TransactionType("REFUND"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.wantCredit, tt.txType.IsCredit())
			assert.Equal(t, tt.wantDebit, tt.txType.IsDebit())
			assert.Equal(t, tt.wantCredit || tt.wantDebit, tt.txType.IsValid())
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	got, err := domain.ParseTransactionType(" transfer_out ")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeTransferOut, got)

	_, err = domain.ParseTransactionType("chargeback")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTransactionType)
}

func TestTransaction_SignedAmount(t *testing.T) {
	amount := decimal.RequireFromString("12.50")

	in := domain.Transaction{Type: domain.TransactionTypeIncome, Amount: amount}
	out := domain.Transaction{Type: domain.TransactionTypeTransferOut, Amount: amount}

	assert.True(t, in.SignedAmount().Equal(amount))
	assert.True(t, out.SignedAmount().Equal(amount.Neg()))
}

func TestTransactionTotals_Add(t *testing.T) {
	var totals domain.TransactionTotals
	totals.Add(domain.Transaction{Type: domain.TransactionTypeIncome, Amount: decimal.RequireFromString("100.00")})
	totals.Add(domain.Transaction{Type: domain.TransactionTypeTransferIn, Amount: decimal.RequireFromString("20.00")})
	totals.Add(domain.Transaction{Type: domain.TransactionTypeOutcome, Amount: decimal.RequireFromString("35.50")})

	assert.Equal(t, 3, totals.Count)
	assert.Equal(t, "120", totals.Credits.String())
	assert.Equal(t, "35.5", totals.Debits.String())
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{"positive two decimals", "10.25", false},
		{"trailing zeros beyond scale", "10.250", false},
		{"one cent", "0.01", false},
		{"zero", "0", true},
		{"negative", "-5.00", true},
		{"three decimals", "1.005", true},
		{"column maximum", "9999999999999999.99", false},
		{"above column maximum", "10000000000000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBalanceAndInterestRate(t *testing.T) {
	tests := []struct {
		name    string
		check   func(decimal.Decimal) error
		value   string
		wantErr bool
	}{
		{"zero balance", domain.ValidateBalance, "0", false},
		{"balance at maximum", domain.ValidateBalance, "9999999999999999.99", false},
		{"balance over maximum", domain.ValidateBalance, "10000000000000000.00", true},
		{"negative balance", domain.ValidateBalance, "-0.01", true},
		{"balance with three decimals", domain.ValidateBalance, "0.001", true},
		{"zero rate", domain.ValidateInterestRate, "0", false},
		{"rate at maximum", domain.ValidateInterestRate, "999.99", false},
		{"rate over maximum", domain.ValidateInterestRate, "1000", true},
		{"negative rate", domain.ValidateInterestRate, "-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(decimal.RequireFromString(tt.value))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCurrencyHelpers(t *testing.T) {
	assert.Equal(t, "HUF", domain.NormalizeCurrency(" huf "))
	assert.True(t, domain.SameCurrency("eur", "EUR"))
	assert.False(t, domain.SameCurrency("EUR", "HUF"))
}

func TestTimeRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	r := domain.TimeRange{From: &from, To: &to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to))
	assert.False(t, r.Contains(to.Add(time.Second)))
	assert.True(t, domain.TimeRange{}.Contains(time.Now()))
	assert.NoError(t, r.Validate())

	inverted := domain.TimeRange{From: &to, To: &from}
	assert.ErrorIs(t, inverted.Validate(), apperrors.ErrValidation)
}
