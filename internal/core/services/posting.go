package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// postingInput is one amount to apply to one account.
type postingInput struct {
	amount            decimal.Decimal
	txnType           domain.TransactionType
	currency          string
	message           string
	fromAccountNumber string
	toAccountNumber   string
}

// postingEngine applies postings to accounts already locked by the caller's
// unit of work. It never opens a transaction itself.
type postingEngine struct {
	enforceStatus bool
}

// apply checks the posting against the account, then writes the new balance,
// one journal entry and one transaction, all stamped with now. On success
// account holds the new balance and version.
//
// Checks run in this order: amount, type, currency, status, funds or balance limit.
func (e postingEngine) apply(ctx context.Context, repos portsrepo.LedgerRepositories, account *domain.Account, in postingInput, now time.Time) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(in.amount); err != nil {
		return nil, err
	}
	if !in.txnType.IsValid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownTransactionType, in.txnType)
	}
	if !domain.SameCurrency(in.currency, account.Currency) {
		return nil, fmt.Errorf("%w: account %d is in %s, posting is in %s",
			apperrors.ErrCurrencyMismatch, account.ID, account.Currency, domain.NormalizeCurrency(in.currency))
	}
	if e.enforceStatus && !account.IsActive() {
		return nil, fmt.Errorf("%w: account %d is %s", apperrors.ErrAccountInactive, account.ID, account.Status)
	}

	newBalance := account.Balance.Add(in.amount)
	if in.txnType.IsDebit() {
		if account.Balance.LessThan(in.amount) {
			return nil, fmt.Errorf("%w: account %d has %s, needs %s",
				apperrors.ErrInsufficientFunds, account.ID, account.Balance.StringFixed(domain.MoneyScale), in.amount.StringFixed(domain.MoneyScale))
		}
		newBalance = account.Balance.Sub(in.amount)
	} else if err := domain.ValidateBalance(newBalance); err != nil {
		return nil, fmt.Errorf("account %d: %w", account.ID, err)
	}

	account.Balance = newBalance
	if err := repos.Accounts().UpdateAccount(ctx, account); err != nil {
		return nil, err
	}

	entry := &domain.BalanceHistory{
		AccountID: account.ID,
		Balance:   newBalance,
		CreatedAt: now,
	}
	if err := repos.BalanceHistory().AppendBalanceHistory(ctx, entry); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		AccountID:         account.ID,
		Type:              in.txnType,
		Amount:            in.amount,
		Currency:          account.Currency,
		Message:           in.message,
		FromAccountNumber: in.fromAccountNumber,
		ToAccountNumber:   in.toAccountNumber,
		CreatedAt:         now,
	}
	if err := repos.Transactions().SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// lockAccount loads one account with a row lock.
func lockAccount(ctx context.Context, repos portsrepo.LedgerRepositories, accountID int64) (*domain.Account, error) {
	accounts, err := repos.Accounts().FindAccountsByIDsForUpdate(ctx, []int64{accountID})
	if err != nil {
		return nil, err
	}
	account, ok := accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %d", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

// lockOrder returns two account ids in the order their rows must be locked.
func lockOrder(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
