package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/SscSPs/finex_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// ledgerSuite provides a fresh in-memory store and a fixed clock per test.
type ledgerSuite struct {
	suite.Suite
	store    *memory.Store
	provider portsrepo.RepositoryProvider
	clock    *clock.Fixed
	ctx      context.Context
	seq      int
}

func (s *ledgerSuite) SetupTest() {
	s.store = memory.NewStore()
	s.provider = memory.NewRepositoryProvider(s.store)
	s.clock = clock.NewFixed(testEpoch)
	s.ctx = context.Background()
	s.seq = 0
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// createAccount seeds an ACTIVE account with the given opening balance.
func (s *ledgerSuite) createAccount(ownerID int64, balance, currency string, accType domain.AccountType) domain.Account {
	s.seq++
	acc := &domain.Account{
		OwnerID:       ownerID,
		AccountNumber: fmt.Sprintf("HU%010d", s.seq),
		Balance:       dec(balance),
		Currency:      currency,
		Type:          accType,
		Status:        domain.AccountStatusActive,
		CreatedAt:     s.clock.Now(),
	}
	s.Require().NoError(s.provider.AccountRepo.CreateAccount(s.ctx, acc))
	return *acc
}

func (s *ledgerSuite) currentAccount(ownerID int64, balance, currency string) domain.Account {
	return s.createAccount(ownerID, balance, currency, domain.AccountTypeCurrent)
}

func (s *ledgerSuite) reload(accountID int64) domain.Account {
	acc, err := s.provider.AccountRepo.FindAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return *acc
}

func (s *ledgerSuite) transactionsOf(accountID int64) []domain.Transaction {
	txns, _, err := s.provider.TransactionRepo.ListTransactionsByAccountID(s.ctx, accountID, domain.TransactionFilter{}, 100, nil)
	s.Require().NoError(err)
	return txns
}

func (s *ledgerSuite) historyOf(accountID int64) []domain.BalanceHistory {
	entries, _, err := s.provider.BalanceHistoryRepo.ListBalanceHistory(s.ctx, accountID, domain.TimeRange{}, 100, nil)
	s.Require().NoError(err)
	return entries
}

// assertReconstructs checks that opening balance plus signed transactions
// equals the stored balance, and that the last journal row agrees.
func (s *ledgerSuite) assertReconstructs(accountID int64) {
	acc := s.reload(accountID)
	sum := acc.OpeningBalance
	for _, txn := range s.transactionsOf(accountID) {
		sum = sum.Add(txn.SignedAmount())
	}
	s.True(sum.Equal(acc.Balance), "account %d: rebuilt %s, stored %s", accountID, sum, acc.Balance)

	history := s.historyOf(accountID)
	if len(history) > 0 {
		last := history[len(history)-1]
		s.True(last.Balance.Equal(acc.Balance), "account %d: journal %s, stored %s", accountID, last.Balance, acc.Balance)
	}
	s.Len(history, len(s.transactionsOf(accountID)))
}

var errInjected = errors.New("injected failure")

// failingUnitOfWork wraps a unit of work and fails the Nth SaveTransaction
// across the lifetime of the wrapper.
type failingUnitOfWork struct {
	inner  portsrepo.UnitOfWork
	failAt int64
	saves  atomic.Int64
}

func (f *failingUnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.LedgerRepositories) error) error {
	return f.inner.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		return fn(ctx, failingRepos{LedgerRepositories: repos, owner: f})
	})
}

type failingRepos struct {
	portsrepo.LedgerRepositories
	owner *failingUnitOfWork
}

func (r failingRepos) Transactions() portsrepo.TransactionRepositoryFacade {
	return failingTransactions{TransactionRepositoryFacade: r.LedgerRepositories.Transactions(), owner: r.owner}
}

type failingTransactions struct {
	portsrepo.TransactionRepositoryFacade
	owner *failingUnitOfWork
}

func (t failingTransactions) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	if t.owner.saves.Add(1) == t.owner.failAt {
		return errInjected
	}
	return t.TransactionRepositoryFacade.SaveTransaction(ctx, txn)
}
