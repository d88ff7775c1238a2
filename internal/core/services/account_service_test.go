package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/core/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	ledgerSuite
	accounts portssvc.AccountSvcFacade
	posting  portssvc.PostingSvc
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.accounts = services.NewAccountService(s.provider.AccountRepo, s.provider.TransactionRepo, s.provider.BalanceHistoryRepo, s.store, s.clock)
	s.posting = services.NewPostingService(s.store, s.clock, true)
}

func (s *AccountServiceTestSuite) post(accountID int64, amount, typ string) domain.Transaction {
	result, err := s.posting.PostTransaction(s.ctx, dto.PostTransactionRequest{
		AccountID: accountID, Amount: dec(amount), Type: typ, Currency: "HUF",
	})
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	return result.Transaction
}

func (s *AccountServiceTestSuite) TestGetAccountAndTransaction() {
	acc := s.currentAccount(1, "10.00", "HUF")
	txn := s.post(acc.ID, "5", "INCOME")

	got, err := s.accounts.GetAccountByID(s.ctx, acc.ID)
	s.Require().NoError(err)
	s.True(got.Balance.Equal(dec("15.00")))

	gotTxn, err := s.accounts.GetTransactionByID(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Equal(txn.ID, gotTxn.ID)

	_, err = s.accounts.GetAccountByID(s.ctx, 999)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.accounts.GetTransactionByID(s.ctx, 999)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestListTransactionsPagesNewestFirst() {
	acc := s.currentAccount(1, "100.00", "HUF")
	var posted []domain.Transaction
	for i := 0; i < 5; i++ {
		posted = append(posted, s.post(acc.ID, "1", "INCOME"))
	}

	page1, next, err := s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page1, 2)
	s.Require().NotNil(next)
	s.Equal(posted[4].ID, page1[0].ID)
	s.Equal(posted[3].ID, page1[1].ID)

	page2, next, err := s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Require().Len(page2, 2)
	s.Equal(posted[2].ID, page2[0].ID)

	page3, next, err := s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Len(page3, 1)
	s.Nil(next)
}

func (s *AccountServiceTestSuite) TestListTransactionsDefaultPageSize() {
	acc := s.currentAccount(1, "0", "HUF")
	for i := 0; i < pagination.DefaultLimit+3; i++ {
		s.post(acc.ID, "1", "INCOME")
	}

	page, next, err := s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{})
	s.Require().NoError(err)
	s.Len(page, pagination.DefaultLimit)
	s.NotNil(next)

	history, _, err := s.accounts.ListBalanceHistory(s.ctx, acc.ID, dto.ListBalanceHistoryParams{Limit: pagination.MaxLimit + 50})
	s.Require().NoError(err)
	s.Len(history, pagination.DefaultLimit+3)
}

func (s *AccountServiceTestSuite) TestListTransactionsFilters() {
	acc := s.currentAccount(1, "100.00", "HUF")
	s.post(acc.ID, "1", "INCOME")
	mid := s.clock.Now()
	s.post(acc.ID, "2", "OUTCOME")
	s.post(acc.ID, "3", "INCOME")

	income := "income"
	txns, _, err := s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{Limit: 10, Type: &income})
	s.Require().NoError(err)
	s.Len(txns, 2)

	txns, _, err = s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{Limit: 10, From: &mid})
	s.Require().NoError(err)
	s.Len(txns, 2)

	bogus := "REFUND"
	_, _, err = s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{Limit: 10, Type: &bogus})
	s.ErrorIs(err, apperrors.ErrUnknownTransactionType)

	before := mid.Add(-time.Hour)
	_, _, err = s.accounts.ListTransactions(s.ctx, acc.ID, dto.ListTransactionsParams{Limit: 10, From: &mid, To: &before})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, _, err = s.accounts.ListTransactions(s.ctx, 999, dto.ListTransactionsParams{Limit: 10})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestListBalanceHistoryOldestFirst() {
	acc := s.currentAccount(1, "0", "HUF")
	s.post(acc.ID, "10", "INCOME")
	s.post(acc.ID, "3", "OUTCOME")
	s.post(acc.ID, "1", "INCOME")

	page, next, err := s.accounts.ListBalanceHistory(s.ctx, acc.ID, dto.ListBalanceHistoryParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.True(page[0].Balance.Equal(dec("10")))
	s.True(page[1].Balance.Equal(dec("7")))

	rest, next, err := s.accounts.ListBalanceHistory(s.ctx, acc.ID, dto.ListBalanceHistoryParams{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.True(rest[0].Balance.Equal(dec("8")))
	s.Nil(next)
}

func (s *AccountServiceTestSuite) TestUpdateAccountStatusTransitions() {
	acc := s.currentAccount(1, "0", "HUF")

	blocked, err := s.accounts.UpdateAccountStatus(s.ctx, acc.ID, dto.UpdateAccountStatusRequest{Status: domain.AccountStatusBlocked})
	s.Require().NoError(err)
	s.Equal(domain.AccountStatusBlocked, blocked.Status)

	same, err := s.accounts.UpdateAccountStatus(s.ctx, acc.ID, dto.UpdateAccountStatusRequest{Status: domain.AccountStatusBlocked})
	s.Require().NoError(err)
	s.Equal(blocked.Version, same.Version)

	_, err = s.accounts.UpdateAccountStatus(s.ctx, acc.ID, dto.UpdateAccountStatusRequest{Status: domain.AccountStatusClosed})
	s.Require().NoError(err)

	_, err = s.accounts.UpdateAccountStatus(s.ctx, acc.ID, dto.UpdateAccountStatusRequest{Status: domain.AccountStatusActive})
	s.ErrorIs(err, apperrors.ErrInvalidStatusTransition)

	_, err = s.accounts.UpdateAccountStatus(s.ctx, acc.ID, dto.UpdateAccountStatusRequest{Status: "DORMANT"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestReconcileAccount() {
	acc := s.currentAccount(1, "100.00", "HUF")

	report, err := s.accounts.ReconcileAccount(s.ctx, acc.ID)
	s.Require().NoError(err)
	s.True(report.IsConsistent())
	s.Nil(report.LatestHistoryBalance)

	s.post(acc.ID, "40", "INCOME")
	s.post(acc.ID, "15.50", "OUTCOME")

	report, err = s.accounts.ReconcileAccount(s.ctx, acc.ID)
	s.Require().NoError(err)
	s.True(report.IsConsistent())
	s.Equal(2, report.TransactionCount)
	s.True(report.TotalCredits.Equal(dec("40")))
	s.True(report.TotalDebits.Equal(dec("15.50")))
	s.True(report.ComputedBalance.Equal(dec("124.50")))
	s.Require().NotNil(report.LatestHistoryBalance)
	s.True(report.LatestHistoryBalance.Equal(dec("124.50")))

	_, err = s.accounts.ReconcileAccount(s.ctx, 999)
	s.ErrorIs(err, apperrors.ErrNotFound)
}
