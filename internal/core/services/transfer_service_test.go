package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/core/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CategoryLinkRequester ---
type MockCategoryLinkRequester struct {
	mock.Mock
}

var _ portssvc.CategoryLinkRequester = (*MockCategoryLinkRequester)(nil)

func (m *MockCategoryLinkRequester) RequestCategoryLinks(ctx context.Context, transactionIDs, categoryIDs []int64) error {
	args := m.Called(ctx, transactionIDs, categoryIDs)
	return args.Error(0)
}

type TransferServiceTestSuite struct {
	ledgerSuite
	mockLinks *MockCategoryLinkRequester
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

func (s *TransferServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.mockLinks = new(MockCategoryLinkRequester)
}

func (s *TransferServiceTestSuite) TestTransferMovesMoneyBetweenAccounts() {
	a := s.currentAccount(1, "100000.00", "HUF")
	b := s.currentAccount(2, "5000.00", "HUF")
	svc := services.NewTransferService(s.store, s.clock, true, s.mockLinks)

	result, err := svc.Transfer(s.ctx, dto.TransferRequest{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("15000.00"),
		Currency:      "HUF",
		Message:       "rent",
	})
	s.Require().NoError(err)
	s.True(result.FromNewBalance.Equal(dec("85000.00")))
	s.True(result.ToNewBalance.Equal(dec("20000.00")))
	s.Equal(domain.TransactionTypeTransferOut, result.OutTransaction.Type)
	s.Equal(domain.TransactionTypeTransferIn, result.InTransaction.Type)
	s.Equal(a.ID, result.OutTransaction.AccountID)
	s.Equal(b.ID, result.InTransaction.AccountID)
	s.Equal(a.AccountNumber, result.InTransaction.FromAccountNumber)
	s.Equal(b.AccountNumber, result.OutTransaction.ToAccountNumber)
	s.Equal(result.OutTransaction.CreatedAt, result.InTransaction.CreatedAt)
	s.NoError(result.CategoryLinkError)

	s.True(s.reload(a.ID).Balance.Equal(dec("85000.00")))
	s.True(s.reload(b.ID).Balance.Equal(dec("20000.00")))
	s.Len(s.historyOf(a.ID), 1)
	s.Len(s.historyOf(b.ID), 1)
	s.assertReconstructs(a.ID)
	s.assertReconstructs(b.ID)
	s.mockLinks.AssertNotCalled(s.T(), "RequestCategoryLinks", mock.Anything, mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestCurrencyMismatchWritesNothing() {
	a := s.currentAccount(1, "1000.00", "EUR")
	b := s.currentAccount(2, "1000.00", "HUF")
	svc := services.NewTransferService(s.store, s.clock, true, nil)

	_, err := svc.Transfer(s.ctx, dto.TransferRequest{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("10"), Currency: "HUF"})
	s.ErrorIs(err, apperrors.ErrCurrencyMismatch)

	_, err = svc.Transfer(s.ctx, dto.TransferRequest{FromAccountID: b.ID, ToAccountID: a.ID, Amount: dec("10"), Currency: "HUF"})
	s.ErrorIs(err, apperrors.ErrCurrencyMismatch)

	for _, id := range []int64{a.ID, b.ID} {
		s.True(s.reload(id).Balance.Equal(dec("1000.00")))
		s.Empty(s.transactionsOf(id))
		s.Empty(s.historyOf(id))
	}
}

func (s *TransferServiceTestSuite) TestPreconditions() {
	a := s.currentAccount(1, "50.00", "HUF")
	b := s.currentAccount(2, "0", "HUF")
	svc := services.NewTransferService(s.store, s.clock, true, nil)

	tests := []struct {
		name    string
		req     dto.TransferRequest
		wantErr error
	}{
		{"self transfer", dto.TransferRequest{FromAccountID: a.ID, ToAccountID: a.ID, Amount: dec("1"), Currency: "HUF"}, apperrors.ErrSelfTransfer},
		{"missing source", dto.TransferRequest{FromAccountID: 404, ToAccountID: b.ID, Amount: dec("1"), Currency: "HUF"}, apperrors.ErrNotFound},
		{"missing destination", dto.TransferRequest{FromAccountID: a.ID, ToAccountID: 404, Amount: dec("1"), Currency: "HUF"}, apperrors.ErrNotFound},
		{"insufficient funds", dto.TransferRequest{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("50.01"), Currency: "HUF"}, apperrors.ErrInsufficientFunds},
		{"zero amount", dto.TransferRequest{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("0"), Currency: "HUF"}, apperrors.ErrValidation},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := svc.Transfer(s.ctx, tc.req)
			s.ErrorIs(err, tc.wantErr)
		})
	}
	s.True(s.reload(a.ID).Balance.Equal(dec("50.00")))
	s.True(s.reload(b.ID).Balance.IsZero())
}

func (s *TransferServiceTestSuite) TestSecondLegFailureRollsBackFirstLeg() {
	a := s.currentAccount(1, "500.00", "HUF")
	b := s.currentAccount(2, "0", "HUF")
	uow := &failingUnitOfWork{inner: s.store, failAt: 2}
	svc := services.NewTransferService(uow, s.clock, true, nil)

	_, err := svc.Transfer(s.ctx, dto.TransferRequest{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("100"), Currency: "HUF"})
	s.ErrorIs(err, errInjected)

	s.True(s.reload(a.ID).Balance.Equal(dec("500.00")))
	s.True(s.reload(b.ID).Balance.IsZero())
	s.Empty(s.transactionsOf(a.ID))
	s.Empty(s.historyOf(a.ID))
}

func (s *TransferServiceTestSuite) TestCategoryLinksRequestedForBothLegs() {
	a := s.currentAccount(1, "100.00", "HUF")
	b := s.currentAccount(2, "0", "HUF")
	svc := services.NewTransferService(s.store, s.clock, true, s.mockLinks)

	s.mockLinks.On("RequestCategoryLinks", mock.Anything, mock.MatchedBy(func(ids []int64) bool { return len(ids) == 2 }), []int64{7, 8}).
		Return(nil).Once()

	result, err := svc.Transfer(s.ctx, dto.TransferRequest{
		FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("10"), Currency: "HUF", CategoryIDs: []int64{7, 8},
	})
	s.Require().NoError(err)
	s.NoError(result.CategoryLinkError)
	s.mockLinks.AssertExpectations(s.T())
}

func (s *TransferServiceTestSuite) TestCategoryLinkFailureIsPartialSuccess() {
	a := s.currentAccount(1, "100.00", "HUF")
	b := s.currentAccount(2, "0", "HUF")
	svc := services.NewTransferService(s.store, s.clock, true, s.mockLinks)

	s.mockLinks.On("RequestCategoryLinks", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("outbox unavailable")).Once()

	result, err := svc.Transfer(s.ctx, dto.TransferRequest{
		FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("10"), Currency: "HUF", CategoryIDs: []int64{3},
	})
	s.Require().NoError(err)
	s.Require().Error(result.CategoryLinkError)
	s.True(s.reload(a.ID).Balance.Equal(dec("90.00")))
	s.True(s.reload(b.ID).Balance.Equal(dec("10.00")))
}

func (s *TransferServiceTestSuite) TestConcurrentOppositeTransfersConserveMoney() {
	a := s.currentAccount(1, "1000.00", "HUF")
	b := s.currentAccount(2, "1000.00", "HUF")
	svc := services.NewTransferService(s.store, s.clock, true, nil)

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(s.ctx, dto.TransferRequest{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("3.00"), Currency: "HUF"})
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(s.ctx, dto.TransferRequest{FromAccountID: b.ID, ToAccountID: a.ID, Amount: dec("1.00"), Currency: "HUF"})
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.True(s.reload(a.ID).Balance.Equal(dec("900.00")))
	s.True(s.reload(b.ID).Balance.Equal(dec("1100.00")))
	s.Len(s.transactionsOf(a.ID), 2*rounds)
	s.assertReconstructs(a.ID)
	s.assertReconstructs(b.ID)
}
