package services_test

import (
	"encoding/json"
	"testing"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/core/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type CategoryServiceTestSuite struct {
	ledgerSuite
	categories portssvc.CategorySvcFacade
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (s *CategoryServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.categories = services.NewCategoryService(s.provider.CategoryRepo, s.provider.TransactionRepo, s.store, s.clock)
}

func (s *CategoryServiceTestSuite) postedTransaction() domain.Transaction {
	acc := s.currentAccount(1, "0", "HUF")
	result, err := services.NewPostingService(s.store, s.clock, true).PostTransaction(s.ctx, dto.PostTransactionRequest{
		AccountID: acc.ID, Amount: dec("12.00"), Type: "INCOME", Currency: "HUF",
	})
	s.Require().NoError(err)
	return result.Transaction
}

func (s *CategoryServiceTestSuite) TestCreateAndList() {
	food, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: " Food ", Icon: "fork"})
	s.Require().NoError(err)
	s.Equal("Food", food.Name)

	_, err = s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "  "})
	s.ErrorIs(err, apperrors.ErrValidation)

	list, err := s.categories.ListCategories(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(food.ID, list[0].ID)
}

func (s *CategoryServiceTestSuite) TestLinkCategory() {
	txn := s.postedTransaction()
	food, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "Food"})
	s.Require().NoError(err)

	link, err := s.categories.LinkCategory(s.ctx, txn.ID, food.ID)
	s.Require().NoError(err)
	s.Equal(testEpoch, link.CreatedAt)

	_, err = s.categories.LinkCategory(s.ctx, txn.ID, food.ID)
	s.ErrorIs(err, apperrors.ErrAlreadyLinked)

	_, err = s.categories.LinkCategory(s.ctx, txn.ID, 404)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.categories.LinkCategory(s.ctx, 404, food.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	linked, err := s.categories.ListTransactionCategories(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Require().Len(linked, 1)
	s.Equal("Food", linked[0].Name)

	_, err = s.categories.ListTransactionCategories(s.ctx, 404)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CategoryServiceTestSuite) TestRequestCategoryLinksQueuesOneEventPerPair() {
	err := s.categories.RequestCategoryLinks(s.ctx, []int64{10, 11}, []int64{3, 4, 3})
	s.Require().NoError(err)

	events, err := s.provider.OutboxRepo.ClaimEvents(s.ctx, s.clock.Now(), 100, 5)
	s.Require().NoError(err)
	s.Require().Len(events, 4)

	pairs := map[domain.CategoryLinkPayload]bool{}
	for _, e := range events {
		s.Equal(domain.CategoryLinkEventType, e.EventType)
		var p domain.CategoryLinkPayload
		s.Require().NoError(json.Unmarshal(e.Payload, &p))
		s.Equal(p.TransactionID, e.AggregateID)
		pairs[p] = true
	}
	s.Len(pairs, 4)
	s.True(pairs[domain.CategoryLinkPayload{TransactionID: 11, CategoryID: 4}])
}

func (s *CategoryServiceTestSuite) TestRequestCategoryLinksRejectsBadIDs() {
	err := s.categories.RequestCategoryLinks(s.ctx, []int64{1}, []int64{0})
	s.ErrorIs(err, apperrors.ErrValidation)

	s.NoError(s.categories.RequestCategoryLinks(s.ctx, []int64{1}, nil))
	events, err := s.provider.OutboxRepo.ClaimEvents(s.ctx, s.clock.Now(), 100, 5)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *CategoryServiceTestSuite) TestGetCategory() {
	food, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "Food", Icon: "fork"})
	s.Require().NoError(err)

	got, err := s.categories.GetCategory(s.ctx, food.ID)
	s.Require().NoError(err)
	s.Equal(*food, *got)

	_, err = s.categories.GetCategory(s.ctx, 404)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CategoryServiceTestSuite) TestUnlinkCategory() {
	txn := s.postedTransaction()
	food, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "Food"})
	s.Require().NoError(err)
	_, err = s.categories.LinkCategory(s.ctx, txn.ID, food.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.categories.UnlinkCategory(s.ctx, txn.ID, food.ID))
	linked, err := s.categories.ListTransactionCategories(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Empty(linked)

	s.ErrorIs(s.categories.UnlinkCategory(s.ctx, txn.ID, food.ID), apperrors.ErrNotFound)

	// The pair can be linked again once removed.
	_, err = s.categories.LinkCategory(s.ctx, txn.ID, food.ID)
	s.NoError(err)
}

func (s *CategoryServiceTestSuite) TestListCategoryTransactions() {
	acc := s.currentAccount(1, "0", "HUF")
	posting := services.NewPostingService(s.store, s.clock, true)
	food, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "Food"})
	s.Require().NoError(err)

	var tagged []int64
	for i := 0; i < 5; i++ {
		result, err := posting.PostTransaction(s.ctx, dto.PostTransactionRequest{
			AccountID: acc.ID, Amount: dec("3.00"), Type: "INCOME", Currency: "HUF",
		})
		s.Require().NoError(err)
		if i%2 == 0 {
			_, err = s.categories.LinkCategory(s.ctx, result.Transaction.ID, food.ID)
			s.Require().NoError(err)
			tagged = append(tagged, result.Transaction.ID)
		}
	}

	first, next, err := s.categories.ListCategoryTransactions(s.ctx, food.ID, dto.ListCategoryTransactionsParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Require().NotNil(next)
	s.Equal(tagged[2], first[0].ID)
	s.Equal(tagged[1], first[1].ID)

	rest, next, err := s.categories.ListCategoryTransactions(s.ctx, food.ID, dto.ListCategoryTransactionsParams{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Nil(next)
	s.Equal(tagged[0], rest[0].ID)

	empty, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "Travel"})
	s.Require().NoError(err)
	none, next, err := s.categories.ListCategoryTransactions(s.ctx, empty.ID, dto.ListCategoryTransactionsParams{})
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
	s.Nil(next)

	_, _, err = s.categories.ListCategoryTransactions(s.ctx, 404, dto.ListCategoryTransactionsParams{})
	s.ErrorIs(err, apperrors.ErrNotFound)

	bad := "not-a-token"
	_, _, err = s.categories.ListCategoryTransactions(s.ctx, food.ID, dto.ListCategoryTransactionsParams{NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}
