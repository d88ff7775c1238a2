package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
)

type categoryService struct {
	BaseService
	categoryRepo    portsrepo.CategoryRepositoryFacade
	transactionRepo portsrepo.TransactionReader
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func NewCategoryService(
	categoryRepo portsrepo.CategoryRepositoryFacade,
	transactionRepo portsrepo.TransactionReader,
	uow portsrepo.UnitOfWork,
	clk clock.Clock,
) *categoryService {
	return &categoryService{
		BaseService:     newBaseService(uow, clk),
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	category := &domain.Category{Name: name, Icon: strings.TrimSpace(req.Icon)}
	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		s.LogFailure(ctx, err, "Failed to create category", slog.String("name", name))
		return nil, err
	}
	s.LogInfo(ctx, "Category created", slog.Int64("category_id", category.ID), slog.String("name", name))
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogFailure(ctx, err, "Failed to find category", slog.Int64("category_id", categoryID))
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list categories")
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

func (s *categoryService) ListTransactionCategories(ctx context.Context, transactionID int64) ([]domain.Category, error) {
	if _, err := s.transactionRepo.FindTransactionByID(ctx, transactionID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogFailure(ctx, err, "Failed to find transaction", slog.Int64("transaction_id", transactionID))
		}
		return nil, err
	}
	categories, err := s.categoryRepo.ListCategoriesByTransactionID(ctx, transactionID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list transaction categories", slog.Int64("transaction_id", transactionID))
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// ListCategoryTransactions pages through the transactions tagged with the
// category, newest first. An unknown category is ErrNotFound.
func (s *categoryService) ListCategoryTransactions(ctx context.Context, categoryID int64, params dto.ListCategoryTransactionsParams) ([]domain.Transaction, *string, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit)
	transactions, next, err := s.categoryRepo.ListTransactionsByCategoryID(ctx, categoryID, limit, params.NextToken)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list category transactions", slog.Int64("category_id", categoryID))
		return nil, nil, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return transactions, next, nil
}

// LinkCategory attaches a category to a transaction. Both must exist and the
// pair must not already be linked.
func (s *categoryService) LinkCategory(ctx context.Context, transactionID, categoryID int64) (*domain.TransactionCategory, error) {
	logAttrs := []any{slog.Int64("transaction_id", transactionID), slog.Int64("category_id", categoryID)}

	if _, err := s.transactionRepo.FindTransactionByID(ctx, transactionID); err != nil {
		s.LogFailure(ctx, err, "Category link rejected", logAttrs...)
		return nil, err
	}
	if _, err := s.categoryRepo.FindCategoryByID(ctx, categoryID); err != nil {
		s.LogFailure(ctx, err, "Category link rejected", logAttrs...)
		return nil, err
	}

	link := &domain.TransactionCategory{
		TransactionID: transactionID,
		CategoryID:    categoryID,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.categoryRepo.LinkCategory(ctx, link); err != nil {
		s.LogFailure(ctx, err, "Category link failed", logAttrs...)
		return nil, err
	}
	s.LogInfo(ctx, "Category linked", logAttrs...)
	return link, nil
}

// UnlinkCategory removes an existing link. A pair that is not linked is ErrNotFound.
func (s *categoryService) UnlinkCategory(ctx context.Context, transactionID, categoryID int64) error {
	logAttrs := []any{slog.Int64("transaction_id", transactionID), slog.Int64("category_id", categoryID)}
	if err := s.categoryRepo.UnlinkCategory(ctx, transactionID, categoryID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogFailure(ctx, err, "Category unlink failed", logAttrs...)
		}
		return err
	}
	s.LogInfo(ctx, "Category unlinked", logAttrs...)
	return nil
}

// RequestCategoryLinks records one outbox event per (transaction, category)
// pair. The dispatcher performs the links later.
func (s *categoryService) RequestCategoryLinks(ctx context.Context, transactionIDs, categoryIDs []int64) error {
	categoryIDs = uniqueIDs(categoryIDs)
	if len(transactionIDs) == 0 || len(categoryIDs) == 0 {
		return nil
	}
	for _, id := range append(append([]int64{}, transactionIDs...), categoryIDs...) {
		if id <= 0 {
			return fmt.Errorf("%w: ids must be positive, got %d", apperrors.ErrValidation, id)
		}
	}

	now := s.clock.Now()
	events := make([]domain.OutboxEvent, 0, len(transactionIDs)*len(categoryIDs))
	for _, txnID := range uniqueIDs(transactionIDs) {
		for _, catID := range categoryIDs {
			event, err := domain.NewOutboxEvent(domain.CategoryLinkEventType, txnID,
				domain.CategoryLinkPayload{TransactionID: txnID, CategoryID: catID}, now)
			if err != nil {
				return err
			}
			events = append(events, *event)
		}
	}

	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		return repos.Outbox().EnqueueEvents(ctx, events)
	})
	if err != nil {
		return err
	}
	s.LogDebug(ctx, "Category links queued", slog.Int("events", len(events)))
	return nil
}

// uniqueIDs drops duplicates and keeps first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
