package repositories

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
)

// CategoryReader defines read operations for categories and their links
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListCategoriesByTransactionID(ctx context.Context, transactionID int64) ([]domain.Category, error)

	// ListTransactionsByCategoryID returns a page of the transactions linked to
	// the category, newest first.
	ListTransactionsByCategoryID(ctx context.Context, categoryID int64, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// CategoryWriter defines write operations for categories and their links
type CategoryWriter interface {
	// CreateCategory assigns the ID. A duplicate name yields apperrors.ErrDuplicate.
	CreateCategory(ctx context.Context, category *domain.Category) error

	// LinkCategory stores a transaction/category link. An existing pair yields
	// apperrors.ErrAlreadyLinked.
	LinkCategory(ctx context.Context, link *domain.TransactionCategory) error

	// UnlinkCategory removes a transaction/category link. A missing pair
	// yields apperrors.ErrNotFound.
	UnlinkCategory(ctx context.Context, transactionID, categoryID int64) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
