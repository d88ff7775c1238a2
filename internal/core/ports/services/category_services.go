package services

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/SscSPs/finex_ledger/internal/dto"
)

type CategoryReaderSvc interface {
	GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListTransactionCategories(ctx context.Context, transactionID int64) ([]domain.Category, error)
	// ListCategoryTransactions returns a page of the category's transactions, newest first.
	ListCategoryTransactions(ctx context.Context, categoryID int64, params dto.ListCategoryTransactionsParams) ([]domain.Transaction, *string, error)
}

type CategoryWriterSvc interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*domain.Category, error)

	// LinkCategory attaches a category to a transaction right away.
	LinkCategory(ctx context.Context, transactionID, categoryID int64) (*domain.TransactionCategory, error)
	UnlinkCategory(ctx context.Context, transactionID, categoryID int64) error
}

// CategoryLinkRequester queues category links for asynchronous delivery.
type CategoryLinkRequester interface {
	// RequestCategoryLinks enqueues one outbox event per (transaction, category) pair.
	RequestCategoryLinks(ctx context.Context, transactionIDs, categoryIDs []int64) error
}

type CategorySvcFacade interface {
	CategoryReaderSvc
	CategoryWriterSvc
	CategoryLinkRequester
}
