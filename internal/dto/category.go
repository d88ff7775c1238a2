package dto

import (
	"time"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
)

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Icon string `json:"icon" binding:"max=100"`
}

// LinkCategoryRequest attaches one category to a transaction.
type LinkCategoryRequest struct {
	CategoryID int64 `json:"categoryId" binding:"required,gt=0"`
}

// ListCategoryTransactionsParams pages through the transactions of one category.
type ListCategoryTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

type CategoryResponse struct {
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	Icon       string `json:"icon,omitempty"`
}

type TransactionCategoryResponse struct {
	TransactionCategoryID int64     `json:"transactionCategoryId"`
	TransactionID         int64     `json:"transactionId"`
	CategoryID            int64     `json:"categoryId"`
	CreatedAt             time.Time `json:"createdAt"`
}

func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{CategoryID: c.ID, Name: c.Name, Icon: c.Icon}
}

func ToListCategoryResponse(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i := range categories {
		res[i] = ToCategoryResponse(&categories[i])
	}
	return res
}

func ToTransactionCategoryResponse(link *domain.TransactionCategory) TransactionCategoryResponse {
	return TransactionCategoryResponse{
		TransactionCategoryID: link.ID,
		TransactionID:         link.TransactionID,
		CategoryID:            link.CategoryID,
		CreatedAt:             link.CreatedAt,
	}
}
