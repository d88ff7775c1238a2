package dto

import (
	"time"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostTransactionRequest posts one amount to one account.
// Type is kept as a string so unknown kinds surface as UnknownTransactionType.
type PostTransactionRequest struct {
	AccountID         int64           `json:"accountId" binding:"required,gt=0"`
	Amount            decimal.Decimal `json:"amount" binding:"positive_decimal" swaggertype:"string" example:"50.00"`
	Type              string          `json:"type" binding:"required" example:"INCOME"`
	Currency          string          `json:"currency" binding:"required,currency" example:"HUF"`
	Message           string          `json:"message" binding:"max=255"`
	FromAccountNumber string          `json:"fromAccountNumber" binding:"max=34"`
	ToAccountNumber   string          `json:"toAccountNumber" binding:"max=34"`
}

// TransferRequest moves money between two accounts. CategoryIDs are linked
// to both legs asynchronously after the transfer commits.
type TransferRequest struct {
	FromAccountID int64           `json:"fromAccountId" binding:"required,gt=0"`
	ToAccountID   int64           `json:"toAccountId" binding:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" binding:"positive_decimal" swaggertype:"string" example:"15000.00"`
	Currency      string          `json:"currency" binding:"required,currency" example:"HUF"`
	Message       string          `json:"message" binding:"max=255"`
	CategoryIDs   []int64         `json:"categoryIds" binding:"omitempty,max=20,dive,gt=0"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID     int64                  `json:"transactionId"`
	AccountID         int64                  `json:"accountId"`
	Type              domain.TransactionType `json:"type"`
	Amount            decimal.Decimal        `json:"amount" swaggertype:"string"`
	Currency          string                 `json:"currency"`
	Message           string                 `json:"message,omitempty"`
	FromAccountNumber string                 `json:"fromAccountNumber,omitempty"`
	ToAccountNumber   string                 `json:"toAccountNumber,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// PostTransactionResponse is returned after a successful posting.
type PostTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	NewBalance  decimal.Decimal     `json:"newBalance" swaggertype:"string"`
}

// TransferResponse is returned after a committed transfer. CategoryLinkError
// is set when the transfer stands but its category links were not queued.
type TransferResponse struct {
	FromAccountID     int64               `json:"fromAccountId"`
	ToAccountID       int64               `json:"toAccountId"`
	FromNewBalance    decimal.Decimal     `json:"fromNewBalance" swaggertype:"string"`
	ToNewBalance      decimal.Decimal     `json:"toNewBalance" swaggertype:"string"`
	OutTransaction    TransactionResponse `json:"outTransaction"`
	InTransaction     TransactionResponse `json:"inTransaction"`
	CategoryIDs       []int64             `json:"categoryIds"`
	CategoryLinkError string              `json:"categoryLinkError,omitempty"`
}

// ListTransactionsParams defines query parameters for the transaction feed.
type ListTransactionsParams struct {
	Limit     int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string    `form:"nextToken"`
	Type      *string    `form:"type"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ListTransactionsResponse is one page of the transaction feed, newest first.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     t.ID,
		AccountID:         t.AccountID,
		Type:              t.Type,
		Amount:            t.Amount,
		Currency:          t.Currency,
		Message:           t.Message,
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		CreatedAt:         t.CreatedAt,
	}
}

func ToListTransactionsResponse(transactions []domain.Transaction, nextToken *string) ListTransactionsResponse {
	res := ListTransactionsResponse{
		Transactions: make([]TransactionResponse, len(transactions)),
		NextToken:    nextToken,
	}
	for i, t := range transactions {
		res.Transactions[i] = ToTransactionResponse(t)
	}
	return res
}

func ToPostTransactionResponse(r *domain.PostingResult) PostTransactionResponse {
	return PostTransactionResponse{
		Transaction: ToTransactionResponse(r.Transaction),
		NewBalance:  r.NewBalance,
	}
}

func ToTransferResponse(r *domain.TransferResult) TransferResponse {
	res := TransferResponse{
		FromAccountID:  r.FromAccountID,
		ToAccountID:    r.ToAccountID,
		FromNewBalance: r.FromNewBalance,
		ToNewBalance:   r.ToNewBalance,
		OutTransaction: ToTransactionResponse(r.OutTransaction),
		InTransaction:  ToTransactionResponse(r.InTransaction),
		CategoryIDs:    r.CategoryIDs,
	}
	if res.CategoryIDs == nil {
		res.CategoryIDs = []int64{}
	}
	if r.CategoryLinkError != nil {
		res.CategoryLinkError = r.CategoryLinkError.Error()
	}
	return res
}
