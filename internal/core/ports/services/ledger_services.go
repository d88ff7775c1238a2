package services

import (
	"context"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/SscSPs/finex_ledger/internal/dto"
)

// PostingSvc applies single-entry postings (deposits and withdrawals).
type PostingSvc interface {
	// PostTransaction applies one amount to one account and records the
	// transaction and the resulting balance in the same store transaction.
	PostTransaction(ctx context.Context, req dto.PostTransactionRequest) (*domain.PostingResult, error)
}

// TransferSvc moves money between two accounts.
type TransferSvc interface {
	// Transfer debits the source and credits the destination atomically.
	// Category links are requested after commit; a failure there is reported
	// in TransferResult.CategoryLinkError and does not undo the transfer.
	Transfer(ctx context.Context, req dto.TransferRequest) (*domain.TransferResult, error)
}
