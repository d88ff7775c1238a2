package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
)

type transferService struct {
	BaseService
	engine     postingEngine
	categories portssvc.CategoryLinkRequester
}

var _ portssvc.TransferSvc = (*transferService)(nil)

// NewTransferService creates the two-leg transfer service. categories may be
// nil, in which case requested category links are reported as not queued.
func NewTransferService(uow portsrepo.UnitOfWork, clk clock.Clock, enforceStatus bool, categories portssvc.CategoryLinkRequester) *transferService {
	return &transferService{
		BaseService: newBaseService(uow, clk),
		engine:      postingEngine{enforceStatus: enforceStatus},
		categories:  categories,
	}
}

func (s *transferService) Transfer(ctx context.Context, req dto.TransferRequest) (*domain.TransferResult, error) {
	logAttrs := []any{slog.Int64("from_account_id", req.FromAccountID), slog.Int64("to_account_id", req.ToAccountID)}

	if req.FromAccountID == req.ToAccountID {
		err := fmt.Errorf("%w: account %d", apperrors.ErrSelfTransfer, req.FromAccountID)
		s.LogFailure(ctx, err, "Transfer rejected", logAttrs...)
		return nil, err
	}
	if err := domain.ValidateAmount(req.Amount); err != nil {
		s.LogFailure(ctx, err, "Transfer rejected", logAttrs...)
		return nil, err
	}

	var result *domain.TransferResult
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		first, second := lockOrder(req.FromAccountID, req.ToAccountID)
		accounts, err := repos.Accounts().FindAccountsByIDsForUpdate(ctx, []int64{first, second})
		if err != nil {
			return err
		}
		source, ok := accounts[req.FromAccountID]
		if !ok {
			return fmt.Errorf("%w: source account %d", apperrors.ErrNotFound, req.FromAccountID)
		}
		destination, ok := accounts[req.ToAccountID]
		if !ok {
			return fmt.Errorf("%w: destination account %d", apperrors.ErrNotFound, req.ToAccountID)
		}
		if !domain.SameCurrency(req.Currency, destination.Currency) {
			return fmt.Errorf("%w: destination account %d is in %s, transfer is in %s",
				apperrors.ErrCurrencyMismatch, destination.ID, destination.Currency, domain.NormalizeCurrency(req.Currency))
		}

		now := s.clock.Now()
		leg := postingInput{
			amount:            req.Amount,
			currency:          req.Currency,
			message:           req.Message,
			fromAccountNumber: source.AccountNumber,
			toAccountNumber:   destination.AccountNumber,
		}

		leg.txnType = domain.TransactionTypeTransferOut
		outTxn, err := s.engine.apply(ctx, repos, &source, leg, now)
		if err != nil {
			return err
		}
		leg.txnType = domain.TransactionTypeTransferIn
		inTxn, err := s.engine.apply(ctx, repos, &destination, leg, now)
		if err != nil {
			return err
		}

		result = &domain.TransferResult{
			FromAccountID:  source.ID,
			ToAccountID:    destination.ID,
			FromNewBalance: source.Balance,
			ToNewBalance:   destination.Balance,
			OutTransaction: *outTxn,
			InTransaction:  *inTxn,
			CategoryIDs:    req.CategoryIDs,
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Transfer failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Transfer committed",
		slog.Int64("from_account_id", result.FromAccountID),
		slog.Int64("to_account_id", result.ToAccountID),
		slog.Int64("out_transaction_id", result.OutTransaction.ID),
		slog.Int64("in_transaction_id", result.InTransaction.ID))

	if len(req.CategoryIDs) > 0 {
		result.CategoryLinkError = s.requestCategoryLinks(ctx, result, req.CategoryIDs)
	}
	return result, nil
}

// requestCategoryLinks queues links for both legs. The transfer has already
// committed, so a failure is returned to the caller as a partial success.
func (s *transferService) requestCategoryLinks(ctx context.Context, result *domain.TransferResult, categoryIDs []int64) error {
	var err error
	if s.categories == nil {
		err = fmt.Errorf("category linking is not configured")
	} else {
		err = s.categories.RequestCategoryLinks(ctx,
			[]int64{result.OutTransaction.ID, result.InTransaction.ID}, categoryIDs)
	}
	if err != nil {
		s.LogFailure(ctx, err, "Transfer committed but category links were not queued",
			slog.Int64("out_transaction_id", result.OutTransaction.ID),
			slog.Int64("in_transaction_id", result.InTransaction.ID),
			slog.Any("category_ids", categoryIDs))
	}
	return err
}
