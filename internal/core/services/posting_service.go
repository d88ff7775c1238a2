package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
)

type postingService struct {
	BaseService
	engine postingEngine
}

var _ portssvc.PostingSvc = (*postingService)(nil)

// NewPostingService creates the single-entry posting service.
func NewPostingService(uow portsrepo.UnitOfWork, clk clock.Clock, enforceStatus bool) *postingService {
	return &postingService{
		BaseService: newBaseService(uow, clk),
		engine:      postingEngine{enforceStatus: enforceStatus},
	}
}

func (s *postingService) PostTransaction(ctx context.Context, req dto.PostTransactionRequest) (*domain.PostingResult, error) {
	logAttrs := []any{slog.Int64("account_id", req.AccountID), slog.String("type", req.Type)}

	if err := domain.ValidateAmount(req.Amount); err != nil {
		s.LogFailure(ctx, err, "Posting rejected", logAttrs...)
		return nil, err
	}
	txnType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		s.LogFailure(ctx, err, "Posting rejected", logAttrs...)
		return nil, err
	}

	var result *domain.PostingResult
	err = s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		account, err := lockAccount(ctx, repos, req.AccountID)
		if err != nil {
			return err
		}
		txn, err := s.engine.apply(ctx, repos, account, postingInput{
			amount:            req.Amount,
			txnType:           txnType,
			currency:          req.Currency,
			message:           req.Message,
			fromAccountNumber: req.FromAccountNumber,
			toAccountNumber:   req.ToAccountNumber,
		}, s.clock.Now())
		if err != nil {
			return err
		}
		result = &domain.PostingResult{Transaction: *txn, NewBalance: account.Balance}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Posting failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.Int64("account_id", req.AccountID),
		slog.Int64("transaction_id", result.Transaction.ID),
		slog.String("type", string(txnType)),
		slog.String("new_balance", result.NewBalance.StringFixed(domain.MoneyScale)))
	return result, nil
}
