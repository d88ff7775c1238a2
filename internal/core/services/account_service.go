package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
)

// accountService serves account reads and back-office operations.
type accountService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
	historyRepo     portsrepo.BalanceHistoryReader
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func NewAccountService(
	accountRepo portsrepo.AccountReader,
	transactionRepo portsrepo.TransactionReader,
	historyRepo portsrepo.BalanceHistoryReader,
	uow portsrepo.UnitOfWork,
	clk clock.Clock,
) *accountService {
	return &accountService{
		BaseService:     newBaseService(uow, clk),
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		historyRepo:     historyRepo,
	}
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogFailure(ctx, err, "Failed to get account", slog.Int64("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogFailure(ctx, err, "Failed to get transaction", slog.Int64("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns one page of an account's transactions, newest first.
func (s *accountService) ListTransactions(ctx context.Context, accountID int64, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	filter := domain.TransactionFilter{TimeRange: domain.TimeRange{From: params.From, To: params.To}}
	if err := filter.Validate(); err != nil {
		return nil, nil, err
	}
	if params.Type != nil && *params.Type != "" {
		t, err := domain.ParseTransactionType(*params.Type)
		if err != nil {
			return nil, nil, err
		}
		filter.Type = &t
	}
	if _, err := s.GetAccountByID(ctx, accountID); err != nil {
		return nil, nil, err
	}

	txns, next, err := s.transactionRepo.ListTransactionsByAccountID(ctx, accountID, filter, pagination.NormalizeLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list transactions", slog.Int64("account_id", accountID))
		return nil, nil, err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, next, nil
}

// ListBalanceHistory returns one page of an account's balance journal, oldest first.
func (s *accountService) ListBalanceHistory(ctx context.Context, accountID int64, params dto.ListBalanceHistoryParams) ([]domain.BalanceHistory, *string, error) {
	window := domain.TimeRange{From: params.From, To: params.To}
	if err := window.Validate(); err != nil {
		return nil, nil, err
	}
	if _, err := s.GetAccountByID(ctx, accountID); err != nil {
		return nil, nil, err
	}

	entries, next, err := s.historyRepo.ListBalanceHistory(ctx, accountID, window, pagination.NormalizeLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list balance history", slog.Int64("account_id", accountID))
		return nil, nil, err
	}
	if entries == nil {
		entries = []domain.BalanceHistory{}
	}
	return entries, next, nil
}

// UpdateAccountStatus moves an account through its lifecycle. Setting the
// current status again is a no-op.
func (s *accountService) UpdateAccountStatus(ctx context.Context, accountID int64, req dto.UpdateAccountStatusRequest) (*domain.Account, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown account status %q", apperrors.ErrValidation, req.Status)
	}

	var account *domain.Account
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		var err error
		account, err = lockAccount(ctx, repos, accountID)
		if err != nil {
			return err
		}
		if account.Status == req.Status {
			return nil
		}
		if !account.Status.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: account %d cannot move from %s to %s",
				apperrors.ErrInvalidStatusTransition, account.ID, account.Status, req.Status)
		}
		account.Status = req.Status
		return repos.Accounts().UpdateAccount(ctx, account)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Account status change failed",
			slog.Int64("account_id", accountID), slog.String("status", string(req.Status)))
		return nil, err
	}

	s.LogInfo(ctx, "Account status updated", slog.Int64("account_id", accountID), slog.String("status", string(account.Status)))
	return account, nil
}

// ReconcileAccount rebuilds the balance from the account's transactions and
// journal. The account row is locked so no posting lands mid-read.
func (s *accountService) ReconcileAccount(ctx context.Context, accountID int64) (*domain.ReconciliationReport, error) {
	var report domain.ReconciliationReport
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		account, err := lockAccount(ctx, repos, accountID)
		if err != nil {
			return err
		}
		totals, err := repos.Transactions().TotalsByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		latest, err := repos.BalanceHistory().FindLatestBalanceHistory(ctx, accountID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			latest = nil
		}
		report = domain.NewReconciliationReport(*account, totals, latest, s.clock.Now())
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Reconciliation failed", slog.Int64("account_id", accountID))
		return nil, err
	}

	if !report.IsConsistent() {
		s.GetLogger(ctx).Error("Account failed reconciliation",
			slog.Int64("account_id", accountID),
			slog.String("stored_balance", report.StoredBalance.StringFixed(domain.MoneyScale)),
			slog.String("computed_balance", report.ComputedBalance.StringFixed(domain.MoneyScale)),
			slog.Bool("history_matches", report.HistoryMatches))
	}
	return &report, nil
}
