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
	"github.com/shopspring/decimal"
)

type savingsService struct {
	BaseService
	savingsRepo portsrepo.SavingsReader
	engine      postingEngine
}

var _ portssvc.SavingsSvcFacade = (*savingsService)(nil)

// NewSavingsService creates the savings service. Money moves between savings
// and current accounts; only the current-account leg goes through the
// posting engine and is journaled.
func NewSavingsService(savingsRepo portsrepo.SavingsReader, uow portsrepo.UnitOfWork, clk clock.Clock, enforceStatus bool) *savingsService {
	return &savingsService{
		BaseService: newBaseService(uow, clk),
		savingsRepo: savingsRepo,
		engine:      postingEngine{enforceStatus: enforceStatus},
	}
}

func validateSavingsName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: savings account name is required", apperrors.ErrValidation)
	}
	return name, nil
}

// ownedSavings hides savings accounts of other users behind ErrNotFound.
func ownedSavings(savings *domain.SavingsAccount, userID int64) error {
	if savings.OwnerID != userID {
		return fmt.Errorf("%w: savings account %d", apperrors.ErrNotFound, savings.ID)
	}
	return nil
}

func (s *savingsService) OpenSavingsAccount(ctx context.Context, userID int64, req dto.OpenSavingsRequest) (*domain.SavingsAccount, error) {
	logAttrs := []any{slog.Int64("user_id", userID), slog.String("name", req.Name)}

	name, err := validateSavingsName(req.Name)
	if err == nil {
		err = domain.ValidateBalance(req.InitialBalance)
	}
	if err == nil {
		err = domain.ValidateInterestRate(req.InterestRate)
	}
	if err != nil {
		s.LogFailure(ctx, err, "Savings open rejected", logAttrs...)
		return nil, err
	}

	var savings *domain.SavingsAccount
	err = s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		current, err := repos.Accounts().FindCurrentAccountByOwner(ctx, userID)
		if err != nil {
			return err
		}
		account, err := lockAccount(ctx, repos, current.ID)
		if err != nil {
			return err
		}
		if !domain.SameCurrency(req.Currency, account.Currency) {
			return fmt.Errorf("%w: current account %d is in %s, savings account is in %s",
				apperrors.ErrCurrencyMismatch, account.ID, account.Currency, domain.NormalizeCurrency(req.Currency))
		}
		if s.engine.enforceStatus && !account.IsActive() {
			return fmt.Errorf("%w: account %d is %s", apperrors.ErrAccountInactive, account.ID, account.Status)
		}
		if account.Balance.LessThan(req.InitialBalance) {
			return fmt.Errorf("%w: account %d has %s, needs %s", apperrors.ErrInsufficientFunds,
				account.ID, account.Balance.StringFixed(domain.MoneyScale), req.InitialBalance.StringFixed(domain.MoneyScale))
		}
		exists, err := repos.Savings().ExistsSavingsAccountByOwnerAndName(ctx, userID, name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: savings account %q", apperrors.ErrDuplicateName, name)
		}

		now := s.clock.Now()
		if req.InitialBalance.IsPositive() {
			if _, err := s.engine.apply(ctx, repos, account, postingInput{
				amount:   req.InitialBalance,
				txnType:  domain.TransactionTypeOutcome,
				currency: account.Currency,
				message:  "savings open: " + name,
			}, now); err != nil {
				return err
			}
		}

		savings = &domain.SavingsAccount{
			OwnerID:      userID,
			Name:         name,
			Balance:      req.InitialBalance,
			Currency:     account.Currency,
			InterestRate: req.InterestRate,
			Status:       domain.SavingsStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return repos.Savings().CreateSavingsAccount(ctx, savings)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Savings open failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Savings account opened",
		slog.Int64("user_id", userID),
		slog.Int64("savings_id", savings.ID),
		slog.String("initial_balance", savings.Balance.StringFixed(domain.MoneyScale)))
	return savings, nil
}

func (s *savingsService) GetSavingsAccount(ctx context.Context, userID, savingsID int64) (*domain.SavingsAccount, error) {
	savings, err := s.savingsRepo.FindSavingsAccountByID(ctx, savingsID)
	if err == nil {
		err = ownedSavings(savings, userID)
	}
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogFailure(ctx, err, "Failed to find savings account", slog.Int64("savings_id", savingsID))
		}
		return nil, err
	}
	return savings, nil
}

// ListSavingsAccounts pages through the user's savings accounts, oldest first.
// MinBalance keeps accounts whose balance is at least the given amount.
func (s *savingsService) ListSavingsAccounts(ctx context.Context, userID int64, params dto.ListSavingsParams) ([]domain.SavingsAccount, *string, error) {
	var filter domain.SavingsFilter
	if params.Status != nil {
		st := domain.SavingsStatus(strings.ToUpper(*params.Status))
		if !st.IsValid() {
			return nil, nil, fmt.Errorf("%w: unknown savings status %q", apperrors.ErrValidation, *params.Status)
		}
		filter.Status = &st
	}
	if params.MinBalance != nil {
		minBalance, err := decimal.NewFromString(strings.TrimSpace(*params.MinBalance))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: minBalance %q is not a decimal", apperrors.ErrValidation, *params.MinBalance)
		}
		filter.MinBalance = &minBalance
	}

	limit := pagination.NormalizeLimit(params.Limit)
	accounts, next, err := s.savingsRepo.ListSavingsAccountsByOwner(ctx, userID, filter, limit, params.NextToken)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list savings accounts", slog.Int64("user_id", userID))
		return nil, nil, err
	}
	if accounts == nil {
		accounts = []domain.SavingsAccount{}
	}
	return accounts, next, nil
}

func (s *savingsService) UpdateSavingsAccount(ctx context.Context, userID, savingsID int64, req dto.UpdateSavingsRequest) (*domain.SavingsAccount, error) {
	return s.modify(ctx, userID, savingsID, "Savings account updated", func(ctx context.Context, repos portsrepo.LedgerRepositories, savings *domain.SavingsAccount) error {
		if req.Name != nil {
			name, err := validateSavingsName(*req.Name)
			if err != nil {
				return err
			}
			if name != savings.Name {
				exists, err := repos.Savings().ExistsSavingsAccountByOwnerAndName(ctx, savings.OwnerID, name)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("%w: savings account %q", apperrors.ErrDuplicateName, name)
				}
				savings.Name = name
			}
		}
		if req.InterestRate != nil {
			if err := domain.ValidateInterestRate(*req.InterestRate); err != nil {
				return err
			}
			savings.InterestRate = *req.InterestRate
		}
		if req.Status != nil && *req.Status != savings.Status {
			return transitionSavings(savings, *req.Status)
		}
		return nil
	})
}

func (s *savingsService) CloseSavingsAccount(ctx context.Context, userID, savingsID int64) (*domain.SavingsAccount, error) {
	return s.modify(ctx, userID, savingsID, "Savings account closed", func(_ context.Context, _ portsrepo.LedgerRepositories, savings *domain.SavingsAccount) error {
		return transitionSavings(savings, domain.SavingsStatusClosed)
	})
}

// transitionSavings applies a status change. Closing requires an empty account.
func transitionSavings(savings *domain.SavingsAccount, next domain.SavingsStatus) error {
	if !savings.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: savings account %d cannot move from %s to %s",
			apperrors.ErrInvalidStatusTransition, savings.ID, savings.Status, next)
	}
	if next == domain.SavingsStatusClosed && !savings.Balance.IsZero() {
		return fmt.Errorf("%w: savings account %d still holds %s", apperrors.ErrValidation,
			savings.ID, savings.Balance.StringFixed(domain.MoneyScale))
	}
	savings.Status = next
	return nil
}

// modify locks the savings row, lets change mutate it and saves it.
func (s *savingsService) modify(ctx context.Context, userID, savingsID int64, okMsg string,
	change func(ctx context.Context, repos portsrepo.LedgerRepositories, savings *domain.SavingsAccount) error) (*domain.SavingsAccount, error) {
	var savings *domain.SavingsAccount
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		var err error
		savings, err = repos.Savings().FindSavingsAccountByIDForUpdate(ctx, savingsID)
		if err != nil {
			return err
		}
		if err := ownedSavings(savings, userID); err != nil {
			return err
		}
		if err := change(ctx, repos, savings); err != nil {
			return err
		}
		savings.UpdatedAt = s.clock.Now()
		return repos.Savings().UpdateSavingsAccount(ctx, savings)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Savings account change failed", slog.Int64("savings_id", savingsID))
		return nil, err
	}
	s.LogInfo(ctx, okMsg, slog.Int64("savings_id", savingsID), slog.String("status", string(savings.Status)))
	return savings, nil
}

type savingsDirection int

const (
	intoSavings savingsDirection = iota
	outOfSavings
)

func (s *savingsService) DepositFromCurrent(ctx context.Context, userID, savingsID int64, req dto.SavingsMovementRequest) (*domain.SavingsMovementResult, error) {
	return s.move(ctx, userID, savingsID, req, intoSavings)
}

func (s *savingsService) WithdrawToCurrent(ctx context.Context, userID, savingsID int64, req dto.SavingsMovementRequest) (*domain.SavingsMovementResult, error) {
	return s.move(ctx, userID, savingsID, req, outOfSavings)
}

// move runs a deposit or a withdrawal against one of the owner's CURRENT
// accounts. The current account row is locked before the savings row.
func (s *savingsService) move(ctx context.Context, userID, savingsID int64, req dto.SavingsMovementRequest, dir savingsDirection) (*domain.SavingsMovementResult, error) {
	opName := "deposit"
	if dir == outOfSavings {
		opName = "withdraw"
	}
	logAttrs := []any{
		slog.String("operation", opName),
		slog.Int64("savings_id", savingsID),
		slog.Int64("current_account_id", req.CurrentAccountID),
	}

	if err := domain.ValidateAmount(req.Amount); err != nil {
		s.LogFailure(ctx, err, "Savings movement rejected", logAttrs...)
		return nil, err
	}

	var result *domain.SavingsMovementResult
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		account, err := lockAccount(ctx, repos, req.CurrentAccountID)
		if err != nil {
			return err
		}
		savings, err := repos.Savings().FindSavingsAccountByIDForUpdate(ctx, savingsID)
		if err != nil {
			return err
		}
		if err := ownedSavings(savings, userID); err != nil {
			return err
		}
		if account.OwnerID != savings.OwnerID {
			return fmt.Errorf("%w: account %d and savings account %d", apperrors.ErrOwnershipMismatch, account.ID, savings.ID)
		}
		if !domain.SameCurrency(account.Currency, savings.Currency) {
			return fmt.Errorf("%w: account %d is in %s, savings account %d is in %s",
				apperrors.ErrCurrencyMismatch, account.ID, account.Currency, savings.ID, savings.Currency)
		}
		if account.Type != domain.AccountTypeCurrent {
			return fmt.Errorf("%w: account %d is a %s account, savings moves need a %s account",
				apperrors.ErrValidation, account.ID, account.Type, domain.AccountTypeCurrent)
		}
		if s.engine.enforceStatus && !savings.IsActive() {
			return fmt.Errorf("%w: savings account %d is %s", apperrors.ErrAccountInactive, savings.ID, savings.Status)
		}

		message := strings.TrimSpace(req.Message)
		if message == "" {
			message = fmt.Sprintf("savings %s: %s", opName, savings.Name)
		}
		leg := postingInput{amount: req.Amount, currency: savings.Currency, message: message}

		if dir == intoSavings {
			leg.txnType = domain.TransactionTypeOutcome
			savings.Balance = savings.Balance.Add(req.Amount)
			if err := domain.ValidateBalance(savings.Balance); err != nil {
				return fmt.Errorf("savings account %d: %w", savings.ID, err)
			}
		} else {
			if savings.Balance.LessThan(req.Amount) {
				return fmt.Errorf("%w: savings account %d has %s, needs %s", apperrors.ErrInsufficientFunds,
					savings.ID, savings.Balance.StringFixed(domain.MoneyScale), req.Amount.StringFixed(domain.MoneyScale))
			}
			leg.txnType = domain.TransactionTypeIncome
			savings.Balance = savings.Balance.Sub(req.Amount)
		}

		now := s.clock.Now()
		txn, err := s.engine.apply(ctx, repos, account, leg, now)
		if err != nil {
			return err
		}
		savings.UpdatedAt = now
		if err := repos.Savings().UpdateSavingsAccount(ctx, savings); err != nil {
			return err
		}

		result = &domain.SavingsMovementResult{
			SavingsAccountID:  savings.ID,
			AccountID:         account.ID,
			SavingsNewBalance: savings.Balance,
			AccountNewBalance: account.Balance,
			Transaction:       *txn,
			Message:           message,
			CreatedAt:         now,
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Savings movement failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Savings movement committed", append(logAttrs,
		slog.Int64("transaction_id", result.Transaction.ID),
		slog.String("savings_new_balance", result.SavingsNewBalance.StringFixed(domain.MoneyScale)))...)
	return result, nil
}
