//go:build integration

package pgsql_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/finex_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/core/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/outbox"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
	"github.com/SscSPs/finex_ledger/internal/platform/config"
	"github.com/SscSPs/finex_ledger/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresLedgerSuite runs the ledger services against a disposable PostgreSQL.
type PostgresLedgerSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	repos     portsrepo.RepositoryProvider
	services  *portssvc.ServiceContainer
	closePool func()
	seq       int
}

func TestPostgresLedgerSuite(t *testing.T) {
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Require().NoError(database.RunMigrations(dsn, "file://../../../../migrations", logger))

	pool, err := database.NewPgxPool(ctx, dsn, true)
	s.Require().NoError(err)
	s.closePool = pool.Close

	s.repos = pgsql.NewRepositoryProvider(pool)
	s.services = services.NewServiceContainer(&config.Config{EnforceAccountStatus: true}, s.repos, clock.System{})
}

func (s *PostgresLedgerSuite) TearDownSuite() {
	if s.closePool != nil {
		s.closePool()
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(context.Background()))
	}
}

func (s *PostgresLedgerSuite) account(ownerID int64, balance string) domain.Account {
	s.seq++
	acc := &domain.Account{
		OwnerID:       ownerID,
		AccountNumber: fmt.Sprintf("PG%010d", s.seq),
		Balance:       decimal.RequireFromString(balance),
		Currency:      "HUF",
		Type:          domain.AccountTypeCurrent,
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now(),
	}
	s.Require().NoError(s.repos.AccountRepo.CreateAccount(context.Background(), acc))
	return *acc
}

func (s *PostgresLedgerSuite) balance(accountID int64) decimal.Decimal {
	acc, err := s.repos.AccountRepo.FindAccountByID(context.Background(), accountID)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *PostgresLedgerSuite) TestPostingWritesTrail() {
	ctx := context.Background()
	acc := s.account(1, "100.00")

	result, err := s.services.Posting.PostTransaction(ctx, dto.PostTransactionRequest{
		AccountID: acc.ID, Amount: decimal.RequireFromString("50.00"), Type: "INCOME", Currency: "huf",
	})
	s.Require().NoError(err)
	s.True(result.NewBalance.Equal(decimal.RequireFromString("150.00")))

	report, err := s.services.Account.ReconcileAccount(ctx, acc.ID)
	s.Require().NoError(err)
	s.True(report.IsConsistent())
	s.Equal(1, report.TransactionCount)
}

func (s *PostgresLedgerSuite) TestUnitOfWorkRollsBack() {
	ctx := context.Background()
	acc := s.account(2, "10.00")
	errAbort := errors.New("abort")

	err := s.repos.UnitOfWork.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.LedgerRepositories) error {
		locked, err := repos.Accounts().FindAccountsByIDsForUpdate(ctx, []int64{acc.ID})
		if err != nil {
			return err
		}
		updated := locked[acc.ID]
		updated.Balance = decimal.RequireFromString("99.00")
		if err := repos.Accounts().UpdateAccount(ctx, &updated); err != nil {
			return err
		}
		return errAbort
	})
	s.ErrorIs(err, errAbort)
	s.True(s.balance(acc.ID).Equal(decimal.RequireFromString("10.00")))
}

func (s *PostgresLedgerSuite) TestConcurrentWithdrawalsNeverOverdraw() {
	ctx := context.Background()
	acc := s.account(3, "100.00")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, insufficient := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.services.Posting.PostTransaction(ctx, dto.PostTransactionRequest{
				AccountID: acc.ID, Amount: decimal.RequireFromString("10.00"), Type: "OUTCOME", Currency: "HUF",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientFunds):
				insufficient++
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(10, succeeded)
	s.Equal(10, insufficient)
	s.True(s.balance(acc.ID).IsZero())
}

func (s *PostgresLedgerSuite) TestTransferCategoryLinksAreDelivered() {
	ctx := context.Background()
	from := s.account(4, "500.00")
	to := s.account(5, "0.00")

	category, err := s.services.Category.CreateCategory(ctx, dto.CreateCategoryRequest{Name: fmt.Sprintf("Rent %d", s.seq)})
	s.Require().NoError(err)

	result, err := s.services.Transfer.Transfer(ctx, dto.TransferRequest{
		FromAccountID: from.ID, ToAccountID: to.ID, Amount: decimal.RequireFromString("200.00"),
		Currency: "HUF", CategoryIDs: []int64{category.ID},
	})
	s.Require().NoError(err)
	s.NoError(result.CategoryLinkError)

	registry := outbox.NewHandlerRegistry()
	s.Require().NoError(outbox.RegisterLedgerHandlers(registry, s.services.Category))
	dispatcher := outbox.NewDispatcher(s.repos.OutboxRepo, registry, clock.System{}, outbox.Config{BatchSize: 50}, slog.Default())

	dispatched := dispatcher.DispatchOnce(ctx)
	s.GreaterOrEqual(dispatched.Published, 2)

	for _, txnID := range []int64{result.OutTransaction.ID, result.InTransaction.ID} {
		linked, err := s.services.Category.ListTransactionCategories(ctx, txnID)
		s.Require().NoError(err)
		s.Require().Len(linked, 1)
		s.Equal(category.ID, linked[0].ID)
	}

	page, next, err := s.services.Category.ListCategoryTransactions(ctx, category.ID, dto.ListCategoryTransactionsParams{Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Require().NotNil(next)
	rest, next, err := s.services.Category.ListCategoryTransactions(ctx, category.ID, dto.ListCategoryTransactionsParams{Limit: 1, NextToken: next})
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Nil(next)
	s.NotEqual(page[0].ID, rest[0].ID)

	s.Require().NoError(s.services.Category.UnlinkCategory(ctx, result.OutTransaction.ID, category.ID))
	s.ErrorIs(s.services.Category.UnlinkCategory(ctx, result.OutTransaction.ID, category.ID), apperrors.ErrNotFound)
	remaining, _, err := s.services.Category.ListCategoryTransactions(ctx, category.ID, dto.ListCategoryTransactionsParams{})
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(result.InTransaction.ID, remaining[0].ID)
}

func (s *PostgresLedgerSuite) TestSavingsRoundTrip() {
	ctx := context.Background()
	current := s.account(6, "1000.00")

	savings, err := s.services.Savings.OpenSavingsAccount(ctx, 6, dto.OpenSavingsRequest{
		Name: "Emergency", InitialBalance: decimal.RequireFromString("400.00"), Currency: "HUF",
		InterestRate: decimal.RequireFromString("3.50"),
	})
	s.Require().NoError(err)

	minBalance := "400.00"
	rich, _, err := s.services.Savings.ListSavingsAccounts(ctx, 6, dto.ListSavingsParams{MinBalance: &minBalance})
	s.Require().NoError(err)
	s.Require().Len(rich, 1)
	s.Equal(savings.ID, rich[0].ID)

	_, err = s.services.Savings.WithdrawToCurrent(ctx, 6, savings.ID, dto.SavingsMovementRequest{
		CurrentAccountID: current.ID, Amount: decimal.RequireFromString("400.00"),
	})
	s.Require().NoError(err)
	s.True(s.balance(current.ID).Equal(decimal.RequireFromString("1000.00")))

	closed, err := s.services.Savings.CloseSavingsAccount(ctx, 6, savings.ID)
	s.Require().NoError(err)
	s.Equal(domain.SavingsStatusClosed, closed.Status)

	_, err = s.services.Savings.OpenSavingsAccount(ctx, 6, dto.OpenSavingsRequest{Name: "Emergency", Currency: "HUF"})
	s.ErrorIs(err, apperrors.ErrDuplicateName)
}
