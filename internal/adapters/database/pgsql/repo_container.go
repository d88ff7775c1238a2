package pgsql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txRepositories binds every repository to one querier, either the pool or an open pgx.Tx.
type txRepositories struct {
	accounts       *PgxAccountRepository
	transactions   *PgxTransactionRepository
	balanceHistory *PgxBalanceHistoryRepository
	savings        *PgxSavingsRepository
	categories     *PgxCategoryRepository
	outbox         *PgxOutboxRepository
}

func newTxRepositories(db querier) *txRepositories {
	return &txRepositories{
		accounts:       newPgxAccountRepository(db),
		transactions:   newPgxTransactionRepository(db),
		balanceHistory: newPgxBalanceHistoryRepository(db),
		savings:        newPgxSavingsRepository(db),
		categories:     newPgxCategoryRepository(db),
		outbox:         newPgxOutboxRepository(db),
	}
}

func (r *txRepositories) Accounts() portsrepo.AccountRepositoryFacade {
	return r.accounts
}

func (r *txRepositories) Transactions() portsrepo.TransactionRepositoryFacade {
	return r.transactions
}

func (r *txRepositories) BalanceHistory() portsrepo.BalanceHistoryRepositoryFacade {
	return r.balanceHistory
}

func (r *txRepositories) Savings() portsrepo.SavingsRepositoryFacade {
	return r.savings
}

func (r *txRepositories) Categories() portsrepo.CategoryRepositoryFacade {
	return r.categories
}

func (r *txRepositories) Outbox() portsrepo.OutboxRepositoryFacade {
	return r.outbox
}

// PgxUnitOfWork runs a callback inside a READ COMMITTED transaction. Row locks
// taken with FOR UPDATE serialize concurrent postings on the same account.
type PgxUnitOfWork struct {
	pool *pgxpool.Pool
}

var _ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)

func NewUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{pool: pool}
}

func (u *PgxUnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.LedgerRepositories) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.NewTransientError("failed to begin transaction", err)
	}
	// Rollback is a no-op after a successful commit
	defer func() {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "transaction rollback failed", "error", rbErr)
		}
	}()

	if err := fn(ctx, newTxRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err, "failed to commit transaction")
	}
	return nil
}

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	repos := newTxRepositories(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:        repos.accounts,
		TransactionRepo:    repos.transactions,
		BalanceHistoryRepo: repos.balanceHistory,
		SavingsRepo:        repos.savings,
		CategoryRepo:       repos.categories,
		OutboxRepo:         repos.outbox,
		UnitOfWork:         NewUnitOfWork(dbPool),
	}
}
