// Package memory is an in-process implementation of the repository ports. It
// backs unit tests and the DB_DRIVER=memory development mode.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
)

type sequences struct {
	account     int64
	transaction int64
	history     int64
	savings     int64
	category    int64
	link        int64
}

// state is the whole data set. Repositories only touch it through a runner.
type state struct {
	accounts     map[int64]domain.Account
	transactions map[int64]domain.Transaction
	history      map[int64]domain.BalanceHistory
	savings      map[int64]domain.SavingsAccount
	categories   map[int64]domain.Category
	links        map[int64]domain.TransactionCategory
	outbox       map[uuid.UUID]domain.OutboxEvent
	seq          sequences
}

func newState() *state {
	return &state{
		accounts:     map[int64]domain.Account{},
		transactions: map[int64]domain.Transaction{},
		history:      map[int64]domain.BalanceHistory{},
		savings:      map[int64]domain.SavingsAccount{},
		categories:   map[int64]domain.Category{},
		links:        map[int64]domain.TransactionCategory{},
		outbox:       map[uuid.UUID]domain.OutboxEvent{},
	}
}

func (s *state) clone() *state {
	return &state{
		accounts:     maps.Clone(s.accounts),
		transactions: maps.Clone(s.transactions),
		history:      maps.Clone(s.history),
		savings:      maps.Clone(s.savings),
		categories:   maps.Clone(s.categories),
		links:        maps.Clone(s.links),
		outbox:       maps.Clone(s.outbox),
		seq:          s.seq,
	}
}

// runner executes fn against a state, either the committed one under the
// store lock or a transaction's private copy.
type runner func(fn func(st *state) error) error

// Store holds the committed state behind a single mutex. A unit of work runs
// on a copy of the state while holding the lock and swaps it in on success,
// so units of work are fully serialized.
//
// Repositories obtained from the RepositoryProvider also take the lock, so
// they must not be called from inside WithTransaction.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

// WithTransaction implements portsrepo.UnitOfWork.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.LedgerRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	repos := repositories{run: func(f func(st *state) error) error { return f(work) }}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) direct(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Repositories returns repositories that apply each call immediately.
func (s *Store) Repositories() portsrepo.LedgerRepositories {
	return repositories{run: s.direct}
}

// NewRepositoryProvider wires the store into the service layer.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	repos := s.Repositories()
	return portsrepo.RepositoryProvider{
		AccountRepo:        repos.Accounts(),
		TransactionRepo:    repos.Transactions(),
		BalanceHistoryRepo: repos.BalanceHistory(),
		SavingsRepo:        repos.Savings(),
		CategoryRepo:       repos.Categories(),
		OutboxRepo:         repos.Outbox(),
		UnitOfWork:         s,
	}
}

type repositories struct {
	run runner
}

func (r repositories) Accounts() portsrepo.AccountRepositoryFacade {
	return accountRepository{run: r.run}
}

func (r repositories) Transactions() portsrepo.TransactionRepositoryFacade {
	return transactionRepository{run: r.run}
}

func (r repositories) BalanceHistory() portsrepo.BalanceHistoryRepositoryFacade {
	return balanceHistoryRepository{run: r.run}
}

func (r repositories) Savings() portsrepo.SavingsRepositoryFacade {
	return savingsRepository{run: r.run}
}

func (r repositories) Categories() portsrepo.CategoryRepositoryFacade {
	return categoryRepository{run: r.run}
}

func (r repositories) Outbox() portsrepo.OutboxRepositoryFacade {
	return outboxRepository{run: r.run}
}
