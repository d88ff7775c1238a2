package repositories

import "context"

// LedgerRepositories exposes every repository bound to one unit of work.
type LedgerRepositories interface {
	Accounts() AccountRepositoryFacade
	Transactions() TransactionRepositoryFacade
	BalanceHistory() BalanceHistoryRepositoryFacade
	Savings() SavingsRepositoryFacade
	Categories() CategoryRepositoryFacade
	Outbox() OutboxRepositoryFacade
}

// UnitOfWork runs fn inside one store transaction. The transaction commits
// when fn returns nil and rolls back otherwise; fn's error is returned as is.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos LedgerRepositories) error) error
}
