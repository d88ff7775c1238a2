package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
// The repository fields run each call on its own; UnitOfWork groups calls.
type RepositoryProvider struct {
	AccountRepo        AccountRepositoryFacade
	TransactionRepo    TransactionRepositoryFacade
	BalanceHistoryRepo BalanceHistoryRepositoryFacade
	SavingsRepo        SavingsRepositoryFacade
	CategoryRepo       CategoryRepositoryFacade
	OutboxRepo         OutboxRepositoryFacade
	UnitOfWork         UnitOfWork
}
