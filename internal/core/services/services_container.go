package services

import (
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
	"github.com/SscSPs/finex_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, clk clock.Clock) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Category service first; transfers queue their category links through it.
	category := NewCategoryService(repos.CategoryRepo, repos.TransactionRepo, repos.UnitOfWork, clk)
	container.Category = category

	container.Posting = NewPostingService(repos.UnitOfWork, clk, cfg.EnforceAccountStatus)
	container.Transfer = NewTransferService(repos.UnitOfWork, clk, cfg.EnforceAccountStatus, category)
	container.Account = NewAccountService(repos.AccountRepo, repos.TransactionRepo, repos.BalanceHistoryRepo, repos.UnitOfWork, clk)
	container.Savings = NewSavingsService(repos.SavingsRepo, repos.UnitOfWork, clk, cfg.EnforceAccountStatus)

	return container
}
