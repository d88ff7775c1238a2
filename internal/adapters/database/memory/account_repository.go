package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
)

type accountRepository struct {
	run runner
}

var _ portsrepo.AccountRepositoryFacade = accountRepository{}

func (r accountRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	var found domain.Account
	err := r.run(func(st *state) error {
		acc, ok := st.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %d", apperrors.ErrNotFound, accountID)
		}
		found = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r accountRepository) FindCurrentAccountByOwner(ctx context.Context, ownerID int64) (*domain.Account, error) {
	var found *domain.Account
	err := r.run(func(st *state) error {
		for _, acc := range st.accounts {
			if acc.OwnerID != ownerID || acc.Type != domain.AccountTypeCurrent {
				continue
			}
			if found == nil || preferCurrentAccount(acc, *found) {
				candidate := acc
				found = &candidate
			}
		}
		if found == nil {
			return fmt.Errorf("%w: no current account for owner %d", apperrors.ErrNotFound, ownerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// preferCurrentAccount orders candidates like the Postgres query: ACTIVE
// first, then oldest, then lowest id.
func preferCurrentAccount(a, b domain.Account) bool {
	if a.IsActive() != b.IsActive() {
		return a.IsActive()
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (r accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	return r.run(func(st *state) error {
		for _, existing := range st.accounts {
			if existing.AccountNumber == account.AccountNumber {
				return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.AccountNumber)
			}
		}
		st.seq.account++
		account.ID = st.seq.account
		account.Version = 1
		account.OpeningBalance = account.Balance
		if account.Status == "" {
			account.Status = domain.AccountStatusActive
		}
		st.accounts[account.ID] = *account
		return nil
	})
}

func (r accountRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	return r.run(func(st *state) error {
		stored, ok := st.accounts[account.ID]
		if !ok {
			return fmt.Errorf("%w: account %d", apperrors.ErrNotFound, account.ID)
		}
		if stored.Version != account.Version {
			return fmt.Errorf("%w: account %d version %d", apperrors.ErrConcurrentUpdate, account.ID, account.Version)
		}
		stored.Balance = account.Balance
		stored.Status = account.Status
		stored.Version++
		st.accounts[account.ID] = stored
		account.Version = stored.Version
		return nil
	})
}

// FindAccountsByIDsForUpdate needs no extra locking here; the unit of work
// already holds the store lock.
func (r accountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error) {
	result := make(map[int64]domain.Account, len(accountIDs))
	err := r.run(func(st *state) error {
		for _, id := range accountIDs {
			if acc, ok := st.accounts[id]; ok {
				result[id] = acc
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
