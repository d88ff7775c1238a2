package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
)

type savingsRepository struct {
	run runner
}

var _ portsrepo.SavingsRepositoryFacade = savingsRepository{}

func nameTaken(st *state, ownerID int64, name string, exceptID int64) bool {
	for _, s := range st.savings {
		if s.OwnerID == ownerID && s.Name == name && s.ID != exceptID {
			return true
		}
	}
	return false
}

func (r savingsRepository) CreateSavingsAccount(ctx context.Context, savings *domain.SavingsAccount) error {
	return r.run(func(st *state) error {
		if nameTaken(st, savings.OwnerID, savings.Name, 0) {
			return fmt.Errorf("%w: savings account %q", apperrors.ErrDuplicateName, savings.Name)
		}
		st.seq.savings++
		savings.ID = st.seq.savings
		savings.Version = 1
		st.savings[savings.ID] = *savings
		return nil
	})
}

func (r savingsRepository) FindSavingsAccountByID(ctx context.Context, savingsID int64) (*domain.SavingsAccount, error) {
	var found domain.SavingsAccount
	err := r.run(func(st *state) error {
		s, ok := st.savings[savingsID]
		if !ok {
			return fmt.Errorf("%w: savings account %d", apperrors.ErrNotFound, savingsID)
		}
		found = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r savingsRepository) FindSavingsAccountByIDForUpdate(ctx context.Context, savingsID int64) (*domain.SavingsAccount, error) {
	return r.FindSavingsAccountByID(ctx, savingsID)
}

func (r savingsRepository) ListSavingsAccountsByOwner(ctx context.Context, ownerID int64, filter domain.SavingsFilter, limit int, nextToken *string) ([]domain.SavingsAccount, *string, error) {
	matched := []domain.SavingsAccount{}
	err := r.run(func(st *state) error {
		for _, s := range st.savings {
			if s.OwnerID == ownerID && filter.Matches(s) {
				matched = append(matched, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paginate(matched, func(s domain.SavingsAccount) cursorKey {
		return cursorKey{createdAt: s.CreatedAt, id: s.ID}
	}, false, limit, nextToken)
}

func (r savingsRepository) ExistsSavingsAccountByOwnerAndName(ctx context.Context, ownerID int64, name string) (bool, error) {
	var exists bool
	err := r.run(func(st *state) error {
		exists = nameTaken(st, ownerID, name, 0)
		return nil
	})
	return exists, err
}

func (r savingsRepository) UpdateSavingsAccount(ctx context.Context, savings *domain.SavingsAccount) error {
	return r.run(func(st *state) error {
		stored, ok := st.savings[savings.ID]
		if !ok {
			return fmt.Errorf("%w: savings account %d", apperrors.ErrNotFound, savings.ID)
		}
		if stored.Version != savings.Version {
			return fmt.Errorf("%w: savings account %d version %d", apperrors.ErrConcurrentUpdate, savings.ID, savings.Version)
		}
		if nameTaken(st, stored.OwnerID, savings.Name, savings.ID) {
			return fmt.Errorf("%w: savings account %q", apperrors.ErrDuplicateName, savings.Name)
		}
		stored.Name = savings.Name
		stored.Balance = savings.Balance
		stored.InterestRate = savings.InterestRate
		stored.Status = savings.Status
		stored.UpdatedAt = savings.UpdatedAt
		stored.Version++
		st.savings[savings.ID] = stored
		savings.Version = stored.Version
		return nil
	})
}
