package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
)

type categoryRepository struct {
	run runner
}

var _ portsrepo.CategoryRepositoryFacade = categoryRepository{}

func byCategoryID(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) }

func (r categoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	return r.run(func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, category.Name) {
				return fmt.Errorf("%w: category %q", apperrors.ErrDuplicate, category.Name)
			}
		}
		st.seq.category++
		category.ID = st.seq.category
		st.categories[category.ID] = *category
		return nil
	})
}

func (r categoryRepository) FindCategoryByID(ctx context.Context, categoryID int64) (*domain.Category, error) {
	var found domain.Category
	err := r.run(func(st *state) error {
		c, ok := st.categories[categoryID]
		if !ok {
			return fmt.Errorf("%w: category %d", apperrors.ErrNotFound, categoryID)
		}
		found = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r categoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	result := []domain.Category{}
	err := r.run(func(st *state) error {
		for _, c := range st.categories {
			result = append(result, c)
		}
		return nil
	})
	slices.SortFunc(result, byCategoryID)
	return result, err
}

func (r categoryRepository) ListCategoriesByTransactionID(ctx context.Context, transactionID int64) ([]domain.Category, error) {
	result := []domain.Category{}
	err := r.run(func(st *state) error {
		for _, link := range st.links {
			if link.TransactionID != transactionID {
				continue
			}
			if c, ok := st.categories[link.CategoryID]; ok {
				result = append(result, c)
			}
		}
		return nil
	})
	slices.SortFunc(result, byCategoryID)
	return result, err
}

func (r categoryRepository) LinkCategory(ctx context.Context, link *domain.TransactionCategory) error {
	return r.run(func(st *state) error {
		if _, ok := st.transactions[link.TransactionID]; !ok {
			return fmt.Errorf("%w: transaction %d", apperrors.ErrNotFound, link.TransactionID)
		}
		if _, ok := st.categories[link.CategoryID]; !ok {
			return fmt.Errorf("%w: category %d", apperrors.ErrNotFound, link.CategoryID)
		}
		for _, existing := range st.links {
			if existing.TransactionID == link.TransactionID && existing.CategoryID == link.CategoryID {
				return fmt.Errorf("%w: transaction %d, category %d", apperrors.ErrAlreadyLinked, link.TransactionID, link.CategoryID)
			}
		}
		st.seq.link++
		link.ID = st.seq.link
		st.links[link.ID] = *link
		return nil
	})
}

func (r categoryRepository) ListTransactionsByCategoryID(ctx context.Context, categoryID int64, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	matched := []domain.Transaction{}
	err := r.run(func(st *state) error {
		for _, link := range st.links {
			if link.CategoryID != categoryID {
				continue
			}
			if txn, ok := st.transactions[link.TransactionID]; ok {
				matched = append(matched, txn)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paginate(matched, func(t domain.Transaction) cursorKey {
		return cursorKey{createdAt: t.CreatedAt, id: t.ID}
	}, true, limit, nextToken)
}

func (r categoryRepository) UnlinkCategory(ctx context.Context, transactionID, categoryID int64) error {
	return r.run(func(st *state) error {
		for id, link := range st.links {
			if link.TransactionID == transactionID && link.CategoryID == categoryID {
				delete(st.links, id)
				return nil
			}
		}
		return fmt.Errorf("%w: category %d is not linked to transaction %d", apperrors.ErrNotFound, categoryID, transactionID)
	})
}
