package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
)

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(db querier) *PgxCategoryRepository {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func (r *PgxCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `INSERT INTO categories (name, icon) VALUES ($1, $2) RETURNING category_id;`
	if err := r.db.QueryRow(ctx, query, category.Name, nullIfEmpty(category.Icon)).Scan(&category.ID); err != nil {
		return mapPgError(err, fmt.Sprintf("category %q", category.Name))
	}
	return nil
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID int64) (*domain.Category, error) {
	var (
		c    domain.Category
		icon *string
	)
	query := `SELECT category_id, name, icon FROM categories WHERE category_id = $1;`
	if err := r.db.QueryRow(ctx, query, categoryID).Scan(&c.ID, &c.Name, &icon); err != nil {
		return nil, mapPgError(err, fmt.Sprintf("category %d", categoryID))
	}
	c.Icon = derefString(icon)
	return &c, nil
}

func (r *PgxCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return r.queryCategories(ctx, `SELECT category_id, name, icon FROM categories ORDER BY category_id;`)
}

func (r *PgxCategoryRepository) ListCategoriesByTransactionID(ctx context.Context, transactionID int64) ([]domain.Category, error) {
	query := `
		SELECT c.category_id, c.name, c.icon
		FROM transaction_categories tc
		JOIN categories c ON c.category_id = tc.category_id
		WHERE tc.transaction_id = $1
		ORDER BY c.category_id;
	`
	return r.queryCategories(ctx, query, transactionID)
}

func (r *PgxCategoryRepository) queryCategories(ctx context.Context, query string, args ...any) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query categories")
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var (
			c    domain.Category
			icon *string
		)
		if err := rows.Scan(&c.ID, &c.Name, &icon); err != nil {
			return nil, mapPgError(err, "failed to scan category row")
		}
		c.Icon = derefString(icon)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating category rows")
	}
	return result, nil
}

// LinkCategory inserts the link. The pair constraint maps to ErrAlreadyLinked
// and missing transaction or category rows to ErrNotFound.
func (r *PgxCategoryRepository) LinkCategory(ctx context.Context, link *domain.TransactionCategory) error {
	query := `
		INSERT INTO transaction_categories (transaction_id, category_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING transaction_category_id;
	`
	err := r.db.QueryRow(ctx, query, link.TransactionID, link.CategoryID, link.CreatedAt).Scan(&link.ID)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: transaction %d, category %d", apperrors.ErrAlreadyLinked, link.TransactionID, link.CategoryID)
		}
		return mapPgError(err, fmt.Sprintf("failed to link category %d to transaction %d", link.CategoryID, link.TransactionID))
	}
	return nil
}

func (r *PgxCategoryRepository) ListTransactionsByCategoryID(ctx context.Context, categoryID int64, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	w := &whereBuilder{}
	w.add("transaction_id IN (SELECT transaction_id FROM transaction_categories WHERE category_id = " + w.arg(categoryID) + ")")
	if err := w.addCursor("created_at", "transaction_id", "<", nextToken); err != nil {
		return nil, nil, err
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions` + w.String() +
		` ORDER BY created_at DESC, transaction_id DESC LIMIT ` + w.arg(limit+1) + `;`

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapPgError(err, fmt.Sprintf("failed to query transactions for category %d", categoryID))
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit+1)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, mapPgError(err, fmt.Sprintf("failed to scan transaction row for category %d", categoryID))
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, fmt.Sprintf("error iterating transaction rows for category %d", categoryID))
	}

	page, token := trimPage(transactions, limit, func(t domain.Transaction) (time.Time, int64) {
		return t.CreatedAt, t.ID
	})
	return page, token, nil
}

func (r *PgxCategoryRepository) UnlinkCategory(ctx context.Context, transactionID, categoryID int64) error {
	query := `DELETE FROM transaction_categories WHERE transaction_id = $1 AND category_id = $2;`
	tag, err := r.db.Exec(ctx, query, transactionID, categoryID)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to unlink category %d from transaction %d", categoryID, transactionID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category %d is not linked to transaction %d", apperrors.ErrNotFound, categoryID, transactionID)
	}
	return nil
}
