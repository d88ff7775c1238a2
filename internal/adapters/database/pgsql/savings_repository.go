package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxSavingsRepository struct {
	BaseRepository
}

func newPgxSavingsRepository(db querier) *PgxSavingsRepository {
	return &PgxSavingsRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.SavingsRepositoryFacade = (*PgxSavingsRepository)(nil)

const savingsColumns = `savings_account_id, owner_id, name, balance, currency, interest_rate, status, version, created_at, updated_at`

func scanSavings(row pgx.Row) (domain.SavingsAccount, error) {
	var s domain.SavingsAccount
	err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.Balance,
		&s.Currency,
		&s.InterestRate,
		&s.Status,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// savingsWriteError turns the (owner_id, name) unique violation into ErrDuplicateName.
func savingsWriteError(err error, name, msg string) error {
	if pgErrorCode(err) == pgUniqueViolation {
		return fmt.Errorf("%w: savings account %q", apperrors.ErrDuplicateName, name)
	}
	return mapPgError(err, msg)
}

func (r *PgxSavingsRepository) CreateSavingsAccount(ctx context.Context, savings *domain.SavingsAccount) error {
	query := `
		INSERT INTO savings_accounts (owner_id, name, balance, currency, interest_rate, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $8)
		RETURNING savings_account_id, version;
	`
	err := r.db.QueryRow(ctx, query,
		savings.OwnerID,
		savings.Name,
		savings.Balance,
		savings.Currency,
		savings.InterestRate,
		savings.Status,
		savings.CreatedAt,
		savings.UpdatedAt,
	).Scan(&savings.ID, &savings.Version)
	if err != nil {
		return savingsWriteError(err, savings.Name, "failed to insert savings account")
	}
	return nil
}

func (r *PgxSavingsRepository) FindSavingsAccountByID(ctx context.Context, savingsID int64) (*domain.SavingsAccount, error) {
	query := `SELECT ` + savingsColumns + ` FROM savings_accounts WHERE savings_account_id = $1;`
	savings, err := scanSavings(r.db.QueryRow(ctx, query, savingsID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("savings account %d", savingsID))
	}
	return &savings, nil
}

func (r *PgxSavingsRepository) FindSavingsAccountByIDForUpdate(ctx context.Context, savingsID int64) (*domain.SavingsAccount, error) {
	query := `SELECT ` + savingsColumns + ` FROM savings_accounts WHERE savings_account_id = $1 FOR UPDATE;`
	savings, err := scanSavings(r.db.QueryRow(ctx, query, savingsID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("savings account %d", savingsID))
	}
	return &savings, nil
}

func (r *PgxSavingsRepository) ListSavingsAccountsByOwner(ctx context.Context, ownerID int64, filter domain.SavingsFilter, limit int, nextToken *string) ([]domain.SavingsAccount, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	w := &whereBuilder{}
	w.add("owner_id = " + w.arg(ownerID))
	if filter.Status != nil {
		w.add("status = " + w.arg(*filter.Status))
	}
	if filter.MinBalance != nil {
		w.add("balance >= " + w.arg(*filter.MinBalance))
	}
	if err := w.addCursor("created_at", "savings_account_id", ">", nextToken); err != nil {
		return nil, nil, err
	}
	query := `SELECT ` + savingsColumns + ` FROM savings_accounts` + w.String() +
		` ORDER BY created_at, savings_account_id LIMIT ` + w.arg(limit+1) + `;`

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapPgError(err, fmt.Sprintf("failed to list savings accounts for owner %d", ownerID))
	}
	defer rows.Close()

	result := make([]domain.SavingsAccount, 0, limit+1)
	for rows.Next() {
		savings, err := scanSavings(rows)
		if err != nil {
			return nil, nil, mapPgError(err, "failed to scan savings account row")
		}
		result = append(result, savings)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, "error iterating savings account rows")
	}

	page, token := trimPage(result, limit, func(s domain.SavingsAccount) (time.Time, int64) {
		return s.CreatedAt, s.ID
	})
	return page, token, nil
}

func (r *PgxSavingsRepository) ExistsSavingsAccountByOwnerAndName(ctx context.Context, ownerID int64, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM savings_accounts WHERE owner_id = $1 AND name = $2);`
	if err := r.db.QueryRow(ctx, query, ownerID, name).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check savings account name")
	}
	return exists, nil
}

func (r *PgxSavingsRepository) UpdateSavingsAccount(ctx context.Context, savings *domain.SavingsAccount) error {
	query := `
		UPDATE savings_accounts
		SET name = $2, balance = $3, interest_rate = $4, status = $5, updated_at = $6, version = version + 1
		WHERE savings_account_id = $1 AND version = $7
		RETURNING version;
	`
	var newVersion int64
	err := r.db.QueryRow(ctx, query,
		savings.ID,
		savings.Name,
		savings.Balance,
		savings.InterestRate,
		savings.Status,
		savings.UpdatedAt,
		savings.Version,
	).Scan(&newVersion)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return savingsWriteError(err, savings.Name, fmt.Sprintf("failed to update savings account %d", savings.ID))
		}
		if _, findErr := r.FindSavingsAccountByID(ctx, savings.ID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: savings account %d version %d", apperrors.ErrConcurrentUpdate, savings.ID, savings.Version)
	}
	savings.Version = newVersion
	return nil
}
