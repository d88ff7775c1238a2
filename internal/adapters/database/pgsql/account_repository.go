package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(db querier) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, owner_id, account_number, balance, opening_balance, currency, account_type, status, version, created_at`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.AccountNumber,
		&a.Balance,
		&a.OpeningBalance,
		&a.Currency,
		&a.Type,
		&a.Status,
		&a.Version,
		&a.CreatedAt,
	)
	return a, err
}

// CreateAccount inserts a new account. The opening balance is the balance at creation.
func (r *PgxAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.Status == "" {
		account.Status = domain.AccountStatusActive
	}
	query := `
		INSERT INTO accounts (owner_id, account_number, balance, opening_balance, currency, account_type, status, version, created_at)
		VALUES ($1, $2, $3, $3, $4, $5, $6, 1, $7)
		RETURNING account_id, version, opening_balance;
	`
	err := r.db.QueryRow(ctx, query,
		account.OwnerID,
		account.AccountNumber,
		account.Balance,
		account.Currency,
		account.Type,
		account.Status,
		account.CreatedAt,
	).Scan(&account.ID, &account.Version, &account.OpeningBalance)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to save account %s", account.AccountNumber))
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("account %d", accountID))
	}
	return &account, nil
}

// FindCurrentAccountByOwner returns the owner's oldest CURRENT account,
// active ones first.
func (r *PgxAccountRepository) FindCurrentAccountByOwner(ctx context.Context, ownerID int64) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = $1 AND account_type = $2
		ORDER BY (status = $3) DESC, created_at ASC, account_id ASC
		LIMIT 1;
	`
	account, err := scanAccount(r.db.QueryRow(ctx, query, ownerID, domain.AccountTypeCurrent, domain.AccountStatusActive))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("current account for owner %d", ownerID))
	}
	return &account, nil
}

// UpdateAccount writes balance and status guarded by the version column.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2, status = $3, version = version + 1
		WHERE account_id = $1 AND version = $4
		RETURNING version;
	`
	var newVersion int64
	err := r.db.QueryRow(ctx, query, account.ID, account.Balance, account.Status, account.Version).Scan(&newVersion)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return mapPgError(err, fmt.Sprintf("failed to update account %d", account.ID))
		}
		// No row matched: either the account is gone or the version moved on.
		if _, findErr := r.FindAccountByID(ctx, account.ID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: account %d version %d", apperrors.ErrConcurrentUpdate, account.ID, account.Version)
	}
	account.Version = newVersion
	return nil
}

// FindAccountsByIDsForUpdate selects accounts and locks them for update.
// Rows are locked in ascending ID order so concurrent transfers cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error) {
	accounts := make(map[int64]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return accounts, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := r.db.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, mapPgError(err, "failed to lock accounts for update")
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan locked account")
		}
		accounts[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating locked accounts")
	}
	return accounts, nil
}
