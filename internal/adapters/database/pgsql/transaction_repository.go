package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(db querier) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, account_id, transaction_type, amount, currency, message, from_account_number, to_account_number, created_at`

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		t                       domain.Transaction
		message, fromAcc, toAcc *string
	)
	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&message,
		&fromAcc,
		&toAcc,
		&t.CreatedAt,
	)
	t.Message = derefString(message)
	t.FromAccountNumber = derefString(fromAcc)
	t.ToAccountNumber = derefString(toAcc)
	return t, err
}

// SaveTransaction appends a transaction row and assigns its ID.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, transaction_type, amount, currency, message, from_account_number, to_account_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING transaction_id;
	`
	err := r.db.QueryRow(ctx, query,
		txn.AccountID,
		txn.Type,
		txn.Amount,
		txn.Currency,
		nullIfEmpty(txn.Message),
		nullIfEmpty(txn.FromAccountNumber),
		nullIfEmpty(txn.ToAccountNumber),
		txn.CreatedAt,
	).Scan(&txn.ID)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to insert transaction for account %d", txn.AccountID))
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("transaction %d", transactionID))
	}
	return &txn, nil
}

// ListTransactionsByAccountID retrieves a page of transactions, newest first.
// Ordering is (created_at DESC, transaction_id DESC) and the token points at
// the last row of the previous page.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID int64, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	w := &whereBuilder{}
	w.add("account_id = " + w.arg(accountID))
	if filter.Type != nil {
		w.add("transaction_type = " + w.arg(*filter.Type))
	}
	if filter.From != nil {
		w.add("created_at >= " + w.arg(*filter.From))
	}
	if filter.To != nil {
		w.add("created_at <= " + w.arg(*filter.To))
	}
	if err := w.addCursor("created_at", "transaction_id", "<", nextToken); err != nil {
		return nil, nil, err
	}

	// We fetch one extra item to determine if there's a next page.
	query := `SELECT ` + transactionColumns + ` FROM transactions` + w.String() +
		` ORDER BY created_at DESC, transaction_id DESC LIMIT ` + w.arg(limit+1) + `;`

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapPgError(err, fmt.Sprintf("failed to query transactions for account %d", accountID))
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit+1)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, mapPgError(err, fmt.Sprintf("failed to scan transaction row for account %d", accountID))
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, fmt.Sprintf("error iterating transaction rows for account %d", accountID))
	}

	page, token := trimPage(transactions, limit, func(t domain.Transaction) (time.Time, int64) {
		return t.CreatedAt, t.ID
	})
	return page, token, nil
}

// TotalsByAccountID sums credit and debit amounts over the account's transactions.
func (r *PgxTransactionRepository) TotalsByAccountID(ctx context.Context, accountID int64) (domain.TransactionTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_type IN ('INCOME', 'TRANSFER_IN')), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type IN ('OUTCOME', 'TRANSFER_OUT')), 0),
			COUNT(*)
		FROM transactions
		WHERE account_id = $1;
	`
	var (
		totals domain.TransactionTotals
		count  int64
	)
	err := r.db.QueryRow(ctx, query, accountID).Scan(&totals.Credits, &totals.Debits, &count)
	if err != nil {
		return domain.TransactionTotals{}, mapPgError(err, fmt.Sprintf("failed to sum transactions for account %d", accountID))
	}
	totals.Count = int(count)
	return totals, nil
}
