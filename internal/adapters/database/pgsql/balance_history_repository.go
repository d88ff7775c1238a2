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

type PgxBalanceHistoryRepository struct {
	BaseRepository
}

func newPgxBalanceHistoryRepository(db querier) *PgxBalanceHistoryRepository {
	return &PgxBalanceHistoryRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.BalanceHistoryRepositoryFacade = (*PgxBalanceHistoryRepository)(nil)

const balanceHistoryColumns = `balance_history_id, account_id, balance, created_at`

func scanBalanceHistory(row pgx.Row) (domain.BalanceHistory, error) {
	var h domain.BalanceHistory
	err := row.Scan(&h.ID, &h.AccountID, &h.Balance, &h.CreatedAt)
	return h, err
}

// AppendBalanceHistory inserts one journal entry and assigns its ID.
func (r *PgxBalanceHistoryRepository) AppendBalanceHistory(ctx context.Context, entry *domain.BalanceHistory) error {
	query := `
		INSERT INTO balance_history (account_id, balance, created_at)
		VALUES ($1, $2, $3)
		RETURNING balance_history_id;
	`
	if err := r.db.QueryRow(ctx, query, entry.AccountID, entry.Balance, entry.CreatedAt).Scan(&entry.ID); err != nil {
		return mapPgError(err, fmt.Sprintf("failed to append balance history for account %d", entry.AccountID))
	}
	return nil
}

// ListBalanceHistory returns journal entries oldest first, suited for charts.
func (r *PgxBalanceHistoryRepository) ListBalanceHistory(ctx context.Context, accountID int64, window domain.TimeRange, limit int, nextToken *string) ([]domain.BalanceHistory, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	w := &whereBuilder{}
	w.add("account_id = " + w.arg(accountID))
	if window.From != nil {
		w.add("created_at >= " + w.arg(*window.From))
	}
	if window.To != nil {
		w.add("created_at <= " + w.arg(*window.To))
	}
	if err := w.addCursor("created_at", "balance_history_id", ">", nextToken); err != nil {
		return nil, nil, err
	}

	query := `SELECT ` + balanceHistoryColumns + ` FROM balance_history` + w.String() +
		` ORDER BY created_at ASC, balance_history_id ASC LIMIT ` + w.arg(limit+1) + `;`

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapPgError(err, fmt.Sprintf("failed to query balance history for account %d", accountID))
	}
	defer rows.Close()

	entries := make([]domain.BalanceHistory, 0, limit+1)
	for rows.Next() {
		entry, err := scanBalanceHistory(rows)
		if err != nil {
			return nil, nil, mapPgError(err, "failed to scan balance history row")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, "error iterating balance history rows")
	}

	page, token := trimPage(entries, limit, func(h domain.BalanceHistory) (time.Time, int64) {
		return h.CreatedAt, h.ID
	})
	return page, token, nil
}

// FindLatestBalanceHistory returns the newest journal entry of the account.
func (r *PgxBalanceHistoryRepository) FindLatestBalanceHistory(ctx context.Context, accountID int64) (*domain.BalanceHistory, error) {
	query := `
		SELECT ` + balanceHistoryColumns + `
		FROM balance_history
		WHERE account_id = $1
		ORDER BY created_at DESC, balance_history_id DESC
		LIMIT 1;
	`
	entry, err := scanBalanceHistory(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("no balance history for account %d", accountID))
	}
	return &entry, nil
}
