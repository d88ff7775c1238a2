package pgsql

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// maxLastErrorLength matches the last_error column width, in characters.
const maxLastErrorLength = 512

type PgxOutboxRepository struct {
	BaseRepository
}

func newPgxOutboxRepository(db querier) *PgxOutboxRepository {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.OutboxRepositoryFacade = (*PgxOutboxRepository)(nil)

const outboxColumns = `id, event_type, aggregate_id, payload, status, attempts, last_error, available_at, created_at, updated_at`

func scanOutboxEvent(row pgx.Row) (domain.OutboxEvent, error) {
	var (
		e         domain.OutboxEvent
		lastError *string
	)
	err := row.Scan(
		&e.ID,
		&e.EventType,
		&e.AggregateID,
		&e.Payload,
		&e.Status,
		&e.Attempts,
		&lastError,
		&e.AvailableAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	e.LastError = derefString(lastError)
	return e, err
}

// truncateReason keeps at most maxLastErrorLength runes and never splits one.
// Invalid UTF-8 would be rejected by the column, so it is replaced first.
func truncateReason(reason string) string {
	reason = strings.ToValidUTF8(reason, "\uFFFD")
	if utf8.RuneCountInString(reason) <= maxLastErrorLength {
		return reason
	}
	runes := 0
	for i := range reason {
		if runes == maxLastErrorLength {
			return reason[:i]
		}
		runes++
	}
	return reason
}

func (r *PgxOutboxRepository) EnqueueEvents(ctx context.Context, events []domain.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	query := `
		INSERT INTO outbox_events (id, event_type, aggregate_id, payload, status, attempts, available_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(query, e.ID, e.EventType, e.AggregateID, e.Payload, e.Status, e.Attempts, e.AvailableAt, e.CreatedAt, e.UpdatedAt)
	}
	br := r.db.SendBatch(ctx, batch)
	// Close the batch results to surface errors from each insert
	if err := br.Close(); err != nil {
		return mapPgError(err, "failed to enqueue outbox events")
	}
	return nil
}

// ClaimEvents marks a batch of claimable events PROCESSING in one statement.
// SKIP LOCKED lets several dispatchers poll the same table.
func (r *PgxOutboxRepository) ClaimEvents(ctx context.Context, now time.Time, limit int, maxAttempts int) ([]domain.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, attempts = attempts + 1, updated_at = $2
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE (status = $3 OR (status = $4 AND attempts < $5)) AND available_at <= $2
			ORDER BY created_at ASC
			LIMIT $6
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns + `;
	`
	rows, err := r.db.Query(ctx, query,
		domain.OutboxStatusProcessing,
		now,
		domain.OutboxStatusPending,
		domain.OutboxStatusFailed,
		maxAttempts,
		limit,
	)
	if err != nil {
		return nil, mapPgError(err, "failed to claim outbox events")
	}
	defer rows.Close()

	var claimed []domain.OutboxEvent
	for rows.Next() {
		e, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan outbox event")
		}
		claimed = append(claimed, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating claimed outbox events")
	}
	// RETURNING carries no order guarantee
	slices.SortFunc(claimed, func(a, b domain.OutboxEvent) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return claimed, nil
}

func (r *PgxOutboxRepository) updateStatus(ctx context.Context, eventID uuid.UUID, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, append([]any{eventID}, args...)...)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to update outbox event %s", eventID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: outbox event %s", apperrors.ErrNotFound, eventID)
	}
	return nil
}

func (r *PgxOutboxRepository) MarkPublished(ctx context.Context, eventID uuid.UUID, now time.Time) error {
	return r.updateStatus(ctx, eventID,
		`UPDATE outbox_events SET status = $2, last_error = NULL, updated_at = $3 WHERE id = $1;`,
		domain.OutboxStatusPublished, now)
}

func (r *PgxOutboxRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, reason string, retryAt time.Time, now time.Time) error {
	return r.updateStatus(ctx, eventID,
		`UPDATE outbox_events SET status = $2, last_error = $3, available_at = $4, updated_at = $5 WHERE id = $1;`,
		domain.OutboxStatusFailed, truncateReason(reason), retryAt, now)
}

func (r *PgxOutboxRepository) MarkInvalid(ctx context.Context, eventID uuid.UUID, reason string, now time.Time) error {
	return r.updateStatus(ctx, eventID,
		`UPDATE outbox_events SET status = $2, last_error = $3, updated_at = $4 WHERE id = $1;`,
		domain.OutboxStatusInvalid, truncateReason(reason), now)
}

func (r *PgxOutboxRepository) FindEventByID(ctx context.Context, eventID uuid.UUID) (*domain.OutboxEvent, error) {
	query := `SELECT ` + outboxColumns + ` FROM outbox_events WHERE id = $1;`
	e, err := scanOutboxEvent(r.db.QueryRow(ctx, query, eventID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("outbox event %s", eventID))
	}
	return &e, nil
}
