package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// works either on the pool or inside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db querier
}

const (
	pgNumericOutOfRange    = "22003"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapPgError converts driver errors into application error kinds. Missing rows
// and dangling references become ErrNotFound, unique violations ErrDuplicate,
// numeric overflow ErrValidation, and everything else a retryable transient
// failure.
func mapPgError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, msg)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, msg)
	case pgNumericOutOfRange:
		return fmt.Errorf("%w: %s (value out of range)", apperrors.ErrValidation, msg)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s (referenced row missing)", apperrors.ErrNotFound, msg)
	case pgSerializationFailure, pgDeadlockDetected:
		return apperrors.NewTransientError(msg+" (lock conflict)", err)
	}
	return apperrors.NewTransientError(msg, err)
}

// whereBuilder collects WHERE clauses and their positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

// arg registers v and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// addCursor appends a (created_at, id) tuple comparison for the page token.
func (w *whereBuilder) addCursor(createdAtCol, idCol, op string, nextToken *string) error {
	if nextToken == nil || *nextToken == "" {
		return nil
	}
	createdAt, id, err := pagination.DecodeToken(*nextToken)
	if err != nil {
		return fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
	}
	w.add(fmt.Sprintf("(%s, %s) %s (%s, %s)", createdAtCol, idCol, op, w.arg(createdAt), w.arg(id)))
	return nil
}

// trimPage drops the look-ahead row fetched with limit+1 and builds the token
// pointing at the last row kept.
func trimPage[T any](items []T, limit int, key func(T) (time.Time, int64)) ([]T, *string) {
	if len(items) <= limit {
		return items, nil
	}
	createdAt, id := key(items[limit-1])
	token := pagination.EncodeToken(createdAt, id)
	return items[:limit], &token
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
