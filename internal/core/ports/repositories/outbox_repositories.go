package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	"github.com/google/uuid"
)

// OutboxRepositoryFacade stores and delivers outbox events
type OutboxRepositoryFacade interface {
	// EnqueueEvents stores PENDING events.
	EnqueueEvents(ctx context.Context, events []domain.OutboxEvent) error

	// ClaimEvents moves up to limit claimable events to PROCESSING and
	// increments their attempt counters. Claimable means PENDING, or FAILED with
	// attempts below maxAttempts, and available at or before now. Rows locked by
	// another claimer are skipped.
	ClaimEvents(ctx context.Context, now time.Time, limit int, maxAttempts int) ([]domain.OutboxEvent, error)

	MarkPublished(ctx context.Context, eventID uuid.UUID, now time.Time) error
	MarkFailed(ctx context.Context, eventID uuid.UUID, reason string, retryAt time.Time, now time.Time) error
	MarkInvalid(ctx context.Context, eventID uuid.UUID, reason string, now time.Time) error

	FindEventByID(ctx context.Context, eventID uuid.UUID) (*domain.OutboxEvent, error)
}
