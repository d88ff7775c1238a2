package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
)

type outboxRepository struct {
	run runner
}

var _ portsrepo.OutboxRepositoryFacade = outboxRepository{}

func (r outboxRepository) EnqueueEvents(ctx context.Context, events []domain.OutboxEvent) error {
	return r.run(func(st *state) error {
		for _, e := range events {
			if _, exists := st.outbox[e.ID]; exists {
				return fmt.Errorf("%w: outbox event %s", apperrors.ErrDuplicate, e.ID)
			}
		}
		for _, e := range events {
			st.outbox[e.ID] = e
		}
		return nil
	})
}

func (r outboxRepository) ClaimEvents(ctx context.Context, now time.Time, limit int, maxAttempts int) ([]domain.OutboxEvent, error) {
	var claimed []domain.OutboxEvent
	err := r.run(func(st *state) error {
		var candidates []domain.OutboxEvent
		for _, e := range st.outbox {
			claimable := e.Status == domain.OutboxStatusPending ||
				(e.Status == domain.OutboxStatusFailed && e.Attempts < maxAttempts)
			if claimable && !e.AvailableAt.After(now) {
				candidates = append(candidates, e)
			}
		}
		slices.SortFunc(candidates, func(a, b domain.OutboxEvent) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return bytes.Compare(a.ID[:], b.ID[:])
		})
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		for _, e := range candidates {
			e.Status = domain.OutboxStatusProcessing
			e.Attempts++
			e.UpdatedAt = now
			st.outbox[e.ID] = e
			claimed = append(claimed, e)
		}
		return nil
	})
	return claimed, err
}

func (r outboxRepository) mark(eventID uuid.UUID, update func(e *domain.OutboxEvent)) error {
	return r.run(func(st *state) error {
		e, ok := st.outbox[eventID]
		if !ok {
			return fmt.Errorf("%w: outbox event %s", apperrors.ErrNotFound, eventID)
		}
		update(&e)
		st.outbox[eventID] = e
		return nil
	})
}

func (r outboxRepository) MarkPublished(ctx context.Context, eventID uuid.UUID, now time.Time) error {
	return r.mark(eventID, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusPublished
		e.LastError = ""
		e.UpdatedAt = now
	})
}

func (r outboxRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, reason string, retryAt time.Time, now time.Time) error {
	return r.mark(eventID, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusFailed
		e.LastError = reason
		e.AvailableAt = retryAt
		e.UpdatedAt = now
	})
}

func (r outboxRepository) MarkInvalid(ctx context.Context, eventID uuid.UUID, reason string, now time.Time) error {
	return r.mark(eventID, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusInvalid
		e.LastError = reason
		e.UpdatedAt = now
	})
}

func (r outboxRepository) FindEventByID(ctx context.Context, eventID uuid.UUID) (*domain.OutboxEvent, error) {
	var found domain.OutboxEvent
	err := r.run(func(st *state) error {
		e, ok := st.outbox[eventID]
		if !ok {
			return fmt.Errorf("%w: outbox event %s", apperrors.ErrNotFound, eventID)
		}
		found = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}
