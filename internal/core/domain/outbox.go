package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery status of an outbox event.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusPublished  OutboxStatus = "PUBLISHED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusInvalid    OutboxStatus = "INVALID"
)

// CategoryLinkEventType requests that a category be attached to a transaction.
const CategoryLinkEventType = "transaction.category.link"

// CategoryLinkPayload is the body of a CategoryLinkEventType event.
type CategoryLinkPayload struct {
	TransactionID int64 `json:"transactionId"`
	CategoryID    int64 `json:"categoryId"`
}

// OutboxEvent is a side effect recorded by the ledger and delivered later by
// the dispatcher.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id"`
	EventType   string          `json:"eventType"`
	AggregateID int64           `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	Status      OutboxStatus    `json:"status"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"lastError,omitempty"`
	AvailableAt time.Time       `json:"availableAt"` // Not claimable before this instant
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewOutboxEvent builds a PENDING event with a JSON-encoded payload.
func NewOutboxEvent(eventType string, aggregateID int64, payload any, now time.Time) (*OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload for %s: %w", eventType, err)
	}
	return &OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     body,
		Status:      OutboxStatusPending,
		AvailableAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
