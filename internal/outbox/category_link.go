package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
)

// NewCategoryLinkHandler links the transaction and category named in a
// CategoryLinkEventType event. A pair that is already linked counts as
// delivered.
func NewCategoryLinkHandler(categories portssvc.CategoryWriterSvc) EventHandler {
	return func(ctx context.Context, event *domain.OutboxEvent) error {
		var payload domain.CategoryLinkPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("%w: malformed category link payload: %v", apperrors.ErrValidation, err)
		}
		if payload.TransactionID <= 0 || payload.CategoryID <= 0 {
			return fmt.Errorf("%w: category link payload needs positive ids", apperrors.ErrValidation)
		}

		_, err := categories.LinkCategory(ctx, payload.TransactionID, payload.CategoryID)
		if errors.Is(err, apperrors.ErrAlreadyLinked) {
			return nil
		}
		return err
	}
}

// RegisterLedgerHandlers registers every event type the ledger emits.
func RegisterLedgerHandlers(registry *HandlerRegistry, categories portssvc.CategoryWriterSvc) error {
	return registry.Register(domain.CategoryLinkEventType, NewCategoryLinkHandler(categories))
}
