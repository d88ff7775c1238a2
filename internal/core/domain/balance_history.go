package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceHistory is one append-only journal entry holding the balance that
// resulted from a posting.
type BalanceHistory struct {
	ID        int64           `json:"id"` // Monotonic; breaks ties on CreatedAt
	AccountID int64           `json:"accountId"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}
