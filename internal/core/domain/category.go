package domain

import "time"

// Category is a label that can be attached to transactions.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// TransactionCategory links one transaction to one category.
type TransactionCategory struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transactionId"`
	CategoryID    int64     `json:"categoryId"`
	CreatedAt     time.Time `json:"createdAt"`
}
