package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket is the purchase receipt. It is a historical fact: immutable once
// created, never cancelled, referencing buyer and tour by ID without owning
// them. Total is the price at time of purchase times quantity, so later price
// edits never rewrite history.
type Ticket struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	TourID    int64           `json:"tourId"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TicketView is the denormalized admin-history row: buyer name and cedula plus
// the tour title joined in for direct display.
type TicketView struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Cedula       string          `json:"cedula"`
	Tour         string          `json:"tour"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
	DatePurchase time.Time       `json:"datePurchase"`
}

// TicketFilter narrows a history listing. Zero values mean "no filter"; when
// both are set, both must match.
type TicketFilter struct {
	TicketID int64
	Cedula   string
}
