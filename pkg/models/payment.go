package models

import (
	"time"
)

// Payment statuses
const (
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusRecorded  = "recorded"
)

// Payment is one capture attempt for a PayPal order. The order ID is unique
// so a replayed capture never grants credit twice.
type Payment struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	OrderID     string    `json:"order_id" db:"order_id"`
	PlanID      string    `json:"plan_id" db:"plan_id"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Status      string    `json:"status" db:"status"`
	RawPayload  string    `json:"-" db:"raw_payload"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Plan is a purchasable credit package or unlimited-access tier.
type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Credits    int    `json:"credits"`
	Unlimited  bool   `json:"unlimited"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Free       bool   `json:"free"`
}
