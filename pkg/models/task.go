package models

import (
	"time"
)

// TaskType identifies a background task consumed by the worker.
type TaskType string

const (
	TaskTypePaymentEmail TaskType = "payment_email"
	TaskTypeFeedSync     TaskType = "feed_sync"
)

// Task is one queued background unit of work.
type Task struct {
	Type      TaskType      `json:"type"`
	Email     *PaymentEmail `json:"email,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// PaymentEmail carries the data for a best-effort purchase notification.
type PaymentEmail struct {
	To        string `json:"to"`
	Username  string `json:"username"`
	PlanName  string `json:"plan_name"`
	Credits   int    `json:"credits"`
	Unlimited bool   `json:"unlimited"`
	OrderID   string `json:"order_id"`
}
