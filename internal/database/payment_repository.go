package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/casesurf/casesurf/pkg/models"
)

var (
	// ErrPaymentNotFound is returned when no payment matches the order
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrDuplicateOrder is returned when a capture for the same
	// provider order ID was already recorded
	ErrDuplicateOrder = errors.New("order already captured")
)

// PaymentRepository provides payment record operations
type PaymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreatePayment records a captured payment. The unique constraint on
// order_id makes the capture idempotent: a replay surfaces as
// ErrDuplicateOrder and must not grant credits twice.
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	query := `
		INSERT INTO payments (id, user_id, order_id, plan_id, amount_cents, currency, status, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		payment.ID, payment.UserID, payment.OrderID, payment.PlanID,
		payment.AmountCents, payment.Currency, payment.Status, payment.RawPayload,
	).Scan(&payment.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetPaymentByOrderID retrieves a payment by provider order ID
func (r *PaymentRepository) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment

	query := `
		SELECT id, user_id, order_id, plan_id, amount_cents, currency, status, raw_payload, created_at
		FROM payments
		WHERE order_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, orderID).Scan(
		&payment.ID, &payment.UserID, &payment.OrderID, &payment.PlanID,
		&payment.AmountCents, &payment.Currency, &payment.Status,
		&payment.RawPayload, &payment.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// ListPaymentsByUser retrieves a user's payment history, newest first
func (r *PaymentRepository) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	query := `
		SELECT id, user_id, order_id, plan_id, amount_cents, currency, status, raw_payload, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		var payment models.Payment
		err := rows.Scan(
			&payment.ID, &payment.UserID, &payment.OrderID, &payment.PlanID,
			&payment.AmountCents, &payment.Currency, &payment.Status,
			&payment.RawPayload, &payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &payment)
	}

	return payments, rows.Err()
}
