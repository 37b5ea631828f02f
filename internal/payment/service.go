package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/paypal"
	"github.com/casesurf/casesurf/pkg/models"
)

var (
	// ErrPaymentNotCompleted is returned when the provider reports a
	// capture status other than COMPLETED
	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrAmountMismatch is returned when the captured amount does not
	// match the plan price
	ErrAmountMismatch = errors.New("captured amount does not match plan price")
)

// OrderCapturer captures approved orders at the payment provider
type OrderCapturer interface {
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResponse, error)
}

// UserStore is the subset of user persistence needed to apply plans
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	AddCredits(ctx context.Context, id string, credits int) error
	SetPro(ctx context.Context, id string) error
}

// PaymentStore records captured payments
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error)
}

// TaskPublisher queues background work
type TaskPublisher interface {
	PublishTask(ctx context.Context, task *models.Task) error
}

// Notifier pushes profile changes to open SSE streams
type Notifier interface {
	Publish(event models.ProfileEvent)
}

// Service verifies order captures server-side and reconciles the
// credit grant. The client only ever supplies an order ID; what the
// order is worth comes from the plan catalog, never from the request.
type Service struct {
	provider OrderCapturer
	users    UserStore
	payments PaymentStore
	tasks    TaskPublisher
	notifier Notifier
	logger   *logging.Logger
}

// NewService creates a new payment service. tasks and notifier may be
// nil when those integrations are disabled.
func NewService(provider OrderCapturer, users UserStore, payments PaymentStore, tasks TaskPublisher, notifier Notifier, logger *logging.Logger) *Service {
	return &Service{
		provider: provider,
		users:    users,
		payments: payments,
		tasks:    tasks,
		notifier: notifier,
		logger:   logger,
	}
}

// CaptureAndApply captures the order, validates it against the plan,
// records the payment and applies the grant. The unique order record
// makes a replayed capture a no-op for the balance.
func (s *Service) CaptureAndApply(ctx context.Context, userID, orderID, planID string) (*models.Payment, error) {
	plan, err := PlanByID(planID)
	if err != nil {
		return nil, err
	}
	if plan.Free {
		return nil, ErrFreePlan
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	capture, err := s.provider.CaptureOrder(ctx, orderID)
	if err != nil {
		metrics.RecordPaymentCapture(planID, "error", 0)
		s.logger.WithOrderID(orderID).WithError(err).Error("order capture failed")
		return nil, err
	}

	status := capture.CaptureStatus()
	s.logger.LogPaymentEvent(userID, orderID, planID, status)

	if status != models.PaymentStatusCompleted {
		metrics.RecordPaymentCapture(planID, status, 0)
		return nil, fmt.Errorf("%w: provider status %s", ErrPaymentNotCompleted, status)
	}

	amountCents, currency := capture.CapturedAmount()
	if amountCents != plan.PriceCents || currency != plan.Currency {
		metrics.RecordPaymentCapture(planID, "amount_mismatch", amountCents)
		s.logger.WithOrderID(orderID).Error(fmt.Sprintf(
			"captured %d %s, expected %d %s", amountCents, currency, plan.PriceCents, plan.Currency))
		return nil, ErrAmountMismatch
	}

	payment := &models.Payment{
		UserID:      userID,
		OrderID:     orderID,
		PlanID:      planID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      models.PaymentStatusRecorded,
		RawPayload:  string(capture.Raw),
	}

	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, database.ErrDuplicateOrder) {
			// Grant already applied by the first capture
			metrics.RecordPaymentCapture(planID, "duplicate", 0)
			return nil, err
		}
		return nil, err
	}

	if err := s.applyPlan(ctx, userID, plan); err != nil {
		// The payment row exists, so a retry will hit the duplicate
		// path; surface the error for manual reconciliation
		s.logger.WithOrderID(orderID).WithError(err).Error("failed to apply plan after capture")
		return nil, err
	}

	metrics.RecordPaymentCapture(planID, status, amountCents)

	s.notifyProfile(ctx, userID)
	s.queueReceipt(ctx, user, plan, orderID)

	return payment, nil
}

func (s *Service) applyPlan(ctx context.Context, userID string, plan *models.Plan) error {
	if plan.Unlimited {
		return s.users.SetPro(ctx, userID)
	}
	return s.users.AddCredits(ctx, userID, plan.Credits)
}

func (s *Service) notifyProfile(ctx context.Context, userID string) {
	if s.notifier == nil {
		return
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return
	}

	s.notifier.Publish(models.ProfileEvent{
		UserID: user.ID,
		Credit: user.Credit,
		IsPro:  user.IsPro,
	})
}

func (s *Service) queueReceipt(ctx context.Context, user *models.User, plan *models.Plan, orderID string) {
	if s.tasks == nil || user.Email == "" {
		return
	}

	task := &models.Task{
		Type: models.TaskTypePaymentEmail,
		Email: &models.PaymentEmail{
			To:        user.Email,
			Username:  user.Username,
			PlanName:  plan.Name,
			Credits:   plan.Credits,
			Unlimited: plan.Unlimited,
			OrderID:   orderID,
		},
	}

	// Best effort, the grant is already applied
	if err := s.tasks.PublishTask(ctx, task); err != nil {
		s.logger.WithOrderID(orderID).WithError(err).Warn("failed to queue receipt email")
		return
	}
	metrics.RecordTaskPublished(string(models.TaskTypePaymentEmail))
}

// History returns a user's payment records
func (s *Service) History(ctx context.Context, userID string) ([]*models.Payment, error) {
	return s.payments.ListPaymentsByUser(ctx, userID)
}
