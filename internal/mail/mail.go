package mail

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/casesurf/casesurf/internal/config"
	"github.com/casesurf/casesurf/pkg/models"
)

// Mailer sends transactional email through SendGrid
type Mailer struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewMailer creates a new mailer. Returns nil when no API key is
// configured; callers treat a nil mailer as email disabled.
func NewMailer(cfg config.MailConfig) *Mailer {
	if cfg.SendGridAPIKey == "" {
		return nil
	}

	return &Mailer{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName: cfg.FromName,
		fromAddr: cfg.FromEmail,
	}
}

// SendPaymentReceipt emails the purchase confirmation after a capture
// has been verified and the plan applied
func (m *Mailer) SendPaymentReceipt(email *models.PaymentEmail) error {
	subject := fmt.Sprintf("Your %s plan is active", email.PlanName)

	var grant string
	if email.Unlimited {
		grant = "You now have unlimited script improvements."
	} else {
		grant = fmt.Sprintf("%d script improvement credits were added to your account.", email.Credits)
	}

	body := fmt.Sprintf(`Hi %s,

Thanks for your purchase. %s

Plan: %s
Order reference: %s

Happy surfing,
The CaseSurf team`,
		email.Username, grant, email.PlanName, email.OrderID)

	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(email.Username, email.To)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	response, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send payment receipt: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("payment receipt rejected with status %d: %s", response.StatusCode, response.Body)
	}

	return nil
}
