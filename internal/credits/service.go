package credits

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/pkg/models"
)

// UserStore is the subset of user persistence the service needs
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ConsumeCredit(ctx context.Context, id string) error
	AddCredits(ctx context.Context, id string, credits int) error
}

// ScriptGenerator produces improved scripts from the analysis backend
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, baseText string, improvements []string, iterative bool) (string, error)
}

// Archiver stores raw generation payloads for audit
type Archiver interface {
	ArchiveGeneration(ctx context.Context, kind string, payload []byte) (string, error)
}

// Notifier pushes profile changes to open SSE streams
type Notifier interface {
	Publish(event models.ProfileEvent)
}

// Service gates script improvement behind the credit balance. One
// improvement costs exactly one credit no matter how many improvement
// directives ride along; pro users are never charged.
type Service struct {
	users    UserStore
	backend  ScriptGenerator
	archive  Archiver
	notifier Notifier
	logger   *logging.Logger
}

// NewService creates a new credit service. archive and notifier may be
// nil when those integrations are disabled.
func NewService(users UserStore, backend ScriptGenerator, archive Archiver, notifier Notifier, logger *logging.Logger) *Service {
	return &Service{
		users:    users,
		backend:  backend,
		archive:  archive,
		notifier: notifier,
		logger:   logger,
	}
}

// Balance returns the user's current profile
func (s *Service) Balance(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUser(ctx, userID)
}

// ImproveScript charges one credit and generates an improved script.
// The backend is never called for a user whose balance is exhausted,
// and a backend failure refunds the charge.
func (s *Service) ImproveScript(ctx context.Context, userID, baseText string, improvements []string, iterative bool) (string, error) {
	start := time.Now()

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if !user.HasCredit() {
		metrics.RecordCreditDenial()
		s.logger.WithUserID(userID).Warn("script improvement denied, no credit")
		return "", database.ErrInsufficientCredit
	}

	charged := false
	if !user.IsPro {
		// Conditional deduction loses the race gracefully when two
		// requests spend the last credit at once
		if err := s.users.ConsumeCredit(ctx, userID); err != nil {
			if errors.Is(err, database.ErrInsufficientCredit) {
				metrics.RecordCreditDenial()
			}
			return "", err
		}
		charged = true
		metrics.RecordCreditConsumed()
	}

	text, err := s.backend.GenerateScript(ctx, baseText, improvements, iterative)
	if err != nil {
		if charged {
			if refundErr := s.users.AddCredits(ctx, userID, 1); refundErr != nil {
				s.logger.WithUserID(userID).WithError(refundErr).Error("failed to refund credit after backend error")
			}
		}
		metrics.RecordGeneration("improvement_script", "error", time.Since(start).Seconds())
		s.logger.LogGenerationEvent(userID, "improvement_script", len(improvements), time.Since(start), err)
		return "", err
	}

	metrics.RecordGeneration("improvement_script", "success", time.Since(start).Seconds())
	s.logger.LogGenerationEvent(userID, "improvement_script", len(improvements), time.Since(start), nil)

	s.archivePayload(ctx, userID, baseText, improvements, iterative, text)
	s.notifyBalance(ctx, userID)

	return text, nil
}

func (s *Service) archivePayload(ctx context.Context, userID, baseText string, improvements []string, iterative bool, text string) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"user_id":      userID,
		"base_text":    baseText,
		"improvements": improvements,
		"is_iterative": iterative,
		"result":       text,
		"generated_at": time.Now().UTC(),
	})
	if err != nil {
		return
	}

	// Best effort, generation already succeeded
	if _, err := s.archive.ArchiveGeneration(ctx, "improvement_script", payload); err != nil {
		s.logger.WithUserID(userID).WithError(err).Warn("failed to archive improvement payload")
	}
}

func (s *Service) notifyBalance(ctx context.Context, userID string) {
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
