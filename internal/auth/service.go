package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/internal/middleware"
	"github.com/casesurf/casesurf/internal/payment"
	"github.com/casesurf/casesurf/pkg/models"
)

// ErrInvalidIdentity is returned when the sign-in payload lacks the
// provider-issued id or email.
var ErrInvalidIdentity = errors.New("identity is missing id or email")

// UserStore creates and reads user profiles
type UserStore interface {
	EnsureUser(ctx context.Context, id, username, email string, startingCredit int) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Service exchanges a verified identity for a session token. Identity
// verification happens upstream at the OAuth provider; this layer only
// materializes the profile and signs the JWT.
type Service struct {
	users    UserStore
	tokenTTL time.Duration
	logger   *logging.Logger
}

// NewService creates a new auth service
func NewService(users UserStore, tokenTTL time.Duration, logger *logging.Logger) *Service {
	return &Service{
		users:    users,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Login materializes the profile on first sign-in and issues a token.
// New profiles start with the free plan's credit grant.
func (s *Service) Login(ctx context.Context, id, email, name string) (*models.User, string, error) {
	if id == "" || email == "" {
		return nil, "", ErrInvalidIdentity
	}

	username := name
	if username == "" {
		username = usernameFromEmail(email)
	}

	user, err := s.users.EnsureUser(ctx, id, username, email, payment.StarterCredits)
	if err != nil {
		return nil, "", err
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.WithUserID(user.ID).Info("user signed in")

	return user, token, nil
}

// Profile returns the current profile for a signed-in user
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUser(ctx, userID)
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
