// ABOUTME: Account service implementing registration, login, and plan changes
// ABOUTME: Sits between the HTTP handlers and the user store

package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mk7/tradebot-backend/internal/auth"
	"github.com/mk7/tradebot-backend/internal/store"
)

// Service errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidPlan        = errors.New("invalid plan")
)

// Service implements account operations on top of the user store.
type Service struct {
	users    store.UserStore
	audit    store.AuditStore
	verifier *auth.JWTVerifier
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService creates an account service. audit may be nil to disable
// audit logging.
func NewService(users store.UserStore, audit store.AuditStore, verifier *auth.JWTVerifier, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		audit:    audit,
		verifier: verifier,
		tokenTTL: tokenTTL,
		logger:   slog.Default().With("component", "accounts"),
	}
}

// Register creates a new basic active user and issues a token.
// Returns store.ErrEmailExists if the email is taken.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*store.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Plan:         store.PlanBasic,
		Active:       true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.verifier.Generate(user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}

	s.appendAudit(ctx, user.ID, store.AuditRegister, "user", user.ID, nil)
	s.logger.Info("registered user", "id", user.ID, "email", email)
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown emails and bad
// passwords both return ErrInvalidCredentials; a disabled account with
// correct credentials returns ErrAccountDisabled.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Burn a bcrypt comparison so misses cost the same as mismatches
		auth.BurnPasswordCheck(password)
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	if !user.Active {
		return nil, "", ErrAccountDisabled
	}

	token, err := s.verifier.Generate(user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}

	s.appendAudit(ctx, user.ID, store.AuditLogin, "user", user.ID, nil)
	s.logger.Info("user logged in", "id", user.ID, "email", email)
	return user, token, nil
}

// UpgradePlan changes a user's plan. actorID identifies the admin
// performing the change for the audit trail.
func (s *Service) UpgradePlan(ctx context.Context, actorID, userID string, plan store.Plan) (*store.User, error) {
	if _, ok := store.ParsePlan(string(plan)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}

	if err := s.users.UpdateUserPlan(ctx, userID, plan); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, actorID, store.AuditUpgradePlan, "user", userID, map[string]any{
		"new_plan": string(plan),
	})
	s.logger.Info("upgraded user plan", "actor", actorID, "user", userID, "plan", plan)
	return user, nil
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, actorID, userID string, active bool) error {
	if err := s.users.SetUserActive(ctx, userID, active); err != nil {
		return err
	}

	action := store.AuditDeactivateUser
	if active {
		action = store.AuditReactivateUser
	}
	s.appendAudit(ctx, actorID, action, "user", userID, nil)
	return nil
}

// appendAudit records an audit entry, logging rather than failing the
// operation if the write goes wrong.
func (s *Service) appendAudit(ctx context.Context, actorID string, action store.AuditAction, targetType, targetID string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &store.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	}
	if err := s.audit.AppendAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", action, "error", err)
	}
}
