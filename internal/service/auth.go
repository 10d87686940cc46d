package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/delivery_orders/internal/hash"
	"github.com/Skotchmaster/delivery_orders/internal/logging"
	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/internal/repo"
	"github.com/Skotchmaster/delivery_orders/internal/tokens"
)

const invalidCredentials = "invalid email or password"

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events EventPublisher
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResult struct {
	AccessToken string      `json:"access_token"`
	User        UserSummary `json:"user"`
}

func summarize(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	if _, err := s.Repo.UserByEmail(ctx, in.Email); err == nil {
		l.Warn("register_failed", "status", 409, "reason", "email already registered")
		return nil, fmt.Errorf("%w: email is already registered", ErrConflict)
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("register_failed", "status", 500, "reason", "cannot look up user", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register_failed", "status", 409, "reason", "email already registered")
			return nil, fmt.Errorf("%w: email is already registered", ErrConflict)
		}
		l.Error("register_failed", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	res, err := s.issue(user)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, user.ID, "user_registered", res.User)
	l.Info("register_success", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.ValidateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	res, err := s.issue(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, user.ID, "user_logged_in", res.User)
	l.Info("login_success", "user_id", user.ID)
	return res, nil
}

// ValidateUser returns the same ErrUnauthorized for an unknown email and a
// wrong password.
func (s *AuthService) ValidateUser(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.validate_user")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("validate_failed", "status", 401, "reason", "unknown email")
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, invalidCredentials)
		}
		l.Error("validate_failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("validate_failed", "status", 401, "reason", "wrong password")
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, invalidCredentials)
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*UserSummary, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	sum := summarize(user)
	return &sum, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	tok, err := s.Tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: tok, User: summarize(u)}, nil
}

// publish is best effort: a failed event never fails the request.
func publish(ctx context.Context, p EventPublisher, key, eventType string, data any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, key, eventType, data); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", eventType, "key", key, "error", err)
	}
}
