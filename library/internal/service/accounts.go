package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/Astemirdum/smart-library/pkg/auth"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) authResponse(user model.User, message string) (model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Message:   message,
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "hash password")
	}
	user, err := s.repo.CreateUser(ctx, model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		Role:         auth.ParseRole(req.Role),
	})
	if err != nil {
		return model.AuthResponse{}, err
	}
	s.log.Info("user registered", zap.String("id", user.ID.String()), zap.String("role", string(user.Role)))
	return s.authResponse(user, "User registered successfully")
}

// Login does not tell an unknown email from a wrong password.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	if !user.IsActive {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}
	return s.authResponse(user, "Login successful")
}

func (s *Service) Me(ctx context.Context, actor auth.Principal) (model.User, error) {
	return s.repo.GetUser(ctx, actor.UserID)
}

// ResolvePrincipal backs the auth gate: the token subject must be an active account.
// Missing and inactive accounts wrap auth.ErrUnknownPrincipal, storage failures do not.
func (s *Service) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (auth.Principal, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return auth.Principal{}, fmt.Errorf("%w: %w", auth.ErrUnknownPrincipal, err)
		}
		return auth.Principal{}, err
	}
	if !user.IsActive {
		return auth.Principal{}, fmt.Errorf("%w: %w", auth.ErrUnknownPrincipal, errs.ErrInactiveAccount)
	}
	return user.Principal(), nil
}
