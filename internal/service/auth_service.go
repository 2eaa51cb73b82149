package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/feedback-service/internal/auth"
	"github.com/spec-kit/feedback-service/internal/domain"
	"github.com/spec-kit/feedback-service/internal/repository"
	apperrors "github.com/spec-kit/feedback-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	customers repository.CustomerRepository
	tokens    *auth.TokenCodec
	hasher    *auth.PasswordHasher
	now       func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Customers repository.CustomerRepository
	Tokens    *auth.TokenCodec
	Hasher    *auth.PasswordHasher
	Clock     func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		customers: deps.Customers,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		now:       now,
	}
}

// Register creates a new customer account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Customer, error) {
	email = normalizeEmail(email)
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"password": "maxbytes=72"})
	}
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{Email: email, PasswordHash: hash}
	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewEmailAlreadyRegistered()
		}
		return nil, err
	}
	return customer, nil
}

// Login checks credentials and mints an access token whose subject is the
// customer's email.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Token, error) {
	customer, err := s.customers.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", domain.Token{}, apperrors.NewNotFound("customer", map[string]any{"email": email})
	}
	if err != nil {
		return "", domain.Token{}, err
	}
	if !s.hasher.Verify(password, customer.PasswordHash) {
		return "", domain.Token{}, apperrors.NewInvalidCredentials()
	}
	return s.tokens.Issue(customer.Email, s.now())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
