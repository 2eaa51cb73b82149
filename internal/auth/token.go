package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/feedback-service/internal/domain"
)

// ErrVerification is wrapped by every token verification failure.
var ErrVerification = errors.New("token verification failed")

var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", ErrVerification)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrVerification)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrVerification)

	ErrEmptySubject = errors.New("token subject must not be empty")
	ErrInvalidTTL   = errors.New("token ttl must be at least one second")
	ErrEmptySecret  = errors.New("token secret must not be empty")
)

var signingMethod = jwt.SigningMethodHS512

// TokenCodec mints and verifies stateless HMAC-signed access tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec builds a codec keyed by secret. ttl is the default validity window.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl < time.Second {
		return nil, ErrInvalidTTL
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the default validity window.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// Issue mints a token for subject using the default ttl.
func (tc *TokenCodec) Issue(subject string, now time.Time) (string, domain.Token, error) {
	return tc.Mint(subject, now, tc.ttl)
}

// Mint signs a token carrying subject, issued at now and expiring at now+ttl.
// Timestamps are encoded with second precision.
func (tc *TokenCodec) Mint(subject string, now time.Time, ttl time.Duration) (string, domain.Token, error) {
	if subject == "" {
		return "", domain.Token{}, ErrEmptySubject
	}
	if ttl < time.Second {
		return "", domain.Token{}, ErrInvalidTTL
	}

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(tc.secret)
	if err != nil {
		return "", domain.Token{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, domain.Token{
		ID:        claims.ID,
		Subject:   subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the signature and expiry of tokenStr at now and returns its subject.
// Tokens are rejected once now >= expiry.
func (tc *TokenCodec) Verify(tokenStr string, now time.Time) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return "", ErrTokenSignature
		default:
			return "", ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}
