package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenVerifier validates a bearer token at a point in time.
type TokenVerifier interface {
	Verify(token string, now time.Time) (string, error)
}

// AuthMiddleware is the authentication gate. It resolves the bearer token into
// an Identity for every request and never rejects a request itself: missing or
// invalid credentials leave the request anonymous, and route guards decide.
type AuthMiddleware struct {
	tokens TokenVerifier
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger, now: time.Now}
}

// WithClock overrides the time source used for expiry checks.
func (m *AuthMiddleware) WithClock(now func() time.Time) *AuthMiddleware {
	m.now = now
	return m
}

// Handle sets the request identity and continues the chain.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity := m.authenticate(c.Get(fiber.HeaderAuthorization), c.Path())

	c.Locals(identityLocalsKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
	return c.Next()
}

func (m *AuthMiddleware) authenticate(header, path string) Identity {
	if header == "" {
		return Anonymous()
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		m.logger.Debug("ignoring non-bearer authorization header", zap.String("path", path))
		return Anonymous()
	}

	subject, err := m.tokens.Verify(strings.TrimSpace(parts[1]), m.now())
	if err != nil {
		m.logger.Debug("ignoring invalid bearer token", zap.String("path", path), zap.Error(err))
		return Anonymous()
	}
	return Authenticated(subject)
}
