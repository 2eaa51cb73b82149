package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

const identityLocalsKey = "auth_identity"

// Identity is the outcome of authenticating one request: either a verified
// subject or anonymous. The zero value is anonymous.
type Identity struct {
	subject string
}

// Anonymous returns the unauthenticated identity.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns an identity for a verified subject.
func Authenticated(subject string) Identity {
	return Identity{subject: subject}
}

// IsAuthenticated reports whether a subject was verified.
func (i Identity) IsAuthenticated() bool {
	return i.subject != ""
}

// Subject returns the verified subject, if any.
func (i Identity) Subject() (string, bool) {
	return i.subject, i.subject != ""
}

type identityKey struct{}

// WithIdentity returns a child context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored in ctx, or Anonymous.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Anonymous()
	}
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}

// CurrentSubject returns the authenticated subject of the request owning ctx.
func CurrentSubject(ctx context.Context) (string, bool) {
	return IdentityFromContext(ctx).Subject()
}

// IdentityFromFiber returns the identity set by the gate for this request.
func IdentityFromFiber(c *fiber.Ctx) Identity {
	if id, ok := c.Locals(identityLocalsKey).(Identity); ok {
		return id
	}
	return Anonymous()
}
