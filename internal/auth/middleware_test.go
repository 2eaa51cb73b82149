package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/feedback-service/pkg/util/errorutil"
)

type seenIdentity struct {
	fromLocals  Identity
	fromContext Identity
}

func newGateApp(t *testing.T, codec *TokenCodec, now time.Time, seen *seenIdentity) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
	gate := NewAuthMiddleware(codec, nil).WithClock(func() time.Time { return now })
	app.Use(gate.Handle)

	record := func(c *fiber.Ctx) error {
		seen.fromLocals = IdentityFromFiber(c)
		seen.fromContext = IdentityFromContext(c.UserContext())
		return c.SendStatus(http.StatusOK)
	}
	app.Get("/public", record)
	app.Get("/private", RequireAuthenticated(), record)
	return app
}

func TestGate(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	valid, _, err := codec.Mint("alice@example.com", now, time.Hour)
	require.NoError(t, err)
	expired, _, err := codec.Mint("alice@example.com", now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantSubject string
	}{
		{name: "no credential", header: ""},
		{name: "garbled token", header: "Bearer not-a-token"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "tampered token", header: "Bearer " + valid[:len(valid)-4] + "AAAA"},
		{name: "wrong scheme", header: "Basic " + valid},
		{name: "empty bearer", header: "Bearer "},
		{name: "valid token", header: "Bearer " + valid, wantSubject: "alice@example.com"},
		{name: "scheme is case insensitive", header: "bearer " + valid, wantSubject: "alice@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen seenIdentity
			app := newGateApp(t, codec, now, &seen)

			req := httptest.NewRequest(http.MethodGet, "/public", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode, "gate must never fail the request")

			subject, ok := seen.fromContext.Subject()
			assert.Equal(t, tt.wantSubject != "", ok)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Equal(t, seen.fromContext, seen.fromLocals)
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	valid, _, err := codec.Mint("alice@example.com", now, time.Hour)
	require.NoError(t, err)

	var seen seenIdentity
	app := newGateApp(t, codec, now, &seen)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIdentityDoesNotLeakAcrossRequests(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	valid, _, err := codec.Mint("alice@example.com", now, time.Hour)
	require.NoError(t, err)

	var seen seenIdentity
	app := newGateApp(t, codec, now, &seen)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	_, err = app.Test(req, -1)
	require.NoError(t, err)
	require.True(t, seen.fromContext.IsAuthenticated())

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/public", nil), -1)
	require.NoError(t, err)
	assert.False(t, seen.fromContext.IsAuthenticated())
	assert.False(t, seen.fromLocals.IsAuthenticated())
}

func TestIdentityContext(t *testing.T) {
	assert.False(t, IdentityFromContext(context.Background()).IsAuthenticated())

	ctx := WithIdentity(context.Background(), Authenticated("alice@example.com"))
	subject, ok := CurrentSubject(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", subject)

	ctx = WithIdentity(ctx, Anonymous())
	_, ok = CurrentSubject(ctx)
	assert.False(t, ok)
}
