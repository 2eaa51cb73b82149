package auth

import (
	"strings"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, 24*time.Hour)
	require.NoError(t, err)
	return codec
}

func TestMintVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, ttl := range []time.Duration{time.Second, time.Minute, 24 * time.Hour} {
		token, meta, err := codec.Mint("alice@example.com", now, ttl)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		assert.Equal(t, "alice@example.com", meta.Subject)
		assert.Equal(t, now.Unix(), meta.IssuedAt.Unix())
		assert.Equal(t, now.Add(ttl).Unix(), meta.ExpiresAt.Unix())
		assert.NotEmpty(t, meta.ID)

		subject, err := codec.Verify(token, now)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", subject)

		subject, err = codec.Verify(token, now.Add(ttl-time.Millisecond))
		require.NoError(t, err, "ttl %s", ttl)
		assert.Equal(t, "alice@example.com", subject)
	}
}

func TestVerifyExpiry(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ttl := 1000 * time.Second

	token, _, err := codec.Mint("alice@example.com", now, ttl)
	require.NoError(t, err)

	subject, err := codec.Verify(token, now)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	_, err = codec.Verify(token, now.Add(ttl))
	assert.ErrorIs(t, err, ErrTokenExpired, "token must be rejected exactly at expiry")

	_, err = codec.Verify(token, now.Add(1001*time.Second))
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrVerification)
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := codec.Mint("alice@example.com", now, time.Hour)
	require.NoError(t, err)

	signed := token[:strings.LastIndex(token, ".")]
	for i := 0; i < len(signed); i++ {
		replacement := byte('A')
		if signed[i] == 'A' {
			replacement = 'B'
		}
		tampered := []byte(token)
		tampered[i] = replacement

		_, err := codec.Verify(string(tampered), now)
		require.Error(t, err, "byte %d altered", i)
		assert.ErrorIs(t, err, ErrVerification)
	}
}

func TestVerifyFailures(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	other, err := NewTokenCodec("another-secret-that-is-long-enough-for-testing", time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.Mint("alice@example.com", now, time.Hour)
	require.NoError(t, err)

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(signingMethod, jwt.RegisteredClaims{
		Subject: "alice@example.com",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(signingMethod, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "wrong secret", token: foreign, wantErr: ErrTokenSignature},
		{name: "unexpected algorithm", token: hs256, wantErr: ErrTokenSignature},
		{name: "alg none", token: unsigned, wantErr: ErrVerification},
		{name: "missing expiry", token: noExpiry, wantErr: ErrVerification},
		{name: "missing subject", token: noSubject, wantErr: ErrTokenMalformed},
		{name: "garbage", token: "this.is.not.a.valid.jwt.token", wantErr: ErrTokenMalformed},
		{name: "empty", token: "", wantErr: ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := codec.Verify(tt.token, now)
			assert.Empty(t, subject)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrVerification)
		})
	}
}

func TestMintRejectsBadInput(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now()

	_, _, err := codec.Mint("", now, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, _, err = codec.Mint("alice@example.com", now, 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)

	_, err = NewTokenCodec("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueUsesDefaultTTL(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec(testSecret, 90*time.Minute)
	require.NoError(t, err)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_, meta, err := codec.Issue("bob@example.com", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(90*time.Minute).Unix(), meta.ExpiresAt.Unix())
	assert.Equal(t, 90*time.Minute, codec.TTL())
}

func TestVerifyConcurrent(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now()
	token, _, err := codec.Issue("alice@example.com", now)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := codec.Verify(token, now); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent verify failed: %v", err)
	}
}
