package tokencodec

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomokan/pomokan/internal/apperrors"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_Codec(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	issuedAt := mustParseTime("2024-01-01 19:00:00Z")

	newCodec := func(t *testing.T, cfg Config) *Codec {
		t.Helper()
		if cfg.SecretKey == "" {
			cfg.SecretKey = "test-secret-key"
		}
		codec, err := New(cfg)
		require.NoError(t, err, "codec should be created without errors")
		return codec
	}

	t.Run("new defaults", func(t *testing.T) {
		codec := newCodec(t, Config{})

		require.Equal(t, "test-secret-key", codec.key)
		require.Equal(t, defaultSigningMethod, codec.alg.Alg())
		require.Equal(t, defaultAccessTokenTTL, codec.accessTTL)
	})

	t.Run("new requires secret", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err, "empty secret key must be rejected")
	})

	t.Run("new rejects unknown alg", func(t *testing.T) {
		_, err := New(Config{SecretKey: "secret", Alg: "XX512"})
		require.Error(t, err)
	})

	t.Run("issue and verify roundtrip", func(t *testing.T) {
		codec := newCodec(t, Config{
			AccessTTL: 15 * time.Minute,
			Now:       func() time.Time { return issuedAt },
		})

		token, err := codec.Issue("user@banka.org", userID)
		require.NoError(t, err)
		require.NotEmpty(t, token.Value)
		require.WithinDuration(t, issuedAt.Add(15*time.Minute), token.ExpiresAt, 0)

		claims, err := codec.Verify(token.Value)
		require.NoError(t, err)
		assert.Equal(t, "user@banka.org", claims.Email)
		assert.Equal(t, userID, claims.UserID)
		assert.WithinDuration(t, token.ExpiresAt, claims.ExpiresAt, 0)
	})

	t.Run("expired token", func(t *testing.T) {
		now := issuedAt
		codec := newCodec(t, Config{
			AccessTTL: 15 * time.Minute,
			Now:       func() time.Time { return now },
		})

		token, err := codec.Issue("user@banka.org", userID)
		require.NoError(t, err)

		// Move the clock one second past expiry
		now = issuedAt.Add(15*time.Minute + time.Second)

		_, err = codec.Verify(token.Value)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		codec := newCodec(t, Config{})
		other := newCodec(t, Config{SecretKey: "other-secret-key"})

		token, err := other.Issue("user@banka.org", userID)
		require.NoError(t, err)

		_, err = codec.Verify(token.Value)
		require.Error(t, err, "token signed with a different key must fail")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("not a token", func(t *testing.T) {
		codec := newCodec(t, Config{})

		_, err := codec.Verify("not-even-a-token")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("none alg rejected", func(t *testing.T) {
		codec := newCodec(t, Config{})

		unsigned := jwt.NewWithClaims(
			jwt.SigningMethodNone,
			AccessTokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "user@banka.org",
					IssuedAt:  jwt.NewNumericDate(time.Now()),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
				},
				UserID: userID,
			},
		)
		access, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(access)
		require.Error(t, err, "token with none alg must fail even if well formed")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("token without expiry rejected", func(t *testing.T) {
		codec := newCodec(t, Config{})

		eternal := jwt.NewWithClaims(
			jwt.SigningMethodHS256,
			AccessTokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "user@banka.org"},
				UserID:           userID,
			},
		)
		access, err := eternal.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = codec.Verify(access)
		require.Error(t, err, "token without exp claim must fail")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
