// Package tokencodec issues and verifies stateless signed access tokens.
// Verification is a pure signature and expiry check: no storage lookups,
// safe under arbitrary concurrency.
package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/apperrors"
	"github.com/pomokan/pomokan/internal/models"
)

const (
	defaultAccessTokenTTL = 30 * time.Minute
	defaultSigningMethod  = "HS256"
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"id"`
}

// Codec config with sensible defaults
type Config struct {
	// Secret key to sign access token payload
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access token lifetime
	// If not set than default is used
	AccessTTL time.Duration

	// Clock. Defaults to time.Now, swappable in tests
	Now func() time.Time
}

type Codec struct {
	key       string
	alg       jwt.SigningMethod
	accessTTL time.Duration
	now       func() time.Time
}

func New(cfg Config) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method %q", cfg.Alg)
	}

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Codec{
		key:       cfg.SecretKey,
		alg:       alg,
		accessTTL: cfg.AccessTTL,
		now:       cfg.Now,
	}, nil
}

// Issue signs an access token for the user
// Expiry is absolute, computed at issuance: now + TTL
func (c *Codec) Issue(email string, userID uuid.UUID) (models.IssuedToken, error) {
	now := c.now().Truncate(time.Second)
	expiresAt := now.Add(c.accessTTL)

	token := jwt.NewWithClaims(
		c.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   email,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
		},
	)

	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses and validates an access token
// Any failure (bad signature, wrong algorithm, malformed payload, past
// expiry) comes back as apperrors.ErrInvalidToken
func (c *Codec) Verify(access string) (models.AccessClaims, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(c.key), nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return models.AccessClaims{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidToken, err)
	}

	return models.AccessClaims{
		Email:     claims.Subject,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
