// Package sessions manages stateful refresh sessions.
//
// Per user session state machine: NoSession -> Active -> (Expired | Revoked) -> NoSession.
// The single-session invariant is enforced at the storage layer: issue upserts
// into a table with unique user_id, so concurrent logins race at the database
// and the last commit wins.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/apperrors"
	"github.com/pomokan/pomokan/internal/models"
	"github.com/pomokan/pomokan/internal/repository"
)

const (
	// 32 random bytes, 256 bits of entropy per token
	tokenBytesLen = 32

	defaultSessionTTL = 30 * 24 * time.Hour
)

// Manager config with sensible defaults
type Config struct {
	// Refresh session lifetime
	// If not set than default is used
	SessionTTL time.Duration

	// Clock. Defaults to time.Now, swappable in tests
	Now func() time.Time
}

type Manager struct {
	ttl     time.Duration
	now     func() time.Time
	storage repository.Storage
}

func New(cfg Config, storage repository.Storage) (*Manager, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaultSessionTTL
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{
		ttl:     cfg.SessionTTL,
		now:     cfg.Now,
		storage: storage,
	}, nil
}

// WithStorage returns a manager bound to the given storage
// Used to run session operations inside a caller owned transaction
func (m *Manager) WithStorage(s repository.Storage) *Manager {
	return &Manager{ttl: m.ttl, now: m.now, storage: s}
}

// Issue creates a fresh refresh session for the user, atomically replacing
// any existing one. A second login from another client silently revokes the
// first session: the replace races at the database and the last committed
// one wins
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID) (models.IssuedToken, error) {
	b := make([]byte, tokenBytesLen)
	if _, err := rand.Read(b); err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while generating refresh token. Err: %w", err)
	}
	token := hex.EncodeToString(b)

	now := m.now().Truncate(time.Second)
	session := models.RefreshSession{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if _, err := m.storage.Session().Replace(ctx, session); err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while saving refresh session. Err: %w", err)
	}

	return models.IssuedToken{Value: token, ExpiresAt: session.ExpiresAt}, nil
}

// Validate returns the session owning the token
// Fails with apperrors.ErrSessionNotFound if no row matches and with
// apperrors.ErrSessionExpired if it is past expiry; the expired row is
// deleted on the way out, so the next validate gets ErrSessionNotFound
func (m *Manager) Validate(ctx context.Context, token string) (models.RefreshSession, error) {
	var session models.RefreshSession
	var expired bool

	err := m.storage.InTx(ctx, func(s repository.Storage) error {
		var err error
		session, err = s.Session().GetByToken(ctx, token)
		if err != nil {
			return err
		}

		if session.ExpiresAt.Before(m.now()) {
			// The closure must return nil here: an error would roll the
			// transaction back and resurrect the row we just deleted
			expired = true
			return s.Session().DeleteByToken(ctx, token)
		}

		return nil
	})
	if err != nil {
		return models.RefreshSession{}, err
	}
	if expired {
		return models.RefreshSession{}, apperrors.ErrSessionExpired
	}

	return session, nil
}

// Revoke deletes the session of the user if present
// Idempotent: absence of a session is not an error
func (m *Manager) Revoke(ctx context.Context, userID uuid.UUID) error {
	return m.storage.Session().DeleteByUser(ctx, userID)
}

// Rotate replaces the current session with a fresh one, making every
// refresh token single use. Issue already revokes within the same
// transaction, so rotate is just an alias that reads as intent
func (m *Manager) Rotate(ctx context.Context, userID uuid.UUID) (models.IssuedToken, error) {
	return m.Issue(ctx, userID)
}
