package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pomokan/pomokan/internal/apperrors"
	"github.com/pomokan/pomokan/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const replaceSession = `-- name: ReplaceSession
INSERT INTO refresh_sessions (id, user_id, token, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE
SET id = EXCLUDED.id,
    token = EXCLUDED.token,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at
RETURNING id, user_id, token, created_at, expires_at
`

// Replace swaps the user session atomically: the upsert removes the old
// grant and stores the new one in a single statement, so concurrent logins
// converge to whichever committed last
func (r *SessionRepo) Replace(ctx context.Context, session models.RefreshSession) (models.RefreshSession, error) {
	rows, _ := r.DB.Query(ctx, replaceSession,
		session.ID, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt)
	created, err := pgx.CollectOneRow(rows, rowToSession)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getSessionByToken = `-- name: GetSessionByToken
SELECT id, user_id, token, created_at, expires_at
FROM refresh_sessions
WHERE token = $1
`

// GetByToken returns the session row as is, even expired one
// Expiry handling belongs to the session manager
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (models.RefreshSession, error) {
	rows, _ := r.DB.Query(ctx, getSessionByToken, token)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const deleteSessionByUser = `-- name: DeleteSessionByUser
DELETE FROM refresh_sessions
WHERE user_id = $1
`

func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, deleteSessionByUser, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const deleteSessionByToken = `-- name: DeleteSessionByToken
DELETE FROM refresh_sessions
WHERE token = $1
`

func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.DB.Exec(ctx, deleteSessionByToken, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToSession(row pgx.CollectableRow) (models.RefreshSession, error) {
	var s models.RefreshSession
	err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}
