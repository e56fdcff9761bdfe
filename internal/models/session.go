package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is the single live refresh grant of one user.
// The refresh_sessions table has a unique constraint on user_id, so at most
// one session per user may exist at any instant.
type RefreshSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
