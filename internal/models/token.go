package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessClaims is the decoded content of a verified access token.
// Never persisted: it is rebuilt from the token on every request.
type AccessClaims struct {
	Email     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by the auth service on login and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
