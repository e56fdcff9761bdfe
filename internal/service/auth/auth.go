// Package auth composes the password hasher, the access token codec and
// the refresh session manager into register/login/refresh/logout operations.
// Every state-mutating operation runs as a single database transaction:
// commit on success, rollback on any failure.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/apperrors"
	"github.com/pomokan/pomokan/internal/models"
	"github.com/pomokan/pomokan/internal/repository"
	"github.com/pomokan/pomokan/internal/service/auth/sessions"
	"github.com/pomokan/pomokan/internal/service/auth/tokencodec"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher used during registration and login
	// Defaults to the bcrypt hasher
	Hasher PasswordHasher
}

type Service struct {
	hasher   PasswordHasher
	codec    *tokencodec.Codec
	sessions *sessions.Manager
	storage  repository.Storage

	// Compared against on unknown email so login timing stays uniform
	dummyHash string
}

func NewService(cfg Config, codec *tokencodec.Codec, sessionManager *sessions.Manager, storage repository.Storage) (*Service, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if codec == nil || sessionManager == nil || storage == nil {
		return nil, errors.New("codec, session manager and storage must not be nil")
	}

	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hasher self check failed, error=%w", err)
	}

	return &Service{
		hasher:    hasher,
		codec:     codec,
		sessions:  sessionManager,
		storage:   storage,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new user
// No session is created: registration does not imply login
// Returns apperrors.ErrUserAlreadyExists if the email is taken
func (s *Service) Register(ctx context.Context, email, firstName, lastName, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.User().CreateUser(ctx, email, firstName, lastName, hash)
}

// Login verifies credentials and issues a fresh token pair
// Unknown email and wrong password both come back as
// apperrors.ErrAuthenticationFailed, nothing leaks which one it was
func (s *Service) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	err := s.storage.InTx(ctx, func(txs repository.Storage) error {
		user, err := txs.User().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				// Unknown email costs the same hash comparison a wrong
				// password does
				_ = s.hasher.Compare(s.dummyHash, password)
				return apperrors.ErrAuthenticationFailed
			}
			return err
		}

		if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
			return apperrors.ErrAuthenticationFailed
		}

		pair, err = s.generatePair(ctx, txs, user)
		return err
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Refresh rotates the refresh session and issues a fresh token pair
// Replaying a consumed refresh token fails with apperrors.ErrSessionNotFound,
// an expired one with apperrors.ErrSessionExpired
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair
	var expiredErr error

	err := s.storage.InTx(ctx, func(txs repository.Storage) error {
		manager := s.sessions.WithStorage(txs)

		session, err := manager.Validate(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, apperrors.ErrSessionExpired) {
				// Validate already deleted the expired row, the transaction
				// must still commit for that delete to stick
				expiredErr = err
				return nil
			}
			return err
		}

		user, err := txs.User().GetUserByID(ctx, session.UserID)
		if err != nil {
			return err
		}

		access, err := s.codec.Issue(user.Email, user.ID)
		if err != nil {
			return err
		}

		refresh, err := manager.Rotate(ctx, user.ID)
		if err != nil {
			return err
		}

		pair = models.TokenPair{Access: access, Refresh: refresh}
		return nil
	})
	if err != nil {
		return models.TokenPair{}, err
	}
	if expiredErr != nil {
		return models.TokenPair{}, expiredErr
	}

	return pair, nil
}

// Logout revokes the user session
// Always succeeds, even when no session existed
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.Revoke(ctx, userID)
}

// Authenticate resolves the current identity from a bearer access token.
// Pure codec check: no database access, so a revoked refresh session does
// not invalidate outstanding access tokens before their embedded expiry.
// That is the reason the access TTL is kept short
func (s *Service) Authenticate(ctx context.Context, accessToken string) (models.AccessClaims, error) {
	return s.codec.Verify(accessToken)
}

func (s *Service) generatePair(ctx context.Context, txs repository.Storage, user models.User) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := s.codec.Issue(user.Email, user.ID)
	if err != nil {
		return pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	refresh, err := s.sessions.WithStorage(txs).Issue(ctx, user.ID)
	if err != nil {
		return pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
