package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email, firstName, lastName, hashedPassword string) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Replace user password hash
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
}

// RefreshSession repository interface
// The table guarantees at most one session per user (unique user_id)
type SessionRepo interface {
	// Replace atomically swaps the user session for the given one
	// Last committed replace wins, the table never holds two rows per user
	Replace(ctx context.Context, session models.RefreshSession) (models.RefreshSession, error)

	// Get session by its opaque token
	// Returns the row even if expired; must return apperrors.ErrSessionNotFound if absent
	GetByToken(ctx context.Context, token string) (models.RefreshSession, error)

	// Delete session of the user. Idempotent: no error when nothing to delete
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// Delete session by token. Idempotent as well
	DeleteByToken(ctx context.Context, token string) error
}

// Todo repository interface. Every method is scoped by owner
type TodoRepo interface {
	Create(ctx context.Context, todo models.Todo) (models.Todo, error)

	// Get todo owned by the user
	// Must return apperrors.ErrTodoNotFound when absent or owned by someone else
	Get(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error)

	List(ctx context.Context, userID uuid.UUID) ([]models.Todo, error)

	// Update rewrites mutable todo columns and returns the fresh row
	Update(ctx context.Context, todo models.Todo) (models.Todo, error)

	// IncrementPomodoro bumps the counter in a single statement
	IncrementPomodoro(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error)

	Delete(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) error

	// DeleteBatch removes user owned todos and returns number of deleted rows
	DeleteBatch(ctx context.Context, userID uuid.UUID, todoIDs []uuid.UUID) (int64, error)
}

// Storage aggregates repositories over a single connection or transaction
type Storage interface {
	User() UserRepo
	Session() SessionRepo
	Todo() TodoRepo

	// InTx runs fn within a database transaction
	// Commits when fn returns nil, rolls back otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
