// Package todo implements the personal to-do operations.
// Every operation is scoped to the owning user, ownership is enforced by
// the repository queries themselves.
package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/models"
	"github.com/pomokan/pomokan/internal/repository"
	"github.com/pomokan/pomokan/internal/retry"
)

// CreateTodo carries the writable fields of a todo
type CreateTodo struct {
	Description string
	DueDate     *time.Time
	Status      string
	IsImportant bool
	IsUrgent    bool
}

// Patch carries optional updates, nil fields stay untouched
type Patch struct {
	Description *string
	DueDate     *time.Time
	Status      *string
	IsImportant *bool
	IsUrgent    *bool
}

type Service struct {
	storage repository.Storage
	retry   retry.Policy

	// Clock for completion timestamps, swappable in tests
	now func() time.Time
}

func NewService(storage repository.Storage) *Service {
	return &Service{
		storage: storage,
		retry:   retry.New(),
		now:     time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateTodo) (models.Todo, error) {
	if in.Status == "" {
		in.Status = models.StatusToDo
	}

	todo := models.Todo{
		UserID:      userID,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
		IsImportant: in.IsImportant,
		IsUrgent:    in.IsUrgent,
	}

	created, err := s.storage.Todo().Create(ctx, todo)
	if err != nil {
		return created, fmt.Errorf("can't create todo. Err: %w", err)
	}

	return created, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Todo, error) {
	return s.storage.Todo().List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error) {
	return s.storage.Todo().Get(ctx, userID, todoID)
}

// Update rewrites the writable fields, completion state stays as is
func (s *Service) Update(ctx context.Context, userID uuid.UUID, todoID uuid.UUID, in CreateTodo) (models.Todo, error) {
	todo, err := s.storage.Todo().Get(ctx, userID, todoID)
	if err != nil {
		return todo, err
	}

	todo.Description = in.Description
	todo.DueDate = in.DueDate
	todo.IsImportant = in.IsImportant
	todo.IsUrgent = in.IsUrgent
	if in.Status != "" {
		todo.Status = in.Status
	}

	return s.storage.Todo().Update(ctx, todo)
}

// ApplyPatch updates only the fields present in the patch
func (s *Service) ApplyPatch(ctx context.Context, userID uuid.UUID, todoID uuid.UUID, patch Patch) (models.Todo, error) {
	todo, err := s.storage.Todo().Get(ctx, userID, todoID)
	if err != nil {
		return todo, err
	}

	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.DueDate != nil {
		todo.DueDate = patch.DueDate
	}
	if patch.Status != nil {
		todo.Status = *patch.Status
	}
	if patch.IsImportant != nil {
		todo.IsImportant = *patch.IsImportant
	}
	if patch.IsUrgent != nil {
		todo.IsUrgent = *patch.IsUrgent
	}

	return s.storage.Todo().Update(ctx, todo)
}

// Complete marks the todo completed. Idempotent: completing a completed
// todo returns it unchanged
func (s *Service) Complete(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error) {
	todo, err := s.storage.Todo().Get(ctx, userID, todoID)
	if err != nil {
		return todo, err
	}

	if todo.IsCompleted {
		return todo, nil
	}

	completedAt := s.now().Truncate(time.Second)
	todo.IsCompleted = true
	todo.Status = models.StatusCompleted
	todo.CompletedAt = &completedAt

	return s.storage.Todo().Update(ctx, todo)
}

// IncrementPomodoro bumps the pomodoro counter of an uncompleted todo.
// The increment is wrapped in the retry policy: transient storage failures
// are re-run with backoff, so a flaky connection doesn't lose the tick
func (s *Service) IncrementPomodoro(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error) {
	todo, err := s.storage.Todo().Get(ctx, userID, todoID)
	if err != nil {
		return todo, err
	}

	if todo.IsCompleted {
		return todo, nil
	}

	err = s.retry.Do(ctx, func(ctx context.Context) error {
		todo, err = s.storage.Todo().IncrementPomodoro(ctx, userID, todoID)
		return err
	})
	if err != nil {
		return models.Todo{}, err
	}

	return todo, nil
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) error {
	return s.storage.Todo().Delete(ctx, userID, todoID)
}

// DeleteBatch removes the user's todos from the given list and reports
// how many rows actually went away. Foreign ids are silently skipped
func (s *Service) DeleteBatch(ctx context.Context, userID uuid.UUID, todoIDs []uuid.UUID) (int64, error) {
	return s.storage.Todo().DeleteBatch(ctx, userID, todoIDs)
}
