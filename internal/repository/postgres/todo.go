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

type TodoRepo struct {
	DB DBTX
}

const todoColumns = `id, user_id, description, due_date, is_completed, is_important,
is_urgent, created_at, completed_at, status, pomodoro_count`

const createTodo = `-- name: CreateTodo
INSERT INTO todos (id, user_id, description, due_date, is_important, is_urgent, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + todoColumns

func (r *TodoRepo) Create(ctx context.Context, todo models.Todo) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, createTodo,
		uuid.New(), todo.UserID, todo.Description, todo.DueDate,
		todo.IsImportant, todo.IsUrgent, todo.Status)
	created, err := pgx.CollectOneRow(rows, rowToTodo)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getTodo = `-- name: GetTodo
SELECT ` + todoColumns + `
FROM todos
WHERE id = $1 AND user_id = $2
`

func (r *TodoRepo) Get(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, getTodo, todoID, userID)
	todo, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return todo, nil
	case errors.Is(err, pgx.ErrNoRows):
		return todo, apperrors.ErrTodoNotFound
	default:
		return todo, fmt.Errorf("db error: %w", err)
	}
}

const listTodos = `-- name: ListTodos
SELECT ` + todoColumns + `
FROM todos
WHERE user_id = $1
ORDER BY created_at
`

func (r *TodoRepo) List(ctx context.Context, userID uuid.UUID) ([]models.Todo, error) {
	rows, _ := r.DB.Query(ctx, listTodos, userID)
	todos, err := pgx.CollectRows(rows, rowToTodo)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todos, nil
}

const updateTodo = `-- name: UpdateTodo
UPDATE todos
SET description = $3,
    due_date = $4,
    is_completed = $5,
    is_important = $6,
    is_urgent = $7,
    completed_at = $8,
    status = $9
WHERE id = $1 AND user_id = $2
RETURNING ` + todoColumns

func (r *TodoRepo) Update(ctx context.Context, todo models.Todo) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, updateTodo,
		todo.ID, todo.UserID, todo.Description, todo.DueDate, todo.IsCompleted,
		todo.IsImportant, todo.IsUrgent, todo.CompletedAt, todo.Status)
	updated, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrTodoNotFound
	default:
		return updated, fmt.Errorf("db error: %w", err)
	}
}

const incrementPomodoro = `-- name: IncrementPomodoro
UPDATE todos
SET pomodoro_count = pomodoro_count + 1
WHERE id = $1 AND user_id = $2
RETURNING ` + todoColumns

func (r *TodoRepo) IncrementPomodoro(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, incrementPomodoro, todoID, userID)
	todo, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return todo, nil
	case errors.Is(err, pgx.ErrNoRows):
		return todo, apperrors.ErrTodoNotFound
	default:
		return todo, fmt.Errorf("db error: %w", err)
	}
}

const deleteTodo = `-- name: DeleteTodo
DELETE FROM todos
WHERE id = $1 AND user_id = $2
`

func (r *TodoRepo) Delete(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteTodo, todoID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrTodoNotFound
	}

	return nil
}

const deleteTodos = `-- name: DeleteTodos
DELETE FROM todos
WHERE user_id = $1 AND id = ANY($2)
`

func (r *TodoRepo) DeleteBatch(ctx context.Context, userID uuid.UUID, todoIDs []uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteTodos, userID, todoIDs)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToTodo(row pgx.CollectableRow) (models.Todo, error) {
	var t models.Todo
	err := row.Scan(
		&t.ID, &t.UserID, &t.Description, &t.DueDate, &t.IsCompleted,
		&t.IsImportant, &t.IsUrgent, &t.CreatedAt, &t.CompletedAt,
		&t.Status, &t.PomodoroCount)
	return t, err
}
