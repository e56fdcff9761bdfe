package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/apperrors"
	"github.com/pomokan/pomokan/internal/handlers/render"
	"github.com/pomokan/pomokan/internal/logger"
	"github.com/pomokan/pomokan/internal/models"
	"github.com/pomokan/pomokan/internal/service/todo"
)

type todoService interface {
	Create(ctx context.Context, userID uuid.UUID, in todo.CreateTodo) (models.Todo, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Todo, error)
	Get(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error)
	Update(ctx context.Context, userID uuid.UUID, todoID uuid.UUID, in todo.CreateTodo) (models.Todo, error)
	ApplyPatch(ctx context.Context, userID uuid.UUID, todoID uuid.UUID, patch todo.Patch) (models.Todo, error)
	Complete(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error)
	IncrementPomodoro(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) (models.Todo, error)
	Delete(ctx context.Context, userID uuid.UUID, todoID uuid.UUID) error
	DeleteBatch(ctx context.Context, userID uuid.UUID, todoIDs []uuid.UUID) (int64, error)
}

type TodoHandler struct {
	todoService todoService
	logger      logger.Logger
}

func NewTodo(todos todoService, l logger.Logger) *TodoHandler {
	return &TodoHandler{todoService: todos, logger: l}
}

// Writable fields, shared by create and full update
type TodoRequest struct {
	Description string     `json:"description" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status" validate:"omitempty,oneof=to_do in_progress completed"`
	IsImportant bool       `json:"is_important"`
	IsUrgent    bool       `json:"is_urgent"`
}

type TodoResponse struct {
	ID            uuid.UUID  `json:"id"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"due_date"`
	Status        string     `json:"status"`
	IsImportant   bool       `json:"is_important"`
	IsUrgent      bool       `json:"is_urgent"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	PomodoroCount int        `json:"pomodoro_count"`
}

func newTodoResponse(t models.Todo) TodoResponse {
	return TodoResponse{
		ID:            t.ID,
		Description:   t.Description,
		DueDate:       t.DueDate,
		Status:        t.Status,
		IsImportant:   t.IsImportant,
		IsUrgent:      t.IsUrgent,
		IsCompleted:   t.IsCompleted,
		CompletedAt:   t.CompletedAt,
		CreatedAt:     t.CreatedAt,
		PomodoroCount: t.PomodoroCount,
	}
}

func (h *TodoHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[TodoRequest](w, r)
	if err != nil {
		return
	}

	created, err := h.todoService.Create(r.Context(), claims.UserID, todo.CreateTodo{
		Description: data.Description,
		DueDate:     data.DueDate,
		Status:      data.Status,
		IsImportant: data.IsImportant,
		IsUrgent:    data.IsUrgent,
	})
	if err != nil {
		h.logger.Error("Failed to create todo", "error", err, "user_id", claims.UserID)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSONWithStatus(w, newTodoResponse(created), http.StatusCreated)
}

func (h *TodoHandler) list(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	todos, err := h.todoService.List(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("Failed to list todos", "error", err, "user_id", claims.UserID)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]TodoResponse, 0, len(todos))
	for _, t := range todos {
		response = append(response, newTodoResponse(t))
	}

	render.JSON(w, response)
}

func (h *TodoHandler) get(w http.ResponseWriter, r *http.Request) {
	h.respondWithTodo(w, r, func(ctx context.Context, userID, todoID uuid.UUID) (models.Todo, error) {
		return h.todoService.Get(ctx, userID, todoID)
	})
}

func (h *TodoHandler) update(w http.ResponseWriter, r *http.Request) {
	data, err := render.BindAndValidate[TodoRequest](w, r)
	if err != nil {
		return
	}

	h.respondWithTodo(w, r, func(ctx context.Context, userID, todoID uuid.UUID) (models.Todo, error) {
		return h.todoService.Update(ctx, userID, todoID, todo.CreateTodo{
			Description: data.Description,
			DueDate:     data.DueDate,
			Status:      data.Status,
			IsImportant: data.IsImportant,
			IsUrgent:    data.IsUrgent,
		})
	})
}

func (h *TodoHandler) patch(w http.ResponseWriter, r *http.Request) {
	type PatchRequest struct {
		Description *string    `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		Status      *string    `json:"status" validate:"omitempty,oneof=to_do in_progress completed"`
		IsImportant *bool      `json:"is_important"`
		IsUrgent    *bool      `json:"is_urgent"`
	}

	data, err := render.BindAndValidate[PatchRequest](w, r)
	if err != nil {
		return
	}

	h.respondWithTodo(w, r, func(ctx context.Context, userID, todoID uuid.UUID) (models.Todo, error) {
		return h.todoService.ApplyPatch(ctx, userID, todoID, todo.Patch{
			Description: data.Description,
			DueDate:     data.DueDate,
			Status:      data.Status,
			IsImportant: data.IsImportant,
			IsUrgent:    data.IsUrgent,
		})
	})
}

func (h *TodoHandler) complete(w http.ResponseWriter, r *http.Request) {
	h.respondWithTodo(w, r, h.todoService.Complete)
}

func (h *TodoHandler) incrementPomodoro(w http.ResponseWriter, r *http.Request) {
	h.respondWithTodo(w, r, h.todoService.IncrementPomodoro)
}

func (h *TodoHandler) delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	todoID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid todo id", http.StatusBadRequest)
		return
	}

	err = h.todoService.Delete(r.Context(), claims.UserID, todoID)
	switch {
	case err == nil:
		render.NoContent(w)
	case errors.Is(err, apperrors.ErrTodoNotFound):
		render.ServiceError(w, "Todo not found", http.StatusNotFound)
	default:
		h.logger.Error("Failed to delete todo", "error", err, "user_id", claims.UserID)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *TodoHandler) deleteBatch(w http.ResponseWriter, r *http.Request) {
	type BatchDeleteRequest struct {
		TodoIDs []uuid.UUID `json:"todo_ids" validate:"required,min=1"`
	}
	type BatchDeleteResponse struct {
		DeletedCount int64  `json:"deleted_count"`
		Message      string `json:"message"`
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[BatchDeleteRequest](w, r)
	if err != nil {
		return
	}

	deleted, err := h.todoService.DeleteBatch(r.Context(), claims.UserID, data.TodoIDs)
	if err != nil {
		h.logger.Error("Failed to batch delete todos", "error", err, "user_id", claims.UserID)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, BatchDeleteResponse{DeletedCount: deleted, Message: "Todos deleted"})
}

// respondWithTodo parses the todo id, runs op and renders the result with
// the shared error mapping
func (h *TodoHandler) respondWithTodo(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, todoID uuid.UUID) (models.Todo, error)) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	todoID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid todo id", http.StatusBadRequest)
		return
	}

	result, err := op(r.Context(), claims.UserID, todoID)
	switch {
	case err == nil:
		render.JSON(w, newTodoResponse(result))
	case errors.Is(err, apperrors.ErrTodoNotFound):
		render.ServiceError(w, "Todo not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		render.ServiceError(w, "Database temporarily unavailable. Please try again.", http.StatusServiceUnavailable)
	default:
		h.logger.Error("Todo operation failed", "error", err, "user_id", claims.UserID, "todo_id", todoID)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
