package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/apperrors"
	"github.com/pomokan/pomokan/internal/handlers/render"
	"github.com/pomokan/pomokan/internal/logger"
	"github.com/pomokan/pomokan/internal/models"
)

type userService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, confirmPassword string) error
}

type UserHandler struct {
	userService userService
	logger      logger.Logger
}

func NewUser(users userService, l logger.Logger) *UserHandler {
	return &UserHandler{userService: users, logger: l}
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	type UserResponse struct {
		ID        uuid.UUID `json:"id"`
		Email     string    `json:"email"`
		FirstName string    `json:"first_name"`
		LastName  string    `json:"last_name"`
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Error("Failed to get user", "error", err, "user_id", claims.UserID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	type PasswordChangeRequest struct {
		CurrentPassword    string `json:"current_password" validate:"required"`
		NewPassword        string `json:"new_password" validate:"required,min=8"`
		NewPasswordConfirm string `json:"new_password_confirm" validate:"required"`
	}
	type PasswordChangeResponse struct {
		Message string `json:"message"`
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[PasswordChangeRequest](w, r)
	if err != nil {
		return
	}

	err = h.userService.ChangePassword(r.Context(), claims.UserID,
		data.CurrentPassword, data.NewPassword, data.NewPasswordConfirm)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidPassword):
			render.ServiceError(w, "Current password is incorrect", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrPasswordMismatch):
			render.ServiceError(w, "New passwords do not match", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Error("Failed to change password", "error", err, "user_id", claims.UserID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, PasswordChangeResponse{Message: "Password changed successfully"})
}
