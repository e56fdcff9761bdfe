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

type authService interface {
	// Register user. No session is created: registration is not a login
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, email, firstName, lastName, password string) (models.User, error)

	// Login with email and password
	// Has to return apperrors.ErrAuthenticationFailed on any credential failure
	Login(ctx context.Context, email, password string) (models.TokenPair, error)

	// Refresh rotates the session and returns a fresh token pair
	// If session expired: has to return apperrors.ErrSessionExpired
	// If session not found (or token replayed): apperrors.ErrSessionNotFound
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Logout revokes the user session, idempotent
	Logout(ctx context.Context, userID uuid.UUID) error
}

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(auth authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{authService: auth, logger: l}
}

// TokenResponse is the wire form of an issued token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func newTokenResponse(pair models.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		TokenType:    "bearer",
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email     string `json:"email" validate:"required,email"`
		FirstName string `json:"first_name" validate:"required,max=50"`
		LastName  string `json:"last_name" validate:"max=50"`
		Password  string `json:"password" validate:"required,min=8"`
	}
	type RegisterSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	_, err = h.authService.Register(r.Context(), data.Email, data.FirstName, data.LastName, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			h.logger.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, RegisterSuccessResponse{Message: "User registered successfully"}, http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAuthenticationFailed):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		default:
			h.logger.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, newTokenResponse(pair))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionExpired):
			render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrSessionNotFound):
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
		default:
			h.logger.Error("Failed to refresh tokens", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, newTokenResponse(pair))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.authService.Logout(r.Context(), claims.UserID); err != nil {
		h.logger.Error("Failed to logout user", "error", err, "user_id", claims.UserID)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.NoContent(w)
}
