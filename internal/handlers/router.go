package handlers

import (
	"net/http"

	"github.com/pomokan/pomokan/internal/handlers/render"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth *AuthHandler,
	todos *TodoHandler,
	users *UserHandler,
	authMiddleware func(http.Handler) http.Handler,
	mds ...func(http.Handler) http.Handler,
) http.Handler {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /auth/register", auth.register)
	mux.HandleFunc("POST /auth/token", auth.login)
	mux.HandleFunc("POST /auth/refresh", auth.refresh)
	mux.Handle("POST /auth/logout", withAuth(auth.logout))

	mux.Handle("GET /users/me", withAuth(users.me))
	mux.Handle("PUT /users/password", withAuth(users.changePassword))

	mux.Handle("POST /todos", withAuth(todos.create))
	mux.Handle("GET /todos", withAuth(todos.list))
	mux.Handle("DELETE /todos/delete-batch", withAuth(todos.deleteBatch))
	mux.Handle("GET /todos/{id}", withAuth(todos.get))
	mux.Handle("PUT /todos/{id}", withAuth(todos.update))
	mux.Handle("PATCH /todos/{id}", withAuth(todos.patch))
	mux.Handle("DELETE /todos/{id}", withAuth(todos.delete))
	mux.Handle("PUT /todos/{id}/complete", withAuth(todos.complete))
	mux.Handle("PUT /todos/{id}/increment-pomodoro", withAuth(todos.incrementPomodoro))

	return chain(mux, mds...)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	type HealthResponse struct {
		Status string `json:"status"`
	}

	render.JSON(w, HealthResponse{Status: "ok"})
}
