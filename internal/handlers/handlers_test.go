// External test package: the auth middleware imports handlers for the
// context helpers, so router level tests can't live inside the package
package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/pomokan/pomokan/internal/handlers"
	"github.com/pomokan/pomokan/internal/handlers/middleware"
	"github.com/pomokan/pomokan/internal/logger"
	"github.com/pomokan/pomokan/internal/repository/postgres"
	"github.com/pomokan/pomokan/internal/service/auth"
	"github.com/pomokan/pomokan/internal/service/auth/sessions"
	"github.com/pomokan/pomokan/internal/service/auth/tokencodec"
	"github.com/pomokan/pomokan/internal/service/todo"
	"github.com/pomokan/pomokan/internal/service/user"
	"github.com/pomokan/pomokan/internal/testutil"
)

// Run the full router with production services inside a rolled back
// transaction. Handler tests go through real http round trips
func withServer(dbpool *pgxpool.Pool, t *testing.T, fn func(url string)) {
	t.Helper()

	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)
		noopLogger := logger.NewNoOpLogger()

		codec, err := tokencodec.New(tokencodec.Config{
			SecretKey: "test-secret-key",
			AccessTTL: 15 * time.Minute,
		})
		require.NoError(t, err)

		sessionManager, err := sessions.New(sessions.Config{SessionTTL: 24 * time.Hour}, storage)
		require.NoError(t, err)

		authService, err := auth.NewService(auth.Config{}, codec, sessionManager, storage)
		require.NoError(t, err, "auth service starting error")

		mux := handlers.NewRouter(
			handlers.NewAuth(authService, noopLogger),
			handlers.NewTodo(todo.NewService(storage), noopLogger),
			handlers.NewUser(user.NewService(nil, storage.User()), noopLogger),
			middleware.AuthMiddleware(authService),
		)

		srv := httptest.NewServer(mux)
		defer srv.Close()

		fn(srv.URL)
	})
}

// doJSON sends a request with optional bearer token and json body
// The caller owns the response body
func doJSON(t *testing.T, method, url, token, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp, string(respBody)
}

// registerAndLogin creates a user over http and returns the token pair
func registerAndLogin(t *testing.T, url string) handlers.TokenResponse {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, url+"/auth/register", "",
		`{"email": "ivan@banka.org", "first_name": "Ivan", "last_name": "Ivanov", "password": "sup3r-password"}`)
	require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

	resp, body = doJSON(t, http.MethodPost, url+"/auth/token", "",
		`{"email": "ivan@banka.org", "password": "sup3r-password"}`)
	require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

	var tokens handlers.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(body), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	return tokens
}
