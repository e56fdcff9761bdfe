package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomokan/pomokan/internal/handlers"
	"github.com/pomokan/pomokan/internal/testutil"
)

func Test_TodoHandler(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	createTodo := func(t *testing.T, url, token, description string) handlers.TodoResponse {
		t.Helper()

		resp, body := doJSON(t, http.MethodPost, url+"/todos", token,
			fmt.Sprintf(`{"description": %q}`, description))
		require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

		var created handlers.TodoResponse
		require.NoError(t, json.Unmarshal([]byte(body), &created))
		return created
	}

	t.Run("create todo", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)

			resp, body := doJSON(t, http.MethodPost, url+"/todos", tokens.AccessToken,
				`{"description": "write report", "is_important": true}`)

			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			var created handlers.TodoResponse
			require.NoError(t, json.Unmarshal([]byte(body), &created))
			assert.Equal(t, "write report", created.Description)
			assert.Equal(t, "to_do", created.Status, "status defaults to to_do")
			assert.True(t, created.IsImportant)
			assert.False(t, created.IsCompleted)
			assert.Zero(t, created.PomodoroCount)
		})
	})

	t.Run("create requires description", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)

			resp, body := doJSON(t, http.MethodPost, url+"/todos", tokens.AccessToken, `{}`)
			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("create rejects unknown status", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)

			resp, body := doJSON(t, http.MethodPost, url+"/todos", tokens.AccessToken,
				`{"description": "task", "status": "done"}`)
			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("list own todos", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			createTodo(t, url, tokens.AccessToken, "first")
			createTodo(t, url, tokens.AccessToken, "second")

			resp, body := doJSON(t, http.MethodGet, url+"/todos", tokens.AccessToken, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var todos []handlers.TodoResponse
			require.NoError(t, json.Unmarshal([]byte(body), &todos))
			require.Len(t, todos, 2)
			assert.Equal(t, "first", todos[0].Description)
			assert.Equal(t, "second", todos[1].Description)
		})
	})

	t.Run("get by id", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			created := createTodo(t, url, tokens.AccessToken, "task")

			resp, body := doJSON(t, http.MethodGet, url+"/todos/"+created.ID.String(), tokens.AccessToken, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("get not existed todo", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)

			resp, body := doJSON(t, http.MethodGet, url+"/todos/07a7e8a0-25ec-4ca0-9e0f-bbd85a73b22c", tokens.AccessToken, "")
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Todo not found"
				}`, body)
		})
	})

	t.Run("get with malformed id", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)

			resp, body := doJSON(t, http.MethodGet, url+"/todos/not-a-uuid", tokens.AccessToken, "")
			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("update", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			created := createTodo(t, url, tokens.AccessToken, "draft")

			resp, body := doJSON(t, http.MethodPut, url+"/todos/"+created.ID.String(), tokens.AccessToken,
				`{"description": "final", "status": "in_progress", "is_urgent": true}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var updated handlers.TodoResponse
			require.NoError(t, json.Unmarshal([]byte(body), &updated))
			assert.Equal(t, "final", updated.Description)
			assert.Equal(t, "in_progress", updated.Status)
			assert.True(t, updated.IsUrgent)
		})
	})

	t.Run("patch single field", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			created := createTodo(t, url, tokens.AccessToken, "keep me")

			resp, body := doJSON(t, http.MethodPatch, url+"/todos/"+created.ID.String(), tokens.AccessToken,
				`{"status": "in_progress"}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var patched handlers.TodoResponse
			require.NoError(t, json.Unmarshal([]byte(body), &patched))
			assert.Equal(t, "in_progress", patched.Status)
			assert.Equal(t, "keep me", patched.Description, "not patched fields must survive")
		})
	})

	t.Run("complete", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			created := createTodo(t, url, tokens.AccessToken, "finish me")

			resp, body := doJSON(t, http.MethodPut, url+"/todos/"+created.ID.String()+"/complete", tokens.AccessToken, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var completed handlers.TodoResponse
			require.NoError(t, json.Unmarshal([]byte(body), &completed))
			assert.True(t, completed.IsCompleted)
			assert.Equal(t, "completed", completed.Status)
			assert.NotNil(t, completed.CompletedAt)
		})
	})

	t.Run("increment pomodoro", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			created := createTodo(t, url, tokens.AccessToken, "focus task")

			resp, body := doJSON(t, http.MethodPut, url+"/todos/"+created.ID.String()+"/increment-pomodoro", tokens.AccessToken, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var got handlers.TodoResponse
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, 1, got.PomodoroCount)
		})
	})

	t.Run("delete", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			created := createTodo(t, url, tokens.AccessToken, "done with this")

			resp, body := doJSON(t, http.MethodDelete, url+"/todos/"+created.ID.String(), tokens.AccessToken, "")
			require.Equalf(t, http.StatusNoContent, resp.StatusCode, "not expected code. Body: %s", body)

			resp, body = doJSON(t, http.MethodDelete, url+"/todos/"+created.ID.String(), tokens.AccessToken, "")
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("delete batch", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			tokens := registerAndLogin(t, url)
			first := createTodo(t, url, tokens.AccessToken, "first")
			second := createTodo(t, url, tokens.AccessToken, "second")

			resp, body := doJSON(t, http.MethodDelete, url+"/todos/delete-batch", tokens.AccessToken,
				fmt.Sprintf(`{"todo_ids": [%q, %q]}`, first.ID, second.ID))
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"deleted_count": 2,
					"message": "Todos deleted"
				}`, body)
		})
	})

	t.Run("todos require auth", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string) {
			resp, body := doJSON(t, http.MethodGet, url+"/todos", "", "")
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})
}
