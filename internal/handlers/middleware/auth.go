package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pomokan/pomokan/internal/handlers"
	"github.com/pomokan/pomokan/internal/handlers/render"
	"github.com/pomokan/pomokan/internal/models"
)

type authService interface {
	// Resolve identity from a bearer access token. Stateless check only
	Authenticate(ctx context.Context, accessToken string) (models.AccessClaims, error)
}

// AuthMiddleware verifies the Authorization bearer token and stores the
// decoded claims in the request context. Every protected route goes
// through here, nothing else touches token mechanics
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := as.Authenticate(r.Context(), token)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := handlers.NewContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}

	return token, true
}
