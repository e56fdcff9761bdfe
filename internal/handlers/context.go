package handlers

import (
	"context"

	"github.com/pomokan/pomokan/internal/models"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// NewContextWithClaims stores the verified access claims of the request
func NewContextWithClaims(ctx context.Context, claims models.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (models.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(models.AccessClaims)
	return claims, ok
}
