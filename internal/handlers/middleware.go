package handlers

import (
	"strings"

	"github.com/lexora/translation-gateway/internal/auth"
	xhttp "github.com/lexora/translation-gateway/pkg/http"
)

// Middleware wraps a single route handler. Auth middleware is applied
// per-route at registration time because router groups carry no chain.
type Middleware func(xhttp.RequestHandler) xhttp.RequestHandler

const (
	userIDKey  = "user_id"
	isAdminKey = "is_admin"
)

// RequireAuth validates the bearer token and stores the caller's
// identity as request user-values for the wrapped handler.
func RequireAuth(secret string) Middleware {
	return func(next xhttp.RequestHandler) xhttp.RequestHandler {
		return func(ctx *xhttp.RequestCtx) {
			claims, err := bearerClaims(ctx, secret)
			if err != nil {
				writeError(ctx, 401, "unauthorized")
				return
			}
			ctx.SetUserValue(userIDKey, claims.UserID)
			ctx.SetUserValue(isAdminKey, claims.IsAdmin)
			next(ctx)
		}
	}
}

// RequireAdmin is RequireAuth plus the admin flag carried in the token.
func RequireAdmin(secret string) Middleware {
	authMw := RequireAuth(secret)
	return func(next xhttp.RequestHandler) xhttp.RequestHandler {
		return authMw(func(ctx *xhttp.RequestCtx) {
			if !isAdmin(ctx) {
				writeError(ctx, 403, "admin access required")
				return
			}
			next(ctx)
		})
	}
}

func bearerClaims(ctx *xhttp.RequestCtx, secret string) (*auth.Claims, error) {
	header := string(ctx.Request.Header.Peek("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, auth.ErrInvalidToken
	}
	return auth.ParseToken(token, secret)
}

func userID(ctx *xhttp.RequestCtx) string {
	id, _ := ctx.UserValue(userIDKey).(string)
	return id
}

func isAdmin(ctx *xhttp.RequestCtx) bool {
	admin, _ := ctx.UserValue(isAdminKey).(bool)
	return admin
}
