package middleware

import (
	"context"
	"net/http"
	"strings"

	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

const identityKey contextKey = "identity"

type TokenParser interface {
	ParseAccess(token string) (*models.Claims, error)
}

// Authenticate requires a valid bearer access token and stores the caller's
// identity in the request context.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				util.WriteJSONError(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				util.WriteJSONError(w, "invalid Authorization format", http.StatusUnauthorized)
				return
			}

			claims, err := parser.ParseAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				util.ErrResponseInJson(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity())))
		})
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				util.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			util.WriteJSONError(w, "forbidden: role "+string(id.Role)+" may not access this resource", http.StatusForbidden)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			util.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !id.IsAdmin {
			util.WriteJSONError(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// CurrentIdentity returns the caller or writes 401 when the request was not
// authenticated.
func CurrentIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		util.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}
