package middleware

import (
	"context"
	"net/http"
	"strings"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/pkg/jwt"
	"coworking-reservation-server/pkg/response"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
)

func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Unauthorized(w, "Missing or malformed authorization header")
				return
			}

			claims, err := jwt.ValidateAccessToken(token, jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			role := domain.Role(claims.Role)
			if !role.Valid() {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			if meta := requestMetaFrom(r.Context()); meta != nil {
				meta.userID = claims.UserID
			}

			ctx := WithIdentity(r.Context(), claims.UserID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not in roles. It must run after
// AuthMiddleware.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetRole(r)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "Insufficient role")
		})
	}
}

func RequirePermission(p domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetRole(r).Has(p) {
				response.Forbidden(w, "Missing permission: "+string(p))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity stores the authenticated caller on ctx.
func WithIdentity(ctx context.Context, userID string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func GetRole(r *http.Request) domain.Role {
	role, ok := r.Context().Value(RoleKey).(domain.Role)
	if !ok {
		return ""
	}
	return role
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
