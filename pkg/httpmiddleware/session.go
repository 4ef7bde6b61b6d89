package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// sessionKey is the context key for the session id value.
type sessionKey struct{}

// SessionFromContext extracts the opaque session id from the context.
// It returns an empty string if no session middleware ran.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}

// Session returns a middleware that ensures every request carries an opaque
// session identifier. A valid incoming cookie is reused; otherwise a new
// UUID v4 is minted and set on the response. The id is stored in the request
// context (retrieve with SessionFromContext) and is the key under which the
// session's cart lives.
func Session(cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cookieName); err == nil && isOpaqueID(c.Value) {
				id = c.Value
			}
			if id == "" {
				id = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
