package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/insightboard/internal/core"
)

// SessionHeader lets API clients without cookies pick their session.
const SessionHeader = "X-Session-ID"

// Session assigns every request a session ID. The ID comes from the
// X-Session-ID header, then the cookie, and is otherwise minted with
// uuid and set as an HttpOnly cookie. Values that are not UUIDs are replaced.
func Session(cookieName string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := requestSessionID(r, cookieName)
			if !ok {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := core.ContextWithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestSessionID(r *http.Request, cookieName string) (string, bool) {
	if h := r.Header.Get(SessionHeader); h != "" {
		if id, err := uuid.Parse(h); err == nil {
			return id.String(), true
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), true
		}
	}
	return "", false
}
