package middleware

import (
	"context"
	"net/http"
	"strings"

	"petfy/internal/domain/session"
	"petfy/internal/platform/logger"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionHeader es la alternativa a la cookie para clientes no-browser.
const SessionHeader = "X-Session-ID"

// SessionContext resuelve la sesión del dispositivo:
// - header X-Session-ID, si no cookie; si falta o no es válida => sesión nueva.
// - siempre devuelve el id efectivo en header y cookie.
func SessionContext(m *session.Manager, cookieName string, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(SessionHeader))
			if id == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					id = strings.TrimSpace(c.Value)
				}
			}
			if !session.ValidID(id) {
				id = session.NewID()
			}

			s, err := m.Open(r.Context(), id)
			if err != nil {
				log.Error("open session failed", map[string]any{"session_id": id, "err": err})
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			w.Header().Set(SessionHeader, s.ID())
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    s.ID(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}

// RequireUser corta con 401 si la sesión no tiene usuario.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := GetSession(r.Context())
		if !ok || !s.LoggedIn() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
