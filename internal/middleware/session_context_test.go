package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"petfy/internal/adapters/storage/memory"
	"petfy/internal/domain/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionContext_CreatesAndReusesSession(t *testing.T) {
	m := session.NewManager(memory.NewStore(), nil)

	var seen []string
	h := SessionContext(m, "petfy_session", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := GetSession(r.Context())
		require.True(t, ok)
		seen = append(seen, s.ID())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	id := rec.Header().Get(SessionHeader)
	require.True(t, session.ValidID(id))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// mismo id por cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "petfy_session", Value: id})
	h.ServeHTTP(httptest.NewRecorder(), req)

	// un id inválido en el header genera sesión nueva
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "../../etc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, seen, 3)
	assert.Equal(t, id, seen[1])
	assert.NotEqual(t, id, seen[2])
}

func TestRequireUser(t *testing.T) {
	m := session.NewManager(memory.NewStore(), nil)
	h := SessionContext(m, "petfy_session", nil)(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
