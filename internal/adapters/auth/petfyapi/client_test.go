package petfyapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petfy/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))

		var in auth.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ana@mail.com", in.Email)

		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"username":"ana","email":"ana@mail.com","role":"walker"}}`))
	}))

	resp, err := c.Login(context.Background(), auth.LoginRequest{Email: "ana@mail.com", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "walker", resp.Data.Role)
}

func TestClient_RejectedUsesServerMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Credenciales inválidas"}`))
	}))

	_, err := c.Login(context.Background(), auth.LoginRequest{Email: "ana@mail.com", Password: "bad"})

	var rej *auth.RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, http.StatusUnauthorized, rej.StatusCode)
	assert.Equal(t, "Credenciales inválidas", rej.Message)
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/api"
	srv.Close()

	c, err := NewClient(Config{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Register(context.Background(), auth.RegisterRequest{Username: "ana"})
	assert.True(t, errors.Is(err, auth.ErrUnavailable))
}

func TestClient_CurrentUserSendsBasicAuth(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, pass, ok := r.BasicAuth()
		if !ok || email != "ana@mail.com" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"username":"ana","email":"ana@mail.com","role":"walker"}`))
	}))

	ctx := auth.WithCredentials(context.Background(), auth.Credentials{Email: "ana@mail.com", Password: "secret"})
	u, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	_, err = c.CurrentUser(context.Background())
	var rej *auth.RejectedError
	assert.True(t, errors.As(err, &rej))
}

func TestClient_ApplyWalkerMultipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/paseadores/solicitar", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		f, _, err := r.FormFile("request")
		if !assert.NoError(t, err) {
			return
		}
		var app auth.WalkerApplication
		assert.NoError(t, json.NewDecoder(f).Decode(&app))
		assert.Equal(t, "1122334455", app.Phone)
		assert.Equal(t, "cascuino", app.ValidationCode)

		doc, hdr, err := r.FormFile("documentImage")
		if !assert.NoError(t, err) {
			return
		}
		b, _ := io.ReadAll(doc)
		assert.Equal(t, "dni.png", hdr.Filename)
		assert.Equal(t, []byte("PNG"), b)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"Solicitud aprobada"}`))
	}))

	ctx := auth.WithCredentials(context.Background(), auth.Credentials{Email: "ana@mail.com", Password: "secret"})
	resp, err := c.ApplyWalker(ctx, auth.WalkerApplication{
		Phone:          "1122334455",
		Description:    "Amo los perros",
		ValidationCode: "cascuino",
		DocumentName:   "dni.png",
		DocumentType:   "image/png",
		Document:       []byte("PNG"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
