package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrUnavailable: no hubo respuesta utilizable del backend (red, timeout, body inválido).
var ErrUnavailable = errors.New("auth backend unavailable")

// RejectedError es un rechazo del backend con mensaje propio.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("auth rejected: status=%d message=%s", e.StatusCode, e.Message)
}

// API es el backend remoto de autenticación.
// Las llamadas autenticadas toman las credenciales del contexto (WithCredentials).
type API interface {
	Register(ctx context.Context, req RegisterRequest) (Response, error)
	Login(ctx context.Context, req LoginRequest) (Response, error)
	CurrentUser(ctx context.Context) (User, error)
	ApplyWalker(ctx context.Context, app WalkerApplication) (Response, error)
}

type Credentials struct {
	Email    string
	Password string
}

type ctxKey struct{}

func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	c, ok := ctx.Value(ctxKey{}).(Credentials)
	if !ok || c.Email == "" {
		return Credentials{}, false
	}
	return c, true
}

// BasicHeader arma "Basic base64(email:password)".
func BasicHeader(c Credentials) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Email+":"+c.Password))
}
