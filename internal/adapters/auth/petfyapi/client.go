package petfyapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"petfy/internal/platform/httpclient"
	"petfy/internal/platform/metrics"
	"petfy/internal/ports/auth"
)

var ErrNotConfigured = errors.New("petfy api client not configured")

// Config del cliente del backend Petfy.
// BaseURL incluye el prefijo /api (p.ej. http://localhost:8080/api).
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Opcional: transport base (tests). El interceptor se monta encima.
	Transport http.RoundTripper
}

// Client implementa auth.API contra el backend HTTP.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.NewWithTransport(cfg.Timeout, NewInterceptor(base, cfg.Transport)).WithBaseURL(base)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (auth.Response, error) {
	var out auth.Response
	err := c.http.DoJSON(ctx, http.MethodPost, "/auth/register", nil, req, &out)
	return out, observe("register", mapErr(err))
}

func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (auth.Response, error) {
	var out auth.Response
	err := c.http.DoJSON(ctx, http.MethodPost, "/auth/login", nil, req, &out)
	return out, observe("login", mapErr(err))
}

// CurrentUser devuelve el usuario sin envelope; requiere credenciales en ctx.
func (c *Client) CurrentUser(ctx context.Context) (auth.User, error) {
	var out auth.User
	err := c.http.DoJSON(ctx, http.MethodGet, "/auth/current-user", nil, nil, &out)
	return out, observe("current_user", mapErr(err))
}

// ApplyWalker manda la postulación como multipart: parte "request" (JSON)
// y parte "documentImage" (archivo).
func (c *Client) ApplyWalker(ctx context.Context, app auth.WalkerApplication) (auth.Response, error) {
	body, err := json.Marshal(app)
	if err != nil {
		return auth.Response{}, fmt.Errorf("marshal application: %w", err)
	}

	parts := []httpclient.Part{
		{Name: "request", FileName: "request.json", ContentType: "application/json", Data: body},
	}
	if len(app.Document) > 0 {
		name := app.DocumentName
		if name == "" {
			name = "document"
		}
		parts = append(parts, httpclient.Part{
			Name:        "documentImage",
			FileName:    name,
			ContentType: app.DocumentType,
			Data:        app.Document,
		})
	}

	var out auth.Response
	err = c.http.DoMultipart(ctx, "/paseadores/solicitar", nil, parts, &out)
	return out, observe("apply_walker", mapErr(err))
}

// mapErr: no-2xx => RejectedError (con el message del envelope si vino);
// cualquier otra falla => ErrUnavailable.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		var env auth.Response
		_ = json.Unmarshal([]byte(he.Body), &env)
		return &auth.RejectedError{
			StatusCode: he.StatusCode,
			Message:    strings.TrimSpace(env.Message),
		}
	}
	return fmt.Errorf("%w: %v", auth.ErrUnavailable, err)
}

func observe(op string, err error) error {
	outcome := "ok"
	var rej *auth.RejectedError
	switch {
	case err == nil:
	case errors.As(err, &rej):
		outcome = "rejected"
	default:
		outcome = "unavailable"
	}
	metrics.AuthCalls.WithLabelValues(op, outcome).Inc()
	return err
}
