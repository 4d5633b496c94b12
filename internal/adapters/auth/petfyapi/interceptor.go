package petfyapi

import (
	"net/http"
	"strings"

	"petfy/internal/ports/auth"
)

// Interceptor agrega Authorization: Basic a los requests hacia el backend
// cuando el contexto trae credenciales y el header no vino seteado.
type Interceptor struct {
	base string
	next http.RoundTripper
}

func NewInterceptor(baseURL string, next http.RoundTripper) *Interceptor {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Interceptor{
		base: strings.TrimRight(baseURL, "/") + "/",
		next: next,
	}
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") != "" || !strings.HasPrefix(req.URL.String(), i.base) {
		return i.next.RoundTrip(req)
	}

	creds, ok := auth.CredentialsFrom(req.Context())
	if !ok {
		return i.next.RoundTrip(req)
	}

	// RoundTrip no debe mutar el request original.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", auth.BasicHeader(creds))
	return i.next.RoundTrip(clone)
}
