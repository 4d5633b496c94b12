package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound  = errors.New("kv: key not found")
	ErrMalformed = errors.New("kv: malformed value")
)

// Claves fijas que usa la app (mismo layout que el cliente original).
const (
	KeyCurrentUser  = "currentUser"
	KeyWalkRequests = "walkRequests"
	KeyWalkRatings  = "walkRatings"
	KeyAppRating    = "appRating"

	// KeyUsers es global: no pertenece a ninguna sesión y logout no la borra.
	KeyUsers = "users"

	ChatPrefix = "chat_"
)

// ChatKey arma la clave de una conversación: chat_<requestId>_<walker>.
func ChatKey(requestID int64, walker string) string {
	return ChatPrefix + strconv.FormatInt(requestID, 10) + "_" + walker
}

// Store es el key-value store donde vive todo el estado del cliente.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys devuelve las claves que empiezan con prefix, ordenadas.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ReadJSON decodifica key en out.
// Devuelve (false, nil) si no existe y (false, ErrMalformed) si el JSON no parsea;
// en ambos casos out queda intacto.
func ReadJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: key=%s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

func WriteJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

type prefixed struct {
	inner  Store
	prefix string
}

// Prefixed expone un sub-espacio de inner: las claves se guardan como prefix+key
// y Keys las devuelve sin el prefijo.
func Prefixed(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := p.inner.Keys(ctx, p.prefix+prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, p.prefix))
	}
	return out, nil
}
