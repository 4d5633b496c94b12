package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"petfy/internal/platform/logger"
	"petfy/internal/platform/metrics"
	"petfy/internal/ports/kv"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid session id")

// WipeHook se ejecuta después de borrar los datos de una sesión (logout).
type WipeHook func(ctx context.Context, sessionID string)

// Manager abre, cachea y limpia sesiones sobre un store raíz compartido.
// El cache es solo memoria: una sesión desalojada se reabre desde el store.
type Manager struct {
	root kv.Store
	log  logger.Logger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	hooks    []WipeHook
}

func NewManager(root kv.Store, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		root:     root,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Global es el store sin namespace (clave users).
func (m *Manager) Global() kv.Store { return m.root }

// NewID genera un id de sesión nuevo.
func NewID() string { return uuid.NewString() }

// ValidID acepta solo UUIDs, así un cliente no puede elegir prefijos arbitrarios.
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// Open devuelve la sesión id, creándola si no está en memoria
// y restaurando currentUser desde el store.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		m.mu.Unlock()
		return s, nil
	}
	s := newSession(id, kv.Prefixed(m.root, KeyPrefix(id)))
	s.touch(m.now())
	m.sessions[id] = s
	metrics.SessionsOpen.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if err := s.restore(ctx); err != nil {
		m.drop(s)
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return s, nil
}

// Get devuelve una sesión solo si ya está abierta en este proceso.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[strings.TrimSpace(id)]
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// Len es la cantidad de sesiones en memoria.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict saca del cache las sesiones sin uso hace más de idle. Los datos
// quedan en el store. Una sesión con una transacción en curso no se toca.
func (m *Manager) Evict(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince(now) < idle {
			continue
		}
		if !s.txMu.TryLock() {
			continue
		}
		delete(m.sessions, id)
		s.txMu.Unlock()
		n++
	}
	metrics.SessionsOpen.Set(float64(len(m.sessions)))
	if n > 0 {
		m.log.Debug("idle sessions evicted", map[string]any{"evicted": n, "open": len(m.sessions)})
	}
	return n
}

// drop saca s del cache solo si sigue siendo la instancia registrada.
func (m *Manager) drop(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[s.id]; ok && cur == s {
		delete(m.sessions, s.id)
	}
	metrics.SessionsOpen.Set(float64(len(m.sessions)))
}

func (m *Manager) OnWipe(h WipeHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// sessionKeys son las claves fijas que borra un logout; además se borran todas las chat_*.
var sessionKeys = []string{
	kv.KeyCurrentUser,
	kv.KeyWalkRequests,
	kv.KeyWalkRatings,
	kv.KeyAppRating,
}

// Wipe borra todos los datos de la sesión (no toca users), la saca del cache y corre los hooks.
func (m *Manager) Wipe(ctx context.Context, s *Session) error {
	err := s.Update(func() error {
		s.epoch.Add(1)

		var errs []error
		for _, k := range sessionKeys {
			if err := s.store.Delete(ctx, k); err != nil {
				errs = append(errs, err)
			}
		}

		chats, err := s.store.Keys(ctx, kv.ChatPrefix)
		if err != nil {
			errs = append(errs, err)
		}
		for _, k := range chats {
			if err := s.store.Delete(ctx, k); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	s.setCached(nil)
	m.drop(s)

	m.mu.Lock()
	hooks := append([]WipeHook(nil), m.hooks...)
	m.mu.Unlock()
	for _, h := range hooks {
		h(ctx, s.id)
	}

	if err != nil {
		m.log.Error("session wipe incomplete", map[string]any{"session_id": s.id, "err": err})
		return err
	}
	m.log.Info("session wiped", map[string]any{"session_id": s.id})
	return nil
}
