package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"petfy/internal/ports/auth"
	"petfy/internal/ports/kv"
)

// Session es el estado de un dispositivo: su usuario actual y su sub-espacio del store.
type Session struct {
	id    string
	store kv.Store

	// txMu serializa secuencias leer-modificar-escribir sobre el store.
	txMu sync.Mutex

	mu      sync.RWMutex
	user    *User
	subs    map[int]func(*User)
	nextSub int

	epoch atomic.Uint64

	// lastSeen en unix nanos; lo usa Manager.Evict.
	lastSeen atomic.Int64
}

func newSession(id string, store kv.Store) *Session {
	return &Session{
		id:    id,
		store: store,
		subs:  make(map[int]func(*User)),
	}
}

func (s *Session) ID() string { return s.id }

// Store devuelve el store de la sesión (claves sin prefijo).
func (s *Session) Store() kv.Store { return s.store }

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Epoch cambia en cada Wipe. Sirve para descartar trabajo diferido de una sesión ya cerrada.
func (s *Session) Epoch() uint64 { return s.epoch.Load() }

func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) LoggedIn() bool {
	_, ok := s.CurrentUser()
	return ok
}

// SetUser persiste currentUser y notifica a los suscriptores. nil = sin usuario.
func (s *Session) SetUser(ctx context.Context, u *User) error {
	if u == nil {
		if err := s.store.Delete(ctx, kv.KeyCurrentUser); err != nil {
			return err
		}
	} else if err := kv.WriteJSON(ctx, s.store, kv.KeyCurrentUser, u); err != nil {
		return err
	}

	s.setCached(u)
	return nil
}

func (s *Session) setCached(u *User) {
	var cp *User
	if u != nil {
		v := *u
		cp = &v
	}

	s.mu.Lock()
	s.user = cp
	subs := make([]func(*User), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		var arg *User
		if cp != nil {
			v := *cp
			arg = &v
		}
		fn(arg)
	}
}

// Subscribe registra fn para cada cambio de usuario y la llama con el valor actual.
// Devuelve la función para desuscribirse.
func (s *Session) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	var cur *User
	if s.user != nil {
		v := *s.user
		cur = &v
	}
	s.mu.Unlock()

	fn(cur)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Authorization devuelve "Basic base64(email:password)" o "" sin usuario.
func (s *Session) Authorization() string {
	u, ok := s.CurrentUser()
	if !ok {
		return ""
	}
	return auth.BasicHeader(u.Credentials())
}

// Context agrega las credenciales del usuario actual (para el interceptor del backend).
func (s *Session) Context(ctx context.Context) context.Context {
	u, ok := s.CurrentUser()
	if !ok {
		return ctx
	}
	return auth.WithCredentials(ctx, u.Credentials())
}

// Update corre fn con el lock transaccional de la sesión.
func (s *Session) Update(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn()
}

// restore carga currentUser desde el store. JSON corrupto => sin usuario.
func (s *Session) restore(ctx context.Context) error {
	var u User
	found, err := kv.ReadJSON(ctx, s.store, kv.KeyCurrentUser, &u)
	if errors.Is(err, kv.ErrMalformed) {
		return nil
	}
	if err != nil {
		return err
	}
	if found {
		s.setCached(&u)
	}
	return nil
}
