package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"

	"petfy/internal/domain/session"
	"petfy/internal/platform/logger"
	"petfy/internal/ports/auth"
	"petfy/internal/ports/kv"
)

type Service struct {
	api      auth.API
	sessions *session.Manager
	log      logger.Logger

	// usersMu protege la clave global users.
	usersMu sync.Mutex
}

func NewService(api auth.API, sessions *session.Manager, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		api:      api,
		sessions: sessions,
		log:      log,
	}
}

// Result es el resultado de register/login: el usuario cacheado y el mensaje a mostrar.
type Result struct {
	User    session.User
	Message string
}

// Register valida localmente y recién después llama al backend.
func (s *Service) Register(ctx context.Context, sess *session.Session, in RegisterInput) (Result, error) {
	if err := validateRegister(in); err != nil {
		return Result{}, err
	}

	req := auth.RegisterRequest{
		Username:        strings.TrimSpace(in.Username),
		Email:           strings.TrimSpace(in.Email),
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return Result{}, s.upstreamError("register", err, MsgRegisterError)
	}
	return s.adopt(ctx, sess, resp, in.Password, MsgRegistered, MsgRegisterError)
}

func (s *Service) Login(ctx context.Context, sess *session.Session, in LoginInput) (Result, error) {
	if err := validateLogin(in); err != nil {
		return Result{}, err
	}

	resp, err := s.api.Login(ctx, auth.LoginRequest{Email: strings.TrimSpace(in.Email), Password: in.Password})
	if err != nil {
		return Result{}, s.upstreamError("login", err, MsgLoginError)
	}
	return s.adopt(ctx, sess, resp, in.Password, MsgLoggedIn, MsgLoginError)
}

// adopt cachea el usuario de una respuesta exitosa (rol por defecto customer,
// password tomada del input).
func (s *Service) adopt(ctx context.Context, sess *session.Session, resp auth.Response, password, okMsg, failMsg string) (Result, error) {
	if !resp.Success || resp.Data == nil {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = failMsg
		}
		return Result{}, &Error{Kind: ErrRejected, Message: msg}
	}

	u := session.User{
		Username: resp.Data.Username,
		Email:    resp.Data.Email,
		Password: password,
		Role:     auth.NormalizeRole(resp.Data.Role),
	}
	if err := sess.SetUser(ctx, &u); err != nil {
		return Result{}, err
	}

	msg := strings.TrimSpace(resp.Message)
	if msg == "" {
		msg = okMsg
	}
	s.log.Info("user signed in", map[string]any{"session_id": sess.ID(), "email": u.Email, "role": string(u.Role)})
	return Result{User: u, Message: msg}, nil
}

func (s *Service) upstreamError(op string, err error, fallback string) error {
	var rej *auth.RejectedError
	if errors.As(err, &rej) {
		msg := rej.Message
		if msg == "" {
			msg = fallback
		}
		return &Error{Kind: ErrRejected, Message: msg}
	}

	s.log.Warn("auth backend unavailable", map[string]any{"op": op, "err": err})
	return &Error{Kind: ErrUnavailable, Message: MsgConnection}
}

// Logout borra todos los datos de la sesión.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	return s.sessions.Wipe(ctx, sess)
}

func (s *Service) CurrentUser(sess *session.Session) (session.User, bool) {
	return sess.CurrentUser()
}

func (s *Service) IsWalker(sess *session.Session) bool {
	u, ok := sess.CurrentUser()
	return ok && u.IsWalker()
}

// SetWalkerRole eleva localmente al usuario actual: actualiza su entrada en users
// (si existe) y el usuario cacheado.
func (s *Service) SetWalkerRole(ctx context.Context, sess *session.Session) error {
	u, ok := sess.CurrentUser()
	if !ok {
		return ErrNotLoggedIn
	}

	if err := s.markWalkerInUsers(ctx, u.Email); err != nil {
		return err
	}

	u.Role = auth.RoleWalker
	return sess.SetUser(ctx, &u)
}

func (s *Service) markWalkerInUsers(ctx context.Context, email string) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	global := s.sessions.Global()

	// map para no perder campos que no conocemos.
	var users []map[string]any
	found, err := kv.ReadJSON(ctx, global, kv.KeyUsers, &users)
	if errors.Is(err, kv.ErrMalformed) {
		return nil
	}
	if err != nil || !found {
		return err
	}

	for i := range users {
		if e, _ := users[i]["email"].(string); e == email {
			users[i]["role"] = string(auth.RoleWalker)
			return kv.WriteJSON(ctx, global, kv.KeyUsers, users)
		}
	}
	return nil
}

// Refresh trae el usuario del backend y sincroniza username/email/rol.
// Si falla, el usuario cacheado queda como estaba.
func (s *Service) Refresh(ctx context.Context, sess *session.Session) (session.User, error) {
	u, ok := sess.CurrentUser()
	if !ok {
		return session.User{}, ErrNotLoggedIn
	}

	remote, err := s.api.CurrentUser(sess.Context(ctx))
	if err != nil {
		s.log.Warn("refresh current user failed", map[string]any{"session_id": sess.ID(), "err": err})
		return u, s.upstreamError("current_user", err, MsgConnection)
	}

	if remote.Username != "" {
		u.Username = remote.Username
	}
	if remote.Email != "" {
		u.Email = remote.Email
	}
	u.Role = auth.NormalizeRole(remote.Role)

	if err := sess.SetUser(ctx, &u); err != nil {
		return session.User{}, err
	}
	return u, nil
}

// UpdateProfile cambia el nombre visible del usuario cacheado.
func (s *Service) UpdateProfile(ctx context.Context, sess *session.Session, username string) (session.User, error) {
	u, ok := sess.CurrentUser()
	if !ok {
		return session.User{}, ErrNotLoggedIn
	}
	if !ValidUsername(username) {
		return session.User{}, invalid("username", MsgUsernameLength)
	}

	u.Username = strings.TrimSpace(username)
	if err := sess.SetUser(ctx, &u); err != nil {
		return session.User{}, err
	}
	return u, nil
}
