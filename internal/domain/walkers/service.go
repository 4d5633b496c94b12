package walkers

import (
	"context"
	"errors"
	"strings"
	"time"

	"petfy/internal/domain/session"
	"petfy/internal/platform/logger"
	"petfy/internal/ports/auth"
	"petfy/internal/ports/events"
)

// Accounts es lo que el onboarding necesita del servicio de cuentas.
type Accounts interface {
	SetWalkerRole(ctx context.Context, sess *session.Session) error
	Refresh(ctx context.Context, sess *session.Session) (session.User, error)
}

type Service struct {
	api      auth.API
	accounts Accounts
	mode     Mode
	pub      events.Publisher
	log      logger.Logger
	now      func() time.Time
}

func NewService(api auth.API, accounts Accounts, mode Mode, pub events.Publisher, log logger.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if mode != ModeServer {
		mode = ModeLocal
	}
	return &Service{api: api, accounts: accounts, mode: mode, pub: pub, log: log, now: time.Now}
}

func (s *Service) Mode() Mode { return s.mode }

func validate(app Application) error {
	switch {
	case len(app.Document) == 0:
		return &Error{Kind: ErrInvalidInput, Field: "documentImage", Message: MsgDocumentRequired}
	case strings.TrimSpace(app.Phone) == "":
		return &Error{Kind: ErrInvalidInput, Field: "phone", Message: MsgPhoneRequired}
	case strings.TrimSpace(app.Description) == "":
		return &Error{Kind: ErrInvalidInput, Field: "description", Message: MsgDescriptionRequired}
	}
	return nil
}

// Apply procesa la postulación del usuario actual.
// local: eleva el rol directamente. server: postula al backend y, si lo aprobó,
// sincroniza el rol con current-user.
func (s *Service) Apply(ctx context.Context, sess *session.Session, app Application) (Result, error) {
	u, ok := sess.CurrentUser()
	if !ok {
		return Result{}, ErrNotLoggedIn
	}
	if err := validate(app); err != nil {
		return Result{}, err
	}
	app.Phone = strings.TrimSpace(app.Phone)
	app.Description = strings.TrimSpace(app.Description)
	app.ValidationCode = strings.TrimSpace(app.ValidationCode)

	var (
		res Result
		err error
	)
	if s.mode == ModeServer {
		res, err = s.applyRemote(ctx, sess, app)
	} else {
		res, err = s.applyLocal(ctx, sess)
	}
	if err != nil {
		return Result{}, err
	}

	s.log.Info("walker application processed", map[string]any{
		"session_id": sess.ID(),
		"email":      u.Email,
		"mode":       string(s.mode),
		"approved":   res.Approved,
	})
	if perr := s.pub.Publish(ctx, events.Event{
		Type:      events.WalkerApplied,
		SessionID: sess.ID(),
		At:        s.now().UTC(),
		Data:      map[string]any{"mode": string(s.mode), "approved": res.Approved},
	}); perr != nil {
		s.log.Warn("publish event failed", map[string]any{"type": events.WalkerApplied, "err": perr})
	}
	return res, nil
}

func (s *Service) applyLocal(ctx context.Context, sess *session.Session) (Result, error) {
	if err := s.accounts.SetWalkerRole(ctx, sess); err != nil {
		s.log.Error("set walker role failed", map[string]any{"session_id": sess.ID(), "err": err})
		return Result{}, &Error{Kind: ErrRejected, Message: MsgRoleError}
	}
	return Result{Approved: true, Message: MsgWelcome}, nil
}

func (s *Service) applyRemote(ctx context.Context, sess *session.Session, app Application) (Result, error) {
	resp, err := s.api.ApplyWalker(sess.Context(ctx), auth.WalkerApplication{
		Phone:          app.Phone,
		Description:    app.Description,
		ValidationCode: app.ValidationCode,
		DocumentName:   app.DocumentName,
		DocumentType:   app.DocumentType,
		Document:       app.Document,
	})
	if err != nil {
		var rej *auth.RejectedError
		if errors.As(err, &rej) {
			msg := rej.Message
			if msg == "" {
				msg = MsgRoleError
			}
			return Result{}, &Error{Kind: ErrRejected, Message: msg}
		}
		s.log.Warn("walker application upstream failed", map[string]any{"session_id": sess.ID(), "err": err})
		return Result{}, &Error{Kind: ErrUnavailable, Message: MsgConnection}
	}
	if !resp.Success {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = MsgRoleError
		}
		return Result{}, &Error{Kind: ErrRejected, Message: msg}
	}

	// el backend decide si aprueba (código de validación) o deja pendiente
	u, err := s.accounts.Refresh(ctx, sess)
	if err != nil {
		s.log.Warn("refresh after application failed", map[string]any{"session_id": sess.ID(), "err": err})
	}
	if u.IsWalker() {
		return Result{Approved: true, Message: MsgWelcome}, nil
	}

	msg := strings.TrimSpace(resp.Message)
	if msg == "" {
		msg = MsgPendingReview
	}
	return Result{Approved: false, Message: msg}, nil
}
