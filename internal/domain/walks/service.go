package walks

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"petfy/internal/domain/session"
	"petfy/internal/platform/logger"
	"petfy/internal/platform/metrics"
	"petfy/internal/ports/events"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("walk request not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid walk state")
	ErrCooldown     = errors.New("action temporarily disabled")
)

// Mensajes mostrados al usuario.
const (
	MsgMissingFields   = "Por favor completa todos los campos requeridos"
	MsgAlreadyAccepted = "Esta solicitud ya fue aceptada"
	MsgWalkersOnly     = "No tienes permisos para acceder a esta página"
)

const DefaultCooldown = 5 * time.Second

// Scheduler es la parte del scheduler de auto-confirmación que usa el servicio.
type Scheduler interface {
	Schedule(sessionID string, requestID int64) time.Time
	Sync(sessionID string, pendingIDs []int64)
	Cancel(sessionID string, requestID int64)
	Deadline(sessionID string, requestID int64) (time.Time, bool)
}

type Service struct {
	repo     Repository
	sessions *session.Manager
	sched    Scheduler
	pub      events.Publisher
	log      logger.Logger

	now      func() time.Time
	pick     func(n int) int
	cooldown time.Duration

	progMu   sync.Mutex
	progress map[string]map[int64]*WalkProgress
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.pub = p } }
func WithLogger(l logger.Logger) Option       { return func(s *Service) { s.log = l } }

// WithCooldown fija cuánto quedan deshabilitados iniciar/finalizar después de usarse.
func WithCooldown(d time.Duration) Option { return func(s *Service) { s.cooldown = d } }

func NewService(repo Repository, sessions *session.Manager, sched Scheduler, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessions,
		sched:    sched,
		pub:      events.Nop{},
		log:      logger.Nop(),
		now:      time.Now,
		pick:     rand.Intn,
		cooldown: DefaultCooldown,
		progress: make(map[string]map[int64]*WalkProgress),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type Input struct {
	Date      string
	StartTime string
	EndTime   string
	Address   string
	Walker    string
}

func (s *Service) normalize(in Input) (Input, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.Address = strings.TrimSpace(in.Address)
	in.Walker = strings.TrimSpace(in.Walker)

	if in.Date == "" || in.StartTime == "" || in.Address == "" || in.Walker == "" {
		return Input{}, &Error{Kind: ErrInvalidInput, Message: MsgMissingFields}
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return Input{}, &Error{Kind: ErrInvalidInput, Message: "date must be YYYY-MM-DD"}
	}
	if !validSlot(in.StartTime) {
		return Input{}, &Error{Kind: ErrInvalidInput, Message: "startTime must be a half-hour slot between 07:00 and 22:00"}
	}
	if in.EndTime == "" {
		in.EndTime, _ = EndTime(in.StartTime)
	} else if _, _, ok := parseHHMM(in.EndTime); !ok {
		return Input{}, &Error{Kind: ErrInvalidInput, Message: "endTime must be HH:MM"}
	}
	if !knownWalker(in.Walker) {
		return Input{}, &Error{Kind: ErrInvalidInput, Message: "unknown walker"}
	}
	if in.Walker == RandomWalker {
		in.Walker = NamedWalkers[s.pick(len(NamedWalkers))]
	}
	return in, nil
}

// nextID usa el timestamp en ms y lo corre por encima del máximo existente.
func nextID(now time.Time, all []WalkRequest) int64 {
	id := now.UnixMilli()
	for _, r := range all {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}

func indexOf(all []WalkRequest, id int64) int {
	for i, r := range all {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Create agrega una solicitud pendiente y la agenda para auto-confirmación.
func (s *Service) Create(ctx context.Context, sess *session.Session, in Input) (WalkRequest, error) {
	in, err := s.normalize(in)
	if err != nil {
		return WalkRequest{}, err
	}

	var created WalkRequest
	err = sess.Update(func() error {
		all, err := s.repo.Load(ctx, sess.Store())
		if err != nil {
			return err
		}

		created = WalkRequest{
			ID:        nextID(s.now(), all),
			Date:      in.Date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Address:   in.Address,
			Walker:    in.Walker,
			Status:    StatusPending,
		}
		return s.repo.Save(ctx, sess.Store(), append(all, created))
	})
	if err != nil {
		return WalkRequest{}, err
	}

	s.sched.Schedule(sess.ID(), created.ID)
	metrics.WalkRequestsCreated.Inc()
	s.publish(ctx, events.WalkCreated, sess.ID(), created.ID, created)
	return created, nil
}

// Edit reemplaza la solicitud conservando el id; siempre vuelve a pending
// y reinicia la ventana de confirmación.
func (s *Service) Edit(ctx context.Context, sess *session.Session, id int64, in Input) (WalkRequest, error) {
	in, err := s.normalize(in)
	if err != nil {
		return WalkRequest{}, err
	}

	var updated WalkRequest
	err = sess.Update(func() error {
		all, err := s.repo.Load(ctx, sess.Store())
		if err != nil {
			return err
		}
		i := indexOf(all, id)
		if i < 0 {
			return ErrNotFound
		}

		updated = all[i]
		updated.Date = in.Date
		updated.StartTime = in.StartTime
		updated.EndTime = in.EndTime
		updated.Address = in.Address
		updated.Walker = in.Walker
		updated.Status = StatusPending
		all[i] = updated
		if err := s.repo.Save(ctx, sess.Store(), all); err != nil {
			return err
		}
		// dentro del lock: un AutoConfirm en vuelo ve el deadline nuevo
		s.sched.Schedule(sess.ID(), id)
		return nil
	})
	if err != nil {
		return WalkRequest{}, err
	}

	s.publish(ctx, events.WalkUpdated, sess.ID(), id, updated)
	return updated, nil
}

// Cancel borra la solicitud y su confirmación pendiente. No toca chat ni calificación.
func (s *Service) Cancel(ctx context.Context, sess *session.Session, id int64) error {
	err := sess.Update(func() error {
		all, err := s.repo.Load(ctx, sess.Store())
		if err != nil {
			return err
		}
		i := indexOf(all, id)
		if i < 0 {
			return ErrNotFound
		}
		return s.repo.Save(ctx, sess.Store(), append(all[:i], all[i+1:]...))
	})
	if err != nil {
		return err
	}

	s.sched.Cancel(sess.ID(), id)
	s.forgetProgress(sess.ID(), id)
	metrics.WalkRequestsCancelled.Inc()
	s.publish(ctx, events.WalkCancelled, sess.ID(), id, nil)
	return nil
}

func (s *Service) Get(ctx context.Context, sess *session.Session, id int64) (WalkRequest, error) {
	all, err := s.repo.Load(ctx, sess.Store())
	if err != nil {
		return WalkRequest{}, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return WalkRequest{}, ErrNotFound
	}
	return all[i], nil
}

// List separa pendientes y confirmadas y resincroniza el scheduler
// (equivale a recargar la pantalla de solicitudes).
func (s *Service) List(ctx context.Context, sess *session.Session) (Lists, error) {
	all, err := s.repo.Load(ctx, sess.Store())
	if err != nil {
		return Lists{}, err
	}

	out := Lists{Pending: []WalkRequest{}, Confirmed: []WalkRequest{}}
	pendingIDs := make([]int64, 0)
	for _, r := range all {
		switch r.Status {
		case StatusPending:
			out.Pending = append(out.Pending, r)
			pendingIDs = append(pendingIDs, r.ID)
		case StatusConfirmed:
			out.Confirmed = append(out.Confirmed, r)
		}
	}

	s.sched.Sync(sess.ID(), pendingIDs)
	return out, nil
}

func (s *Service) Form() Form {
	return Form{
		Walkers:   Walkers(),
		TimeSlots: TimeSlots(),
		Today:     s.now().Format("2006-01-02"),
	}
}

// AutoConfirm pasa una solicitud de pending a confirmed. Sobre una solicitud
// confirmada o inexistente no hace nada. Tampoco si la solicitud volvió a
// agendarse (Edit) después de que venció el deadline que disparó esta llamada.
func (s *Service) AutoConfirm(ctx context.Context, sessionID string, id int64) error {
	sess, err := s.sessions.Open(ctx, sessionID)
	if err != nil {
		return err
	}

	changed := false
	err = sess.Update(func() error {
		all, err := s.repo.Load(ctx, sess.Store())
		if err != nil {
			return err
		}
		i := indexOf(all, id)
		if i < 0 || all[i].Status != StatusPending {
			return nil
		}
		if _, rescheduled := s.sched.Deadline(sessionID, id); rescheduled {
			return nil
		}
		all[i].Status = StatusConfirmed
		changed = true
		return s.repo.Save(ctx, sess.Store(), all)
	})
	if err != nil || !changed {
		return err
	}

	metrics.WalkRequestsConfirmed.WithLabelValues("auto").Inc()
	s.log.Info("walk request auto-confirmed", map[string]any{"session_id": sessionID, "request_id": id})
	s.publish(ctx, events.WalkConfirmed, sessionID, id, nil)
	return nil
}

// acceptorName: el paseador se identifica por su username.
func acceptorName(sess *session.Session) (string, error) {
	u, ok := sess.CurrentUser()
	if !ok || !u.IsWalker() {
		return "", &Error{Kind: ErrForbidden, Message: MsgWalkersOnly}
	}
	name := strings.TrimSpace(u.Username)
	if name == "" {
		name = "Paseador"
	}
	return name, nil
}

// WalkerBoard: confirmadas por mí, pendientes (sin las mías) y, si no hay
// pendientes reales, las solicitudes de ejemplo que no acepté.
func (s *Service) WalkerBoard(ctx context.Context, sess *session.Session) (Board, error) {
	me, err := acceptorName(sess)
	if err != nil {
		return Board{}, err
	}

	all, err := s.repo.Load(ctx, sess.Store())
	if err != nil {
		return Board{}, err
	}

	out := Board{Pending: []WalkRequest{}, Confirmed: []WalkRequest{}}
	mine := make(map[int64]struct{})
	for _, r := range all {
		if r.Status == StatusConfirmed && r.Walker == me {
			out.Confirmed = append(out.Confirmed, r)
			mine[r.ID] = struct{}{}
		}
	}
	for _, r := range all {
		if _, ok := mine[r.ID]; ok {
			continue
		}
		if r.Status == StatusPending {
			out.Pending = append(out.Pending, r)
		}
	}

	if len(out.Pending) == 0 {
		for _, ex := range ExampleRequests(s.now()) {
			if _, ok := mine[ex.ID]; !ok {
				out.Pending = append(out.Pending, ex)
				out.Examples = true
			}
		}
	}
	return out, nil
}

// Accept confirma la solicitud a nombre del paseador actual. Una solicitud de
// ejemplo que no está guardada se agrega ya confirmada.
func (s *Service) Accept(ctx context.Context, sess *session.Session, id int64) (WalkRequest, error) {
	me, err := acceptorName(sess)
	if err != nil {
		return WalkRequest{}, err
	}

	var accepted WalkRequest
	err = sess.Update(func() error {
		all, err := s.repo.Load(ctx, sess.Store())
		if err != nil {
			return err
		}

		if i := indexOf(all, id); i >= 0 {
			if all[i].Status != StatusPending {
				return &Error{Kind: ErrBadState, Message: MsgAlreadyAccepted}
			}
			all[i].Status = StatusConfirmed
			all[i].Walker = me
			accepted = all[i]
			return s.repo.Save(ctx, sess.Store(), all)
		}

		ex, ok := exampleByID(s.now(), id)
		if !ok {
			return ErrNotFound
		}
		ex.Status = StatusConfirmed
		ex.Walker = me
		accepted = ex
		return s.repo.Save(ctx, sess.Store(), append(all, ex))
	})
	if err != nil {
		return WalkRequest{}, err
	}

	s.sched.Cancel(sess.ID(), id)
	metrics.WalkRequestsConfirmed.WithLabelValues("walker").Inc()
	s.publish(ctx, events.WalkAccepted, sess.ID(), id, accepted)
	return accepted, nil
}

func (s *Service) publish(ctx context.Context, typ, sessionID string, id int64, data any) {
	err := s.pub.Publish(ctx, events.Event{
		Type:      typ,
		SessionID: sessionID,
		RequestID: id,
		At:        s.now().UTC(),
		Data:      data,
	})
	if err != nil {
		s.log.Warn("publish event failed", map[string]any{"type": typ, "session_id": sessionID, "err": err})
	}
}

// Error lleva el mensaje a mostrar; errors.Is funciona contra los sentinels.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }
