package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"petfy/internal/platform/logger"
	"petfy/internal/platform/metrics"

	"github.com/robfig/cron/v3"
)

const DefaultWindow = 5 * time.Second

// ConfirmFunc confirma una solicitud vencida. Debe ser idempotente.
type ConfirmFunc func(ctx context.Context, sessionID string, requestID int64) error

type key struct {
	sessionID string
	requestID int64
}

// Entry es una confirmación pendiente.
type Entry struct {
	SessionID string
	RequestID int64
	Deadline  time.Time
}

// Scheduler mantiene una única tabla de deadlines de auto-confirmación
// para todas las sesiones. Tick dispara cada entrada vencida una sola vez.
type Scheduler struct {
	window  time.Duration
	log     logger.Logger
	now     func() time.Time
	confirm ConfirmFunc

	mu      sync.Mutex
	entries map[key]time.Time

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New(window time.Duration, log logger.Logger) *Scheduler {
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		window:  window,
		log:     log,
		now:     time.Now,
		entries: make(map[key]time.Time),
		cron:    cron.New(cron.WithLocation(time.UTC)),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetConfirmFunc fija el callback (lo provee el servicio de paseos).
func (s *Scheduler) SetConfirmFunc(f ConfirmFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirm = f
}

func (s *Scheduler) Window() time.Duration { return s.window }

// Schedule fija un deadline nuevo (now + window), pisando el anterior.
func (s *Scheduler) Schedule(sessionID string, requestID int64) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.now().Add(s.window)
	s.entries[key{sessionID, requestID}] = d
	s.updateGauge()
	return d
}

// Sync alinea las entradas de una sesión con sus pendientes:
// conserva los deadlines existentes, agrega los faltantes y borra los que ya no están.
func (s *Scheduler) Sync(sessionID string, pendingIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[int64]struct{}, len(pendingIDs))
	for _, id := range pendingIDs {
		want[id] = struct{}{}
	}

	for k := range s.entries {
		if k.sessionID != sessionID {
			continue
		}
		if _, ok := want[k.requestID]; !ok {
			delete(s.entries, k)
		}
	}

	d := s.now().Add(s.window)
	for id := range want {
		k := key{sessionID, id}
		if _, ok := s.entries[k]; !ok {
			s.entries[k] = d
		}
	}
	s.updateGauge()
}

func (s *Scheduler) Cancel(sessionID string, requestID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key{sessionID, requestID})
	s.updateGauge()
}

// CancelSession borra todas las entradas de la sesión (hook de logout).
func (s *Scheduler) CancelSession(_ context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.entries {
		if k.sessionID == sessionID {
			delete(s.entries, k)
		}
	}
	s.updateGauge()
}

// Deadline devuelve el deadline vigente de una solicitud, si tiene.
func (s *Scheduler) Deadline(sessionID string, requestID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.entries[key{sessionID, requestID}]
	return d, ok
}

// Entries devuelve una copia ordenada por deadline.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	out := make([]Entry, 0, len(s.entries))
	for k, d := range s.entries {
		out = append(out, Entry{SessionID: k.sessionID, RequestID: k.requestID, Deadline: d})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].RequestID < out[j].RequestID
		}
		return out[i].Deadline.Before(out[j].Deadline)
	})
	return out
}

// Tick saca las entradas vencidas y las confirma. Devuelve cuántas disparó.
func (s *Scheduler) Tick(ctx context.Context) int {
	s.mu.Lock()
	now := s.now()
	due := make([]Entry, 0)
	for k, d := range s.entries {
		if !d.After(now) {
			due = append(due, Entry{SessionID: k.sessionID, RequestID: k.requestID, Deadline: d})
			delete(s.entries, k)
		}
	}
	confirm := s.confirm
	s.updateGauge()
	s.mu.Unlock()

	if confirm == nil {
		return 0
	}

	sort.Slice(due, func(i, j int) bool { return due[i].Deadline.Before(due[j].Deadline) })
	for _, e := range due {
		if err := confirm(ctx, e.SessionID, e.RequestID); err != nil {
			s.log.Error("auto-confirm failed", map[string]any{
				"session_id": e.SessionID,
				"request_id": e.RequestID,
				"err":        err,
			})
		}
	}
	return len(due)
}

// Start corre Tick cada segundo.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@every 1s", func() {
		s.Tick(s.ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("scheduler started", map[string]any{"window": s.window.String()})
	return nil
}

// Stop espera a que termine el tick en curso.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info("scheduler stopped", nil)
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

// updateGauge asume s.mu tomado.
func (s *Scheduler) updateGauge() {
	metrics.SchedulerEntries.Set(float64(len(s.entries)))
}
