package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	_ "petfy/docs"
	"petfy/internal/adapters/auth/petfyapi"
	"petfy/internal/adapters/events/logging"
	"petfy/internal/domain/accounts"
	"petfy/internal/domain/chat"
	"petfy/internal/domain/contact"
	"petfy/internal/domain/history"
	"petfy/internal/domain/session"
	"petfy/internal/domain/walkers"
	"petfy/internal/domain/walks"
	"petfy/internal/middleware"
	"petfy/internal/platform/config"
	"petfy/internal/platform/logger"
	"petfy/internal/ports/auth"
	"petfy/internal/ports/events"
	"petfy/internal/ports/kv"
	"petfy/internal/scheduler"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config
	Logger logger.Logger

	// Store es el KV raíz (memory/redis/postgres). Requerido.
	Store kv.Store

	// Opcional: si viene nil se loguean los eventos.
	Publisher events.Publisher

	// Opcional: si viene nil se arma el cliente HTTP con Config.AuthAPIBaseURL.
	AuthAPI auth.API
}

// Server es el handler HTTP más las piezas con ciclo de vida propio.
type Server struct {
	Handler   http.Handler
	Sessions  *session.Manager
	Scheduler *scheduler.Scheduler
	Chat      *chat.Service
	Limiter   *middleware.RateLimiter

	sessionTTL time.Duration
}

// Cleanup purga limiters por IP vencidos y sesiones ociosas del cache.
func (s *Server) Cleanup() (limiters, sessions int) {
	return s.Limiter.Cleanup(), s.Sessions.Evict(s.sessionTTL)
}

// Shutdown frena el scheduler y espera las respuestas de chat pendientes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Scheduler.Stop()

	done := make(chan struct{})
	go func() {
		s.Chat.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func NewRouter(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("router: store is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	cfg := opts.Config

	pub := opts.Publisher
	if pub == nil {
		pub = logging.NewPublisher(log)
	}

	api := opts.AuthAPI
	if api == nil {
		c, err := petfyapi.NewClient(petfyapi.Config{BaseURL: cfg.AuthAPIBaseURL, Timeout: cfg.AuthAPITimeout})
		if err != nil {
			return nil, fmt.Errorf("auth api client: %w", err)
		}
		api = c
	}

	cookie := cfg.SessionCookie
	if cookie == "" {
		cookie = "petfy_session"
	}

	// Sesiones + scheduler único de auto-confirmación
	sessions := session.NewManager(opts.Store, log.With(map[string]any{"component": "session"}))
	sched := scheduler.New(cfg.ConfirmWindow, log.With(map[string]any{"component": "scheduler"}))

	// Services por módulo
	accountsSvc := accounts.NewService(api, sessions, log.With(map[string]any{"component": "accounts"}))
	walksSvc := walks.NewService(walks.NewKVRepository(), sessions, sched,
		walks.WithPublisher(pub),
		walks.WithLogger(log.With(map[string]any{"component": "walks"})),
		walks.WithCooldown(cfg.WalkButtonCooldown),
	)
	chatSvc := chat.NewService(chat.NewHub(),
		chat.WithPublisher(pub),
		chat.WithLogger(log.With(map[string]any{"component": "chat"})),
		chat.WithReplyDelay(cfg.ChatReplyDelay),
	)
	historySvc := history.NewService(walks.NewKVRepository(), log)
	walkersSvc := walkers.NewService(api, accountsSvc, walkers.Mode(cfg.WalkerOnboarding), pub, log.With(map[string]any{"component": "walkers"}))
	contactSvc := contact.NewService(log.With(map[string]any{"component": "contact"}))

	sched.SetConfirmFunc(walksSvc.AutoConfirm)
	sessions.OnWipe(sched.CancelSession)
	sessions.OnWipe(walksSvc.ForgetSession)

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, log)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionContext(sessions, cookie, log))
		r.Use(middleware.AccessLog(log))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/login", http.StatusFound)
		})

		// Rutas públicas
		accounts.RegisterRoutes(r, accountsSvc, limiter.Handler)
		contact.RegisterRoutes(r, contactSvc)

		// Rutas que requieren usuario
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			walks.RegisterRoutes(r, walksSvc)
			chat.RegisterRoutes(r, chatSvc)
			history.RegisterRoutes(r, historySvc)
			walkers.RegisterRoutes(r, walkersSvc)
		})
	})

	r.Get("/routes", routesHandler(r))

	return &Server{
		Handler:   r,
		Sessions:  sessions,
		Scheduler: sched,
		Chat:      chatSvc,
		Limiter:   limiter,

		sessionTTL: cfg.SessionIdleTTL,
	}, nil
}

// routesHandler lista "METHOD /pattern" de todo lo montado.
func routesHandler(r chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var out []string
		_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			out = append(out, method+" "+route)
			return nil
		})
		sort.Strings(out)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, line := range out {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}
}
