package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"petfy/internal/domain/session"
	"petfy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta register/login/logout/home/profile.
// authLimit (opcional) se aplica solo a register y login.
func RegisterRoutes(r chi.Router, svc *Service, authLimit func(http.Handler) http.Handler) {
	r.Group(func(pr chi.Router) {
		if authLimit != nil {
			pr.Use(authLimit)
		}
		pr.Post("/register", registerHandler(svc))
		pr.Post("/login", loginHandler(svc))
	})

	r.Get("/login", loginStatusHandler(svc))
	r.Post("/logout", logoutHandler(svc))

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireUser)
		pr.Get("/home", homeHandler(svc))
		pr.Get("/profile", getProfileHandler(svc))
		pr.Patch("/profile", updateProfileHandler(svc))
	})
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsWalker bool   `json:"isWalker"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type homeResponse struct {
	User userResponse `json:"user"`
	// Synced es false cuando el backend no respondió y se usa el usuario cacheado.
	Synced bool `json:"synced"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Datos de registro"
// @Success 201 {object} authResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Register(r.Context(), sess, RegisterInput{
			Username:        req.Username,
			Email:           req.Email,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{Success: true, Message: res.Message, User: toUserResponse(res.User)})
	}
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credenciales"
// @Success 200 {object} authResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Login(r.Context(), sess, LoginInput{Email: req.Email, Password: req.Password})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, authResponse{Success: true, Message: res.Message, User: toUserResponse(res.User)})
	}
}

func loginStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		out := map[string]any{"loggedIn": false}
		if u, ok := svc.CurrentUser(sess); ok {
			out["loggedIn"] = true
			out["user"] = toUserResponse(u)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// logoutHandler godoc
// @Summary Cerrar sesión (borra todos los datos de la sesión)
// @Tags auth
// @Success 204
// @Router /logout [post]
func logoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Logout(r.Context(), sess); err != nil {
			http.Error(w, "logout failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// homeHandler godoc
// @Summary Home: usuario actual sincronizado con el backend
// @Tags auth
// @Produce json
// @Success 200 {object} homeResponse
// @Failure 401 {string} string "unauthorized"
// @Router /home [get]
func homeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		u, err := svc.Refresh(r.Context(), sess)
		if errors.Is(err, ErrNotLoggedIn) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, homeResponse{User: toUserResponse(u), Synced: err == nil})
	}
}

func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		u, ok := svc.CurrentUser(sess)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func updateProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), sess, req.Username)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func toUserResponse(u session.User) userResponse {
	return userResponse{
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		IsWalker: u.IsWalker(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var e *Error
	if errors.As(err, &e) {
		resp.Field = e.Field
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, ErrRejected), errors.Is(err, ErrNotLoggedIn):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrUnavailable):
		status = http.StatusBadGateway
	default:
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
