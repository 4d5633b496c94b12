package walks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"petfy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Cliente: formulario y solicitudes
	r.Route("/request", func(pr chi.Router) {
		pr.Get("/", formHandler(svc))
		pr.Post("/", createHandler(svc))
		pr.Put("/{requestID}", editHandler(svc))
	})

	r.Route("/requests", func(pr chi.Router) {
		pr.Get("/", listHandler(svc))
		pr.Get("/{requestID}", getHandler(svc))
		pr.Delete("/{requestID}", cancelHandler(svc))
	})

	// Paseador
	r.Route("/walker-requests", func(pr chi.Router) {
		pr.Get("/", boardHandler(svc))
		pr.Post("/{requestID}/accept", acceptHandler(svc))
		pr.Get("/{requestID}/progress", progressHandler(svc))
		pr.Post("/{requestID}/start", startHandler(svc))
		pr.Post("/{requestID}/finish", finishHandler(svc))
	})
}

type requestBody struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Address   string `json:"address"`
	Walker    string `json:"walker"`
}

func (b requestBody) input() Input {
	return Input{
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Address:   b.Address,
		Walker:    b.Walker,
	}
}

type formResponse struct {
	Form
	// Editing trae la solicitud cuando se abre con ?id= (modo edición).
	Editing *WalkRequest `json:"editing,omitempty"`
}

// formHandler godoc
// @Summary Datos del formulario de solicitud (paseadores, horarios, hoy)
// @Tags walks
// @Produce json
// @Param id query int false "Solicitud a editar"
// @Success 200 {object} formResponse
// @Router /request [get]
func formHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		out := formResponse{Form: svc.Form()}
		if raw := r.URL.Query().Get("id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid id", http.StatusBadRequest)
				return
			}
			req, err := svc.Get(r.Context(), sess, id)
			if err != nil {
				writeError(w, err)
				return
			}
			out.Editing = &req
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createHandler godoc
// @Summary Crear solicitud de paseo (queda pending y se auto-confirma)
// @Tags walks
// @Accept json
// @Produce json
// @Param body body requestBody true "Solicitud"
// @Success 201 {object} WalkRequest
// @Failure 400 {object} errorResponse
// @Router /request [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), sess, body.input())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// editHandler godoc
// @Summary Modificar solicitud (vuelve a pending)
// @Tags walks
// @Accept json
// @Produce json
// @Param requestID path int true "ID"
// @Param body body requestBody true "Solicitud"
// @Success 200 {object} WalkRequest
// @Failure 404 {object} errorResponse
// @Router /request/{requestID} [put]
func editHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, ok := requestID(w, r)
		if !ok {
			return
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Edit(r.Context(), sess, id, body.input())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// listHandler godoc
// @Summary Mis solicitudes (pendientes y confirmadas)
// @Tags walks
// @Produce json
// @Success 200 {object} Lists
// @Router /requests [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		lists, err := svc.List(r.Context(), sess)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lists)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, ok := requestID(w, r)
		if !ok {
			return
		}
		req, err := svc.Get(r.Context(), sess, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

// cancelHandler godoc
// @Summary Cancelar solicitud
// @Tags walks
// @Param requestID path int true "ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /requests/{requestID} [delete]
func cancelHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, ok := requestID(w, r)
		if !ok {
			return
		}
		if err := svc.Cancel(r.Context(), sess, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// boardHandler godoc
// @Summary Tablero del paseador
// @Tags walker
// @Produce json
// @Success 200 {object} Board
// @Failure 403 {object} errorResponse
// @Router /walker-requests [get]
func boardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		board, err := svc.WalkerBoard(r.Context(), sess)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

// acceptHandler godoc
// @Summary Aceptar solicitud como paseador
// @Tags walker
// @Produce json
// @Param requestID path int true "ID"
// @Success 200 {object} WalkRequest
// @Failure 409 {object} errorResponse
// @Router /walker-requests/{requestID}/accept [post]
func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, ok := requestID(w, r)
		if !ok {
			return
		}
		accepted, err := svc.Accept(r.Context(), sess, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accepted)
	}
}

func progressHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, ok := requestID(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, svc.Progress(sess, id))
	}
}

func startHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, ok := requestID(w, r)
		if !ok {
			return
		}
		p, err := svc.StartWalk(r.Context(), sess, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func finishHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, ok := requestID(w, r)
		if !ok {
			return
		}
		p, err := svc.FinishWalk(r.Context(), sess, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrBadState), errors.Is(err, ErrCooldown):
		status = http.StatusConflict
	default:
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
