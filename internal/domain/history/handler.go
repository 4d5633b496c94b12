package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"petfy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/history", func(pr chi.Router) {
		pr.Get("/", listHandler(svc))
		pr.Put("/{walkID}/rating", rateWalkHandler(svc))
		pr.Get("/app-rating", appRatingHandler(svc))
		pr.Put("/app-rating", rateAppHandler(svc))
	})
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type rateResponse struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

// listHandler godoc
// @Summary Paseos finalizados con sus calificaciones
// @Tags history
// @Produce json
// @Param from query string false "Desde (YYYY-MM-DD)"
// @Success 200 {object} View
// @Failure 400 {object} errorResponse
// @Router /history [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		view, err := svc.Finalized(r.Context(), sess, r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// rateWalkHandler godoc
// @Summary Calificar un paseo (1 a 5)
// @Tags history
// @Accept json
// @Produce json
// @Param walkID path int true "Paseo"
// @Param body body rateRequest true "Calificación"
// @Success 200 {object} rateResponse
// @Failure 400 {object} errorResponse
// @Router /history/{walkID}/rating [put]
func rateWalkHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "walkID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid walk id", http.StatusBadRequest)
			return
		}

		var req rateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.RateWalk(r.Context(), sess, id, req.Rating); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponse{Rating: req.Rating, Message: ThanksMessage("el paseo", req.Rating)})
	}
}

func appRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		n, ok, err := svc.AppRating(r.Context(), sess)
		if err != nil {
			writeError(w, err)
			return
		}
		out := map[string]any{"rating": nil}
		if ok {
			out["rating"] = n
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// rateAppHandler godoc
// @Summary Calificar la app (1 a 5)
// @Tags history
// @Accept json
// @Produce json
// @Param body body rateRequest true "Calificación"
// @Success 200 {object} rateResponse
// @Failure 400 {object} errorResponse
// @Router /history/app-rating [put]
func rateAppHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		var req rateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.RateApp(r.Context(), sess, req.Rating); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponse{Rating: req.Rating, Message: ThanksMessage("nuestra app", req.Rating)})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
