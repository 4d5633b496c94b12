package contact

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta contact y about; ambas son públicas.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/contact", submitHandler(svc))
	r.Get("/about", aboutHandler())
}

type submitResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// submitHandler godoc
// @Summary Enviar consulta de contacto
// @Tags contact
// @Accept json
// @Produce json
// @Param body body Inquiry true "Consulta"
// @Success 200 {object} submitResponse
// @Failure 400 {object} validationResponse
// @Router /contact [post]
func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in Inquiry
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		msg, err := svc.Submit(r.Context(), in)
		var ve *ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, validationResponse{Error: ve.Error(), Fields: ve.Fields})
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, submitResponse{Message: msg})
	}
}

// aboutHandler godoc
// @Summary Información de la app
// @Tags contact
// @Produce json
// @Success 200 {object} About
// @Router /about [get]
func aboutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AboutInfo())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
