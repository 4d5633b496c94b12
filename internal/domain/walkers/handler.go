package walkers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"petfy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const maxDocumentSize = 10 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/walker-application", func(pr chi.Router) {
		pr.Get("/", statusHandler(svc))
		pr.Post("/", applyHandler(svc))
	})
}

// applyJSONRequest es la variante JSON: document va en base64.
type applyJSONRequest struct {
	Phone          string `json:"phone"`
	Description    string `json:"description"`
	ValidationCode string `json:"validationCode"`
	DocumentName   string `json:"documentName"`
	DocumentType   string `json:"documentType"`
	Document       []byte `json:"document"`
}

type applyResponse struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

type statusResponse struct {
	IsWalker bool   `json:"isWalker"`
	Mode     string `json:"mode"`
}

func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())
		u, _ := sess.CurrentUser()
		writeJSON(w, http.StatusOK, statusResponse{IsWalker: u.IsWalker(), Mode: string(svc.Mode())})
	}
}

// applyHandler godoc
// @Summary Postularse como paseador
// @Description multipart/form-data (documentImage, phone, description, validationCode) o JSON con document en base64
// @Tags walkers
// @Accept mpfd
// @Accept json
// @Produce json
// @Success 200 {object} applyResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /walker-application [post]
func applyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		app, err := decodeApplication(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res, err := svc.Apply(r.Context(), sess, app)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, applyResponse{Approved: res.Approved, Message: res.Message})
	}
}

func decodeApplication(w http.ResponseWriter, r *http.Request) (Application, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize+1<<20)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
			return Application{}, errors.New("invalid multipart form")
		}
		app := Application{
			Phone:          r.FormValue("phone"),
			Description:    r.FormValue("description"),
			ValidationCode: r.FormValue("validationCode"),
		}
		f, hdr, err := r.FormFile("documentImage")
		if errors.Is(err, http.ErrMissingFile) {
			return app, nil
		}
		if err != nil {
			return Application{}, errors.New("invalid document")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return Application{}, errors.New("invalid document")
		}
		app.Document = data
		app.DocumentName = hdr.Filename
		app.DocumentType = hdr.Header.Get("Content-Type")
		return app, nil
	}

	var req applyJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Application{}, errors.New("invalid json")
	}
	return Application{
		Phone:          req.Phone,
		Description:    req.Description,
		ValidationCode: req.ValidationCode,
		DocumentName:   req.DocumentName,
		DocumentType:   req.DocumentType,
		Document:       req.Document,
	}, nil
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
	case errors.Is(err, ErrNotLoggedIn):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrRejected):
		status = http.StatusUnprocessableEntity
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
