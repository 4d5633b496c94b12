package history

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidDate  = errors.New("invalid date")
)

// Mensajes mostrados al usuario.
const (
	MsgSelectRating = "Por favor selecciona una calificación"
)

const StatusFinalized = "finalized"

// Walk es un paseo finalizado tal como lo muestra el historial.
type Walk struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"` // YYYY-MM-DD
	Time    string `json:"time"` // HH:MM
	Walker  string `json:"walker"`
	Status  string `json:"status"`
	Address string `json:"address"`
	Rating  *int   `json:"rating,omitempty"`
}

// View es la pantalla completa: paseos (ya filtrados) y la calificación de la app.
type View struct {
	Walks     []Walk `json:"walks"`
	AppRating *int   `json:"appRating,omitempty"`
	// Examples es true cuando no hay paseos reales y se muestran los de ejemplo.
	Examples bool `json:"examples"`
}

// defaultWalks se muestran cuando la sesión no tiene paseos finalizados.
func defaultWalks() []Walk {
	return []Walk{
		{ID: 1, Date: "2025-10-20", Time: "10:00", Walker: "Martin", Status: StatusFinalized, Address: "Av. Corrientes 1234, CABA"},
		{ID: 2, Date: "2025-10-18", Time: "16:30", Walker: "Azul", Status: StatusFinalized, Address: "Av. Santa Fe 5678, CABA"},
	}
}

type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }
