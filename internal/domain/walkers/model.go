package walkers

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRejected     = errors.New("application rejected")
	ErrUnavailable  = errors.New("walker service unavailable")
	ErrNotLoggedIn  = errors.New("not logged in")
)

// Mensajes mostrados al usuario.
const (
	MsgDocumentRequired    = "Por favor sube una imagen de tu documento"
	MsgPhoneRequired       = "Por favor ingresa tu número de teléfono"
	MsgDescriptionRequired = "Por favor ingresa una descripción sobre ti"
	MsgWelcome             = "¡Bienvenido como paseador! Ahora puedes ver las solicitudes de los clientes."
	MsgRoleError           = "Error al cambiar el rol. Por favor intenta de nuevo."
	MsgPendingReview       = "Solicitud enviada. Te avisaremos cuando sea aprobada."
	MsgConnection          = "Error al conectar con el servidor"
)

// Mode es cómo se resuelve la postulación.
type Mode string

const (
	// ModeLocal eleva el rol en la sesión sin hablar con el backend.
	ModeLocal Mode = "local"
	// ModeServer manda la postulación al backend y toma el rol que devuelva.
	ModeServer Mode = "server"
)

type Application struct {
	Phone          string
	Description    string
	ValidationCode string

	DocumentName string
	DocumentType string
	Document     []byte
}

type Result struct {
	// Approved es true si el usuario ya quedó como paseador.
	Approved bool
	Message  string
}

type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }
