package contact

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"petfy/internal/domain/accounts"
	"petfy/internal/platform/logger"
)

var ErrInvalidInput = errors.New("invalid input")

// Mensajes mostrados al usuario.
const (
	MsgNameRequired    = "El nombre es requerido"
	MsgEmailRequired   = "El email es requerido"
	MsgEmailInvalid    = "Ingresa un email válido"
	MsgPhoneInvalid    = "Ingresa un teléfono válido"
	MsgMessageRequired = "La consulta es requerida"
	MsgSent            = "¡Consulta enviada exitosamente!"
)

var phoneRe = regexp.MustCompile(`^[+]?[0-9\s\-()]{10,}$`)

type Inquiry struct {
	Name    string `json:"nombre"`
	Email   string `json:"email"`
	Phone   string `json:"telefono"`
	Message string `json:"consulta"`
}

// ValidationError junta todos los campos inválidos (campo => mensaje).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "invalid contact form" }
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func Validate(in Inquiry) error {
	fields := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		fields["nombre"] = MsgNameRequired
	}
	switch {
	case strings.TrimSpace(in.Email) == "":
		fields["email"] = MsgEmailRequired
	case !accounts.ValidEmail(in.Email):
		fields["email"] = MsgEmailInvalid
	}
	// teléfono opcional
	if in.Phone != "" && !phoneRe.MatchString(in.Phone) {
		fields["telefono"] = MsgPhoneInvalid
	}
	if strings.TrimSpace(in.Message) == "" {
		fields["consulta"] = MsgMessageRequired
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type Service struct {
	log logger.Logger
}

func NewService(log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{log: log}
}

// Submit valida la consulta y la registra. No hay destino remoto: queda en el log.
func (s *Service) Submit(ctx context.Context, in Inquiry) (string, error) {
	if err := Validate(in); err != nil {
		return "", err
	}
	s.log.Info("contact inquiry received", map[string]any{
		"name":  strings.TrimSpace(in.Name),
		"email": strings.TrimSpace(in.Email),
		"phone": in.Phone,
		"len":   len(in.Message),
	})
	return MsgSent, nil
}

// About es el contenido estático de la pantalla "sobre nosotros".
type About struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Services    []string `json:"services"`
	Contact     string   `json:"contact"`
}

func AboutInfo() About {
	return About{
		Name:        "Petfy",
		Description: "Conectamos dueños de mascotas con paseadores de confianza.",
		Services: []string{
			"Paseos programados por horario",
			"Chat con tu paseador",
			"Historial y calificación de paseos",
		},
		Contact: "/contact",
	}
}
