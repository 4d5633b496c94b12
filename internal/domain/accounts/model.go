package accounts

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRejected     = errors.New("rejected by server")
	ErrUnavailable  = errors.New("server unavailable")
	ErrNotLoggedIn  = errors.New("not logged in")
)

// Mensajes mostrados al usuario.
const (
	MsgUsernameLength   = "El nombre de usuario debe tener entre 3 y 20 caracteres"
	MsgEmailFormat      = "El email debe tener un formato válido con más de 2 caracteres en usuario y dominio"
	MsgPasswordMismatch = "Las contraseñas no coinciden"
	MsgEmailRequired    = "El email es requerido"
	MsgEmailInvalid     = "El email debe tener un formato válido"
	MsgPasswordRequired = "La contraseña es requerida"

	MsgRegistered    = "Usuario registrado exitosamente"
	MsgRegisterError = "Error al registrar usuario"
	MsgLoggedIn      = "Inicio de sesión exitoso"
	MsgLoginError    = "Error al iniciar sesión"
	MsgConnection    = "Error al conectar con el servidor"
)

// Error lleva el mensaje para el usuario y la categoría (errors.Is contra los sentinels).
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func invalid(field, msg string) error {
	return &Error{Kind: ErrInvalidInput, Field: field, Message: msg}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type LoginInput struct {
	Email    string
	Password string
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidRegistrationEmail: formato válido, usuario > 2, primer label del dominio > 2
// y extensión (segundo label) no vacía.
func ValidRegistrationEmail(email string) bool {
	if !ValidEmail(email) {
		return false
	}
	local, domain, _ := strings.Cut(email, "@")
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	return utf8.RuneCountInString(local) > 2 &&
		utf8.RuneCountInString(labels[0]) > 2 &&
		labels[1] != ""
}

func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	return n >= 3 && n <= 20
}

func validateRegister(in RegisterInput) error {
	if !ValidUsername(in.Username) {
		return invalid("username", MsgUsernameLength)
	}
	if !ValidRegistrationEmail(in.Email) {
		return invalid("email", MsgEmailFormat)
	}
	if in.Password == "" || in.Password != in.ConfirmPassword {
		return invalid("confirmPassword", MsgPasswordMismatch)
	}
	return nil
}

func validateLogin(in LoginInput) error {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return invalid("email", MsgEmailRequired)
	}
	if !ValidEmail(email) {
		return invalid("email", MsgEmailInvalid)
	}
	if in.Password == "" {
		return invalid("password", MsgPasswordRequired)
	}
	return nil
}
