package auth

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWalker   Role = "walker"
)

// NormalizeRole: rol vacío o desconocido => customer.
func NormalizeRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleWalker:
		return RoleWalker
	default:
		return RoleCustomer
	}
}

// User es lo que devuelve el backend (sin password).
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// WalkerApplication es la postulación multipart a /paseadores/solicitar.
type WalkerApplication struct {
	Phone          string `json:"phone"`
	Description    string `json:"description"`
	ValidationCode string `json:"validationCode,omitempty"`

	DocumentName string `json:"-"`
	DocumentType string `json:"-"`
	Document     []byte `json:"-"`
}

// Response es el envelope estándar del backend.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *User  `json:"data,omitempty"`
}
