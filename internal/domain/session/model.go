package session

import (
	"strings"

	"petfy/internal/ports/auth"
)

// User es el usuario cacheado en currentUser.
// Password queda en texto plano: se necesita para armar el header Basic.
type User struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role,omitempty"`
}

func (u User) IsWalker() bool {
	return u.Role == auth.RoleWalker
}

func (u User) Credentials() auth.Credentials {
	return auth.Credentials{Email: u.Email, Password: u.Password}
}

// KeyPrefix es el namespace de una sesión en el store raíz.
func KeyPrefix(id string) string {
	return "session:" + strings.TrimSpace(id) + ":"
}
