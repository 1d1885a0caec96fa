package core

import "time"

// Role es la autoridad gruesa del principal. La decisión de autorización de
// negocio queda en los handlers; acá solo viaja el dato.
type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

// TokenKindBearer es la categoría de los pares access/refresh emitidos.
const TokenKindBearer = "bearer"

// User es el principal. El password hash es opaco (lo valida el comparador
// externo); mfa_secret está presente sii mfa_enabled.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	MFAEnabled   bool
	MFASecret    string
	CreatedAt    time.Time
}

// IssuedToken es el registro persistente de un token emitido. Nunca se borra
// físicamente: la revocación marca expired+revoked y la fila queda de audit
// trail.
type IssuedToken struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	Kind         string
	Expired      bool
	Revoked      bool
	CreatedAt    time.Time
}
