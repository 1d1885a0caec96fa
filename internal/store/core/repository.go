package core

import "context"

// UserRepository es el store de principals. La unicidad de email la impone
// el backend (constraint o índice).
type UserRepository interface {
	// Create persiste un usuario nuevo. ErrConflict si el email ya existe.
	Create(ctx context.Context, u *User) (*User, error)

	// GetByEmail busca por email (la clave de login). ErrNotFound si no hay.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca por id. ErrNotFound si no hay.
	GetByID(ctx context.Context, id string) (*User, error)
}

// TokenLedger es el registro autoritativo de revocación. Un token
// estructuralmente válido solo se honra si el ledger lo considera usable.
type TokenLedger interface {
	// Record persiste un par emitido con ambos flags en false.
	// ErrDuplicateToken si access o refresh ya existen.
	Record(ctx context.Context, userID, accessToken, refreshToken, kind string) (*IssuedToken, error)

	// Rotate revoca todo lo activo del principal y registra el par nuevo en
	// una sola transacción serializada por principal: dos logins concurrentes
	// del mismo usuario nunca dejan más de un par vivo.
	Rotate(ctx context.Context, userID, accessToken, refreshToken, kind string) (revoked int, err error)

	// RevokeAllActiveFor marca expired+revoked toda fila del principal que no
	// esté totalmente retirada (expired = false OR revoked = false). Retorna
	// cuántas tocó; 0 si no había nada.
	RevokeAllActiveFor(ctx context.Context, userID string) (int, error)

	// RevokeByAccessToken marca expired+revoked la fila del access token.
	// Retorna true si tocó una fila viva; token desconocido o ya retirado es
	// no-op silencioso (logout de un token ya inválido no es un error).
	RevokeByAccessToken(ctx context.Context, accessToken string) (bool, error)

	// IsUsable retorna true solo si la fila existe y revoked = false.
	// La expiración criptográfica NO se chequea acá: eso es del codec.
	IsUsable(ctx context.Context, accessToken string) (bool, error)

	// GetByAccessToken busca la fila de un access token. ErrNotFound si no hay.
	GetByAccessToken(ctx context.Context, accessToken string) (*IssuedToken, error)
}

// Store agrupa los repositorios de un backend.
type Store interface {
	Users() UserRepository
	Tokens() TokenLedger
	Ping(ctx context.Context) error
	Close() error
}
