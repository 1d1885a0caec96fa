package core

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrDuplicateToken indica que un token string ya existe en el ledger.
	// Con jti únicos esto no debería pasar: es una falla de consistencia,
	// no una condición reintentables.
	ErrDuplicateToken = errors.New("duplicate token")
)
