// Package auth contiene los contracts del ciclo de vida de credenciales:
// alta de cuenta, login por password, rotación por refresh, segundo factor
// y logout.
package auth

import (
	"context"
	"fmt"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/auth"
)

// RegisterService define el alta de cuenta.
type RegisterService interface {
	// Register crea el principal, emite el primer par de tokens y lo
	// registra en el ledger. Si mfa_enabled, genera el secreto compartido
	// y el otpauth:// URI de enrolamiento.
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error)
}

// LoginService define el login por password.
type LoginService interface {
	// Login autentica email/password. Revoca todo lo activo del principal
	// antes de registrar el par nuevo: a lo sumo un par vivo por usuario.
	Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error)
}

// RefreshService define la rotación de credenciales.
type RefreshService interface {
	// Refresh rota el par a partir del header Authorization crudo. Header
	// ausente o sin esquema Bearer es no-op: retorna (nil, nil) y el
	// transporte responde sin cuerpo.
	Refresh(ctx context.Context, authorizationHeader string) (*dto.AuthResponse, error)
}

// VerifyService define el segundo factor (paso dos del login MFA).
type VerifyService interface {
	// VerifyCode valida el código TOTP y emite un access token solo.
	VerifyCode(ctx context.Context, in dto.VerifyRequest) (*dto.AuthResponse, error)
}

// LogoutService define la revocación puntual.
type LogoutService interface {
	// Logout revoca la fila del access token del header. Idempotente:
	// token desconocido o header inutilizable no son error.
	Logout(ctx context.Context, authorizationHeader string) error
}

// Errores del ciclo de vida. Los controllers los mapean a la taxonomía HTTP;
// acá son sentinels planos para que los tests comparen con errors.Is.
var (
	ErrMissingFields      = fmt.Errorf("missing required fields")
	ErrDuplicateAccount   = fmt.Errorf("account already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrPrincipalNotFound  = fmt.Errorf("principal not found")
	ErrInvalidCode        = fmt.Errorf("invalid verification code")
	ErrTokenIssueFailed   = fmt.Errorf("failed to issue token")
)
