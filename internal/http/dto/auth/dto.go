// Package auth define los DTOs del ciclo de vida de credenciales.
package auth

// RegisterRequest es el payload de alta de cuenta.
type RegisterRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

// LoginRequest es el payload de autenticación por password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest es el payload del segundo factor (paso dos del login MFA).
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// AuthResponse es la respuesta portadora de tokens. refresh_token y
// provisioning_uri se omiten por completo cuando no aplican (nunca null).
type AuthResponse struct {
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token,omitempty"`
	MFAEnabled      bool   `json:"mfa_enabled"`
	ProvisioningURI string `json:"provisioning_uri,omitempty"`
}
