// Package auth contiene los controllers del ciclo de vida de credenciales.
package auth

import (
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Register *RegisterController
	Login    *LoginController
	Refresh  *RefreshController
	Verify   *VerifyController
	Logout   *LogoutController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Register: NewRegisterController(s.Register),
		Login:    NewLoginController(s.Login),
		Refresh:  NewRefreshController(s.Refresh),
		Verify:   NewVerifyController(s.Verify),
		Logout:   NewLogoutController(s.Logout),
	}
}
