package auth

import (
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/security/totp"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// Deps son las dependencias compartidas del dominio auth.
type Deps struct {
	Store core.Store
	Codec *jwtx.Codec
	MFA   *totp.Verifier
}

// Services agrupa los servicios del ciclo de vida de credenciales.
type Services struct {
	Register RegisterService
	Login    LoginService
	Refresh  RefreshService
	Verify   VerifyService
	Logout   LogoutService
}

// NewServices construye todos los servicios a partir de las deps compartidas.
func NewServices(d Deps) Services {
	return Services{
		Register: NewRegisterService(RegisterDeps{Store: d.Store, Codec: d.Codec, MFA: d.MFA}),
		Login:    NewLoginService(LoginDeps{Store: d.Store, Codec: d.Codec}),
		Refresh:  NewRefreshService(RefreshDeps{Store: d.Store, Codec: d.Codec}),
		Verify:   NewVerifyService(VerifyDeps{Store: d.Store, Codec: d.Codec, MFA: d.MFA}),
		Logout:   NewLogoutService(LogoutDeps{Store: d.Store}),
	}
}
