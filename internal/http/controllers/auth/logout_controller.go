package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// LogoutController maneja la revocación puntual.
type LogoutController struct {
	service svc.LogoutService
}

// NewLogoutController crea un nuevo controller de logout.
func NewLogoutController(service svc.LogoutService) *LogoutController {
	return &LogoutController{service: service}
}

// Logout maneja POST /v1/auth/logout. Siempre 204 salvo falla del backend:
// revocar un token desconocido o un header inutilizable es no-op.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	if err := c.service.Logout(ctx, r.Header.Get("Authorization")); err != nil {
		log.Error("logout failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
