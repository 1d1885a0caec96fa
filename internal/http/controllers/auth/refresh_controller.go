package auth

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// RefreshController maneja la rotación de credenciales.
type RefreshController struct {
	service svc.RefreshService
}

// NewRefreshController crea un nuevo controller de refresh.
func NewRefreshController(service svc.RefreshService) *RefreshController {
	return &RefreshController{service: service}
}

// Refresh maneja POST /v1/auth/refresh-token. Un header ausente o sin
// esquema Bearer es no-op: 204 sin cuerpo, igual que el resultado nil del
// service.
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RefreshController.Refresh"))

	resp, err := c.service.Refresh(ctx, r.Header.Get("Authorization"))
	if err != nil {
		log.Debug("refresh failed", logger.Err(err))
		writeRefreshError(w, err)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeRefreshError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrPrincipalNotFound):
		httperrors.WriteError(w, httperrors.ErrPrincipalNotFound)
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	default:
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
	}
}
