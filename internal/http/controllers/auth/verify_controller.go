package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// VerifyController maneja el segundo factor del login MFA.
type VerifyController struct {
	service svc.VerifyService
}

// NewVerifyController crea un nuevo controller de verificación.
func NewVerifyController(service svc.VerifyService) *VerifyController {
	return &VerifyController{service: service}
}

// Verify maneja POST /v1/auth/verify.
func (c *VerifyController) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("VerifyController.Verify"))

	var req dto.VerifyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.VerifyCode(ctx, req)
	if err != nil {
		log.Debug("verification failed", logger.Err(err))
		writeVerifyError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email y code son obligatorios"))
	case errors.Is(err, svc.ErrPrincipalNotFound):
		httperrors.WriteError(w, httperrors.ErrPrincipalNotFound)
	case errors.Is(err, svc.ErrInvalidCode):
		httperrors.WriteError(w, httperrors.ErrInvalidCode)
	default:
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
	}
}
