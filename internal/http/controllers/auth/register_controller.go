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

// RegisterController maneja el endpoint de alta de cuenta.
type RegisterController struct {
	service svc.RegisterService
}

// NewRegisterController crea un nuevo controller de registro.
func NewRegisterController(service svc.RegisterService) *RegisterController {
	return &RegisterController{service: service}
}

// Register maneja POST /v1/auth/register.
//
// Cuando el alta no pide MFA la respuesta es 202 sin cuerpo: los tokens
// existen en el ledger pero el transporte los retiene (el cliente debe pasar
// por login). Con MFA la respuesta es 200 con el provisioning URI, porque el
// enrolamiento del authenticator solo puede ocurrir acá.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.Register(ctx, req)
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeRegisterError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	if !req.MFAEnabled {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email y password son obligatorios"))
	case errors.Is(err, svc.ErrDuplicateAccount):
		httperrors.WriteError(w, httperrors.ErrDuplicateAccount)
	default:
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
	}
}
