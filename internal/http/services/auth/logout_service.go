package auth

import (
	"context"

	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// LogoutDeps contiene las dependencias del logout service.
type LogoutDeps struct {
	Store core.Store
}

type logoutService struct {
	deps LogoutDeps
}

// NewLogoutService crea un nuevo servicio de logout.
func NewLogoutService(deps LogoutDeps) LogoutService {
	return &logoutService{deps: deps}
}

// Logout revoca la fila del access token presentado (idempotente).
func (s *logoutService) Logout(ctx context.Context, authorizationHeader string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.logout"),
		logger.Op("Logout"),
	)

	raw, ok := helpers.BearerFromHeader(authorizationHeader)
	if !ok {
		log.Debug("no bearer credential in header, nothing to revoke")
		return nil
	}

	// Idempotente: un token desconocido o ya revocado se trata como
	// revocado. No se distingue para no filtrar estado del ledger.
	revoked, err := s.deps.Store.Tokens().RevokeByAccessToken(ctx, raw)
	if err != nil {
		log.Error("revocation failed", logger.Err(err))
		return err
	}
	if revoked {
		metrics.TokensRevokedTotal.Inc()
	}

	log.Info("logout successful", logger.Bool("revoked", revoked))
	return nil
}
