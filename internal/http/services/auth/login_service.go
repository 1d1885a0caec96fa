package auth

import (
	"context"
	"errors"
	"strings"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/security/password"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// LoginDeps contiene las dependencias del login service.
type LoginDeps struct {
	Store core.Store
	Codec *jwtx.Codec
}

type loginService struct {
	deps LoginDeps
}

// NewLoginService crea un nuevo servicio de login.
func NewLoginService(deps LoginDeps) LoginService {
	return &loginService{deps: deps}
}

func (s *loginService) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	// Paso 0: Normalización
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	// Paso 1: Buscar principal. Credencial inválida es deliberadamente
	// indistinguible de cuenta inexistente (anti account-enumeration).
	user, err := s.deps.Store.Users().GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Debug("user not found")
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.UserID(user.ID))

	// Paso 2: Verificar password
	if !password.Verify(in.Password, user.PasswordHash) {
		log.Debug("password check failed")
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	// Paso 3: Emitir el par nuevo y rotar. Rotate revoca todo lo activo y
	// registra el par en una sola transacción: a lo sumo un par vivo.
	access, err := s.deps.Codec.MintAccess(user.Email)
	if err != nil {
		return nil, ErrTokenIssueFailed
	}
	refresh, err := s.deps.Codec.MintRefresh(user.Email)
	if err != nil {
		return nil, ErrTokenIssueFailed
	}
	revoked, err := s.deps.Store.Tokens().Rotate(ctx, user.ID, access, refresh, core.TokenKindBearer)
	if err != nil {
		log.Error("token rotation failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Add(2)
	metrics.TokensRevokedTotal.Add(float64(revoked))

	log.Info("login successful",
		logger.Bool("mfa_enabled", user.MFAEnabled),
		logger.Count(revoked))

	// El flag mfa_enabled le dice al cliente que el access token recién
	// emitido debe complementarse con el paso /verify.
	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		MFAEnabled:   user.MFAEnabled,
	}, nil
}
