package auth

import (
	"context"
	"errors"
	"strings"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/security/totp"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// VerifyDeps contiene las dependencias del servicio de segundo factor.
type VerifyDeps struct {
	Store core.Store
	Codec *jwtx.Codec
	MFA   *totp.Verifier
}

type verifyService struct {
	deps VerifyDeps
}

// NewVerifyService crea un nuevo servicio de verificación TOTP.
func NewVerifyService(deps VerifyDeps) VerifyService {
	return &verifyService{deps: deps}
}

func (s *verifyService) VerifyCode(ctx context.Context, in dto.VerifyRequest) (*dto.AuthResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.verify"),
		logger.Op("VerifyCode"),
	)

	// Paso 0: Normalización
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Code = strings.TrimSpace(in.Code)
	if in.Email == "" || in.Code == "" {
		return nil, ErrMissingFields
	}

	log = log.With(logger.Email(in.Email))

	// Paso 1: El paso dos referencia la cuenta por email; acá la cuenta
	// inexistente sí se distingue (el cliente ya pasó el paso uno).
	user, err := s.deps.Store.Users().GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Debug("principal not found")
			return nil, ErrPrincipalNotFound
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, err
	}

	// Paso 2: Verificar el código contra el secreto del principal. Una
	// cuenta sin MFA enrolado no tiene secreto: todo código es inválido.
	if !user.MFAEnabled || user.MFASecret == "" || s.deps.MFA.IsInvalid(user.MFASecret, in.Code) {
		log.Debug("verification code rejected")
		return nil, ErrInvalidCode
	}

	// Paso 3: Emitir un access token solo (sin refresh) y registrarlo.
	access, err := s.deps.Codec.MintAccess(user.Email)
	if err != nil {
		return nil, ErrTokenIssueFailed
	}
	if _, err := s.deps.Store.Tokens().Record(ctx, user.ID, access, "", core.TokenKindBearer); err != nil {
		log.Error("token record failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}
	metrics.TokensIssuedTotal.Inc()

	log.Info("second factor verified", logger.UserID(user.ID))
	return &dto.AuthResponse{
		AccessToken: access,
		MFAEnabled:  true,
	}, nil
}
