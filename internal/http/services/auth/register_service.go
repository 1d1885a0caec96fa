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
	"github.com/dropDatabas3/gatekeeper/internal/security/totp"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// RegisterDeps contiene las dependencias del register service.
type RegisterDeps struct {
	Store core.Store
	Codec *jwtx.Codec
	MFA   *totp.Verifier
}

type registerService struct {
	deps RegisterDeps
}

// NewRegisterService crea un nuevo servicio de registro.
func NewRegisterService(deps RegisterDeps) RegisterService {
	return &registerService{deps: deps}
}

func (s *registerService) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	// Paso 0: Normalización
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	role := core.Role(strings.ToUpper(strings.TrimSpace(in.Role)))
	switch role {
	case core.RoleUser, core.RoleAdmin, core.RoleManager:
	case "":
		role = core.RoleUser
	default:
		return nil, ErrMissingFields
	}

	log = log.With(logger.Email(in.Email))

	// Paso 1: Hash del password (nunca se persiste en claro)
	hash, err := password.Hash(password.Default, in.Password)
	if err != nil {
		log.Error("password hash failed", logger.Err(err))
		return nil, err
	}

	// Paso 2: Secreto MFA si el principal lo pidió
	var secret string
	if in.MFAEnabled {
		secret, err = totp.GenerateSecret()
		if err != nil {
			log.Error("mfa secret generation failed", logger.Err(err))
			return nil, err
		}
	}

	// Paso 3: Persistir el principal
	user, err := s.deps.Store.Users().Create(ctx, &core.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		MFAEnabled:   in.MFAEnabled,
		MFASecret:    secret,
	})
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			log.Debug("duplicate email")
			return nil, ErrDuplicateAccount
		}
		log.Error("user create failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.UserID(user.ID))

	// Paso 4: Emitir y registrar el primer par. El subject del token es el
	// email: la clave estable de login, igual en todos los mints.
	access, err := s.deps.Codec.MintAccess(user.Email)
	if err != nil {
		return nil, ErrTokenIssueFailed
	}
	refresh, err := s.deps.Codec.MintRefresh(user.Email)
	if err != nil {
		return nil, ErrTokenIssueFailed
	}
	if _, err := s.deps.Store.Tokens().Record(ctx, user.ID, access, refresh, core.TokenKindBearer); err != nil {
		log.Error("token record failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}
	metrics.TokensIssuedTotal.Add(2)

	resp := &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		MFAEnabled:   user.MFAEnabled,
	}
	if user.MFAEnabled {
		// Fail-soft: un URI inservible no aborta el alta.
		resp.ProvisioningURI = s.deps.MFA.ProvisioningURI(user.Email, secret)
	}

	log.Info("principal registered", logger.Bool("mfa_enabled", user.MFAEnabled))
	return resp, nil
}
