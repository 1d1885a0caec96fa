package auth

import (
	"context"
	"errors"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/auth"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// RefreshDeps contiene las dependencias del refresh service.
type RefreshDeps struct {
	Store core.Store
	Codec *jwtx.Codec
}

type refreshService struct {
	deps RefreshDeps
}

// NewRefreshService crea un nuevo servicio de rotación.
func NewRefreshService(deps RefreshDeps) RefreshService {
	return &refreshService{deps: deps}
}

func (s *refreshService) Refresh(ctx context.Context, authorizationHeader string) (*dto.AuthResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.refresh"),
		logger.Op("Refresh"),
	)

	// Paso 0: Header ausente o sin esquema Bearer: no hay nada que rotar.
	raw, ok := helpers.BearerFromHeader(authorizationHeader)
	if !ok {
		log.Debug("no bearer credential in header, nothing to rotate")
		return nil, nil
	}

	// Paso 1: Extraer el subject verificando firma pero no vigencia: el
	// token presentado puede estar vencido y aun así identificar al
	// principal. Un token indescifrable se trata igual que header ausente.
	subject, err := s.deps.Codec.ExtractSubject(raw)
	if err != nil {
		log.Debug("subject extraction failed, nothing to rotate", logger.Err(err))
		return nil, nil
	}

	// Paso 2: El principal tiene que existir. El subject es el email de
	// login; acá el token ya probó estar firmado por nosotros, así que un
	// subject huérfano sí es un error.
	user, err := s.deps.Store.Users().GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Debug("principal not found", logger.Subject(subject))
			return nil, ErrPrincipalNotFound
		}
		log.Error("principal lookup failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.UserID(user.ID))

	// Paso 3: Chequeo de usabilidad completo: vigencia criptográfica
	// (codec) y estado en el ledger. Si falla, no se rota ni se revoca
	// nada extra.
	if _, err := s.deps.Codec.Verify(raw); err != nil {
		log.Debug("presented token not valid", logger.Err(err))
		return nil, ErrInvalidCredentials
	}
	usable, err := s.deps.Store.Tokens().IsUsable(ctx, raw)
	if err != nil {
		log.Error("ledger check failed", logger.Err(err))
		return nil, err
	}
	if !usable {
		log.Debug("presented token revoked or unknown")
		return nil, ErrInvalidCredentials
	}

	// Paso 4: Rotar: revocar todo lo activo y registrar el par nuevo.
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

	metrics.TokensIssuedTotal.Add(2)
	metrics.TokensRevokedTotal.Add(float64(revoked))

	log.Info("credentials rotated", logger.Count(revoked))
	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		MFAEnabled:   user.MFAEnabled,
	}, nil
}
