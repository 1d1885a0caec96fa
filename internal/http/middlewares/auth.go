package middlewares

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARES
// =================================================================================

// WithAuthentication es el gate por-request: si el header trae un bearer
// token, lo verifica contra el codec Y contra el ledger, carga el principal
// y lo cuelga del contexto. Header ausente deja pasar el request anónimo
// (las rutas protegidas cortan con RequireAuth).
//
// El orden es deliberado: primero firma y vigencia (barato, en memoria),
// después el ledger (un query). Un token firmado y vigente pero revocado
// se rechaza igual: el ledger es autoritativo.
func WithAuthentication(codec *jwtx.Codec, store core.Store) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := helpers.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.From(r.Context()).With(
				logger.Layer("middleware"),
				logger.Component("auth.gate"),
			)

			claims, err := codec.Verify(raw)
			if err != nil {
				log.Debug("token rejected", logger.Err(err))
				unauthorized(w, err)
				return
			}

			usable, err := store.Tokens().IsUsable(r.Context(), raw)
			if err != nil {
				log.Error("ledger check failed", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
				return
			}
			if !usable {
				log.Debug("token revoked or unknown", logger.Subject(claims.Subject))
				unauthorized(w, nil)
				return
			}

			user, err := store.Users().GetByEmail(r.Context(), claims.Subject)
			if err != nil {
				// El subject firmado (el email de login) no mapea a un
				// principal: token huérfano.
				log.Debug("principal not found for token", logger.Subject(claims.Subject))
				unauthorized(w, err)
				return
			}

			ctx := setIdentity(r.Context(), &Identity{
				UserID:     user.ID,
				Email:      user.Email,
				Role:       user.Role,
				MFAEnabled: user.MFAEnabled,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth corta con 401 los requests que llegaron anónimos al handler.
// Asume WithAuthentication más arriba en la cadena.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetIdentity(r.Context()) == nil {
				unauthorized(w, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole corta con 403 si la identidad no tiene ninguno de los roles
// dados. Implica RequireAuth.
func RequireRole(roles ...core.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			if id == nil {
				unauthorized(w, nil)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httperrors.WriteError(w, httperrors.ErrForbidden)
		})
	}
}

// unauthorized responde 401 con WWW-Authenticate. El motivo exacto del
// rechazo no viaja al cliente; queda en los logs.
func unauthorized(w http.ResponseWriter, err error) {
	desc := "invalid_token"
	if err != nil && errors.Is(err, jwtx.ErrExpired) {
		desc = "token_expired"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="`+desc+`"`)
	httperrors.WriteError(w, httperrors.ErrUnauthenticated)
}
