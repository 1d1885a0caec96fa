package middlewares

import (
	"context"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyIdentity
)

// Identity es el principal autenticado del request. Se deriva del token en
// cada request; nunca se cachea entre requests.
type Identity struct {
	UserID     string
	Email      string
	Role       core.Role
	MFAEnabled bool
}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID retorna el request ID del contexto, o "" si no hay.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func setIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// GetIdentity retorna la identidad autenticada del contexto, o nil si el
// request es anónimo.
func GetIdentity(ctx context.Context) *Identity {
	if v, ok := ctx.Value(ctxKeyIdentity).(*Identity); ok {
		return v
	}
	return nil
}
