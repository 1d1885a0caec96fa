package middlewares

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
)

const requestIDHeader = "X-Request-ID"

// maxRequestIDLen acota los ids que manda el cliente; uno más largo se
// descarta y se genera uno propio.
const maxRequestIDLen = 64

// WithRequestID propaga el X-Request-ID del cliente o genera uno nuevo, lo
// refleja en el header de respuesta y lo deja en el contexto para que el
// logging lo correlacione.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if rid == "" || len(rid) > maxRequestIDLen {
				rid = newRequestID()
			}
			w.Header().Set(requestIDHeader, rid)
			ctx := setRequestID(r.Context(), rid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
