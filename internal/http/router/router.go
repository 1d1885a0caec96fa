// Package router arma el árbol de rutas HTTP y la cadena de middlewares.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/gatekeeper/internal/cache"
	"github.com/dropDatabas3/gatekeeper/internal/config"
	authctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/auth"
	democtrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/demo"
	healthctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/health"
	mw "github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/rate"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// Deps contiene todo lo que el router necesita para armar el árbol.
type Deps struct {
	Config *config.Config
	Store  core.Store
	Codec  *jwtx.Codec
	Cache  cache.Client

	Auth   *authctrl.Controllers
	Health *healthctrl.HealthController
}

// New construye el handler raíz con la cadena completa de middlewares.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Cadena global. El orden importa: request_id antes que logging (el log
	// necesita el id). El gate de autenticación NO va acá: las rutas de
	// /v1/auth manejan su propio header (refresh/logout son no-op con
	// tokens inutilizables, no 401 anticipado).
	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())
	r.Use(mw.WithCORS(d.Config.Server.CORSAllowedOrigins))

	// Operacionales, fuera de /v1
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	// Rate limiters por endpoint sensible (fail-open si el cache no está)
	var loginLimit, verifyLimit mw.Middleware
	if d.Config.Rate.Enabled && d.Cache != nil {
		loginLimit = mw.WithRateLimit(rate.NewFixedWindow(
			d.Cache, "rl:login:", d.Config.Rate.Login.Limit, mustDur(d.Config.Rate.Login.Window)),
			mw.IPOnlyRateKey)
		verifyLimit = mw.WithRateLimit(rate.NewFixedWindow(
			d.Cache, "rl:verify:", d.Config.Rate.Verify.Limit, mustDur(d.Config.Rate.Verify.Window)),
			mw.IPOnlyRateKey)
	} else {
		passthrough := mw.Middleware(func(next http.Handler) http.Handler { return next })
		loginLimit, verifyLimit = passthrough, passthrough
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", d.Auth.Register.Register)
		r.With(loginLimit).Post("/authenticate", d.Auth.Login.Login)
		r.Post("/refresh-token", d.Auth.Refresh.Refresh)
		r.With(verifyLimit).Post("/verify", d.Auth.Verify.Verify)
		r.Post("/logout", d.Auth.Logout.Logout)
	})

	// Recursos de prueba gated por rol: ejercitan el gate completo
	// (token -> ledger -> principal -> rol). El gate corre solo en rutas
	// protegidas y se re-evalúa en cada request, sin sesión.
	gate := mw.WithAuthentication(d.Codec, d.Store)

	admin := democtrl.New("admin")
	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(gate, mw.RequireRole(core.RoleAdmin))
		r.HandleFunc("/", admin.Handle)
	})

	manager := democtrl.New("management")
	r.Route("/v1/management", func(r chi.Router) {
		r.Use(gate, mw.RequireRole(core.RoleManager, core.RoleAdmin))
		r.HandleFunc("/", manager.Handle)
	})

	return r
}

func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
