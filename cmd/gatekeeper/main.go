// gatekeeper es el servidor HTTP del ciclo de vida de credenciales:
// registro, login con segundo factor TOTP, rotación por refresh token y
// revocación contra el ledger persistente.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/gatekeeper/internal/cache"
	"github.com/dropDatabas3/gatekeeper/internal/config"
	authctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/health"
	"github.com/dropDatabas3/gatekeeper/internal/http/router"
	authsvc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
	healthsvc "github.com/dropDatabas3/gatekeeper/internal/http/services/health"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/security/totp"
	"github.com/dropDatabas3/gatekeeper/internal/store"
)

func main() {
	// .env (opcional) - prioridad .env.dev > .env
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.dev")

	cfgPath := flag.String("config", "configs/config.yaml", "ruta al config YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// Logger todavía no inicializado: stderr directo.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "gatekeeper",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal("store open failed", logger.Err(err))
	}
	defer func() { _ = st.Close() }()
	log.Info("store ready", logger.String("driver", cfg.Storage.Driver))

	// --- Cache (rate limiting) ---
	memTTL, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	kv, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		RedisAddr:  cfg.Cache.Redis.Addr,
		RedisDB:    cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: memTTL,
	})
	if err != nil {
		log.Fatal("cache init failed", logger.Err(err))
	}
	defer func() { _ = kv.Close() }()

	// --- Codec y verificador TOTP ---
	codec, err := jwtx.NewCodec(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		log.Fatal("jwt codec init failed", logger.Err(err))
	}
	mfa := totp.New(cfg.MFA.Issuer, cfg.MFA.Digits, cfg.MFAPeriod(), cfg.MFA.Skew)

	// --- Métricas ---
	if err := metrics.Register(nil); err != nil {
		log.Fatal("metrics register failed", logger.Err(err))
	}

	// --- Services y controllers ---
	services := authsvc.NewServices(authsvc.Deps{Store: st, Codec: codec, MFA: mfa})
	health := healthsvc.NewServices(healthsvc.Deps{
		DBCheck:    st.Ping,
		CacheCheck: kv.Ping,
	})

	handler := router.New(router.Deps{
		Config: cfg,
		Store:  st,
		Codec:  codec,
		Cache:  kv,
		Auth:   authctrl.NewControllers(services),
		Health: healthctrl.NewHealthController(health.Health),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server terminated", logger.Err(err))
	}
	log.Info("bye")
}
