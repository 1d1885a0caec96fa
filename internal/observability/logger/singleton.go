package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu       sync.Mutex
	instance *zap.Logger
)

// Init arma el logger global del proceso a partir de la config. Solo la
// primera llamada construye; la configuración queda fija hasta el final.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = build(cfg)
	}
}

// L devuelve el logger global. Sin Init previo cae a uno de desarrollo en
// nivel info, que es lo que quieren los tests.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = build(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Named devuelve el logger global con nombre de componente.
func Named(name string) *zap.Logger { return L().Named(name) }

// With devuelve el logger global con campos fijos adicionales.
func With(fields ...zap.Field) *zap.Logger { return L().With(fields...) }

// Sync vuelca lo pendiente; pensado para defer en main.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		return nil
	}
	return instance.Sync()
}
