// Package store selecciona el backend de persistencia según configuración.
package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/gatekeeper/internal/config"
	"github.com/dropDatabas3/gatekeeper/internal/store/adapters/memory"
	"github.com/dropDatabas3/gatekeeper/internal/store/adapters/pg"
	"github.com/dropDatabas3/gatekeeper/internal/store/adapters/sqlite"
	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

// Open construye el core.Store del driver configurado.
func Open(ctx context.Context, cfg *config.Config) (core.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return pg.Open(ctx, cfg.Storage.DSN)
	case "sqlite":
		return sqlite.Open(ctx, cfg.Storage.DSN)
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Storage.Driver)
	}
}
