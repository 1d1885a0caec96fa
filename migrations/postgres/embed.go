// Package migrations embebe los archivos SQL del esquema.
package migrations

import "embed"

// FS contiene las migraciones de postgres; se aplican en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
