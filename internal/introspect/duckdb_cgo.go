//go:build cgo

package introspect

// The duckdb driver is cgo-only; register it only in cgo builds so the
// package still compiles with CGO_ENABLED=0.
import _ "github.com/marcboeker/go-duckdb"
