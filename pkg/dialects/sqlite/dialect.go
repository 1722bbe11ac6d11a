package sqlite

import (
	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
)

func init() {
	dialect.Register(Config)
}
