// Package sqlite provides the SQLite DDL dialect definition.
// This package is pure data with no database driver dependencies.
package sqlite

import (
	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Config is the SQLite dialect. SQLite assigns rowid values to INTEGER
// PRIMARY KEY columns on its own, so auto-increment emits nothing. Type
// names are kept descriptive rather than collapsed to affinity classes;
// SQLite accepts any type token and the declared names round-trip.
var Config = &dialect.Dialect{
	Name: "sqlite",
	Identifiers: dialect.IdentifierConfig{
		Quote:    `"`,
		QuoteEnd: `"`,
		Escape:   `""`,
	},
	Types: map[schema.DataType]string{
		schema.TypeVarchar:   "VARCHAR",
		schema.TypeChar:      "CHAR",
		schema.TypeText:      "TEXT",
		schema.TypeSmallInt:  "SMALLINT",
		schema.TypeInt:       "INTEGER",
		schema.TypeBigInt:    "BIGINT",
		schema.TypeDecimal:   "DECIMAL",
		schema.TypeFloat:     "REAL",
		schema.TypeDouble:    "DOUBLE",
		schema.TypeBoolean:   "BOOLEAN",
		schema.TypeDate:      "DATE",
		schema.TypeTime:      "TIME",
		schema.TypeDateTime:  "DATETIME",
		schema.TypeTimestamp: "TIMESTAMP",
		schema.TypeBlob:      "BLOB",
		schema.TypeUUID:      "UUID",
		schema.TypeJSON:      "JSON",
		schema.TypeEnum:      "TEXT",
	},
	AutoIncrement: dialect.AutoIncrementImplicit,
	NowExpr:       "CURRENT_TIMESTAMP",
	UUIDExpr:      "(lower(hex(randomblob(16))))",
}
