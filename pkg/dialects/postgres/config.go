// Package postgres provides the PostgreSQL DDL dialect definition.
// This package is pure data with no database driver dependencies.
package postgres

import (
	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Config is the PostgreSQL dialect. Auto-increment integer columns are
// rendered through the SERIAL type family rather than a keyword.
var Config = &dialect.Dialect{
	Name:    "postgresql",
	Aliases: []string{"postgres", "pg"},
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
		schema.TypeDecimal:   "NUMERIC",
		schema.TypeFloat:     "REAL",
		schema.TypeDouble:    "DOUBLE PRECISION",
		schema.TypeBoolean:   "BOOLEAN",
		schema.TypeDate:      "DATE",
		schema.TypeTime:      "TIME",
		schema.TypeDateTime:  "TIMESTAMP",
		schema.TypeTimestamp: "TIMESTAMP",
		schema.TypeBlob:      "BYTEA",
		schema.TypeUUID:      "UUID",
		schema.TypeJSON:      "JSONB",
		// No CREATE TYPE statements: enum members live in the designed
		// schema, the column stays TEXT.
		schema.TypeEnum: "TEXT",
	},
	SerialTypes: map[schema.DataType]string{
		schema.TypeSmallInt: "SMALLSERIAL",
		schema.TypeInt:      "SERIAL",
		schema.TypeBigInt:   "BIGSERIAL",
	},
	AutoIncrement: dialect.AutoIncrementSerial,
	NowExpr:       "CURRENT_TIMESTAMP",
	UUIDExpr:      "gen_random_uuid()",
}
