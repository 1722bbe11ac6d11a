// Package mysql provides the MySQL DDL dialect definition.
// This package is pure data with no database driver dependencies.
package mysql

import (
	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Config is the MySQL dialect. Enum columns render inline as
// ENUM('a','b'); auto-increment uses the AUTO_INCREMENT keyword placed
// after the NULL clause.
var Config = &dialect.Dialect{
	Name:    "mysql",
	Aliases: []string{"mariadb"},
	Identifiers: dialect.IdentifierConfig{
		Quote:    "`",
		QuoteEnd: "`",
		Escape:   "``",
	},
	Types: map[schema.DataType]string{
		schema.TypeVarchar:   "VARCHAR",
		schema.TypeChar:      "CHAR",
		schema.TypeText:      "TEXT",
		schema.TypeSmallInt:  "SMALLINT",
		schema.TypeInt:       "INT",
		schema.TypeBigInt:    "BIGINT",
		schema.TypeDecimal:   "DECIMAL",
		schema.TypeFloat:     "FLOAT",
		schema.TypeDouble:    "DOUBLE",
		schema.TypeBoolean:   "BOOLEAN",
		schema.TypeDate:      "DATE",
		schema.TypeTime:      "TIME",
		schema.TypeDateTime:  "DATETIME",
		schema.TypeTimestamp: "TIMESTAMP",
		schema.TypeBlob:      "BLOB",
		// MySQL has no uuid column type; the canonical textual form is 36
		// characters.
		schema.TypeUUID: "CHAR(36)",
		schema.TypeJSON: "JSON",
	},
	AutoIncrement:        dialect.AutoIncrementKeywordAfterNull,
	AutoIncrementKeyword: "AUTO_INCREMENT",
	EnumInline:           true,
	NowExpr:              "CURRENT_TIMESTAMP",
	UUIDExpr:             "(UUID())",
}
