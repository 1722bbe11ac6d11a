// Package sqlserver provides the SQL Server DDL dialect definition.
// This package is pure data with no database driver dependencies.
package sqlserver

import (
	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Config is the SQL Server dialect. Auto-increment renders as
// IDENTITY(1,1) directly after the type. TIMESTAMP is avoided as a
// concrete type because SQL Server reserves it for rowversion columns;
// point-in-time values use DATETIME2.
var Config = &dialect.Dialect{
	Name:    "sqlserver",
	Aliases: []string{"mssql", "tsql"},
	Identifiers: dialect.IdentifierConfig{
		Quote:    "[",
		QuoteEnd: "]",
		Escape:   "]]",
	},
	Types: map[schema.DataType]string{
		schema.TypeVarchar:   "VARCHAR",
		schema.TypeChar:      "CHAR",
		schema.TypeText:      "NVARCHAR(MAX)",
		schema.TypeSmallInt:  "SMALLINT",
		schema.TypeInt:       "INT",
		schema.TypeBigInt:    "BIGINT",
		schema.TypeDecimal:   "DECIMAL",
		schema.TypeFloat:     "REAL",
		schema.TypeDouble:    "DOUBLE PRECISION",
		schema.TypeBoolean:   "BIT",
		schema.TypeDate:      "DATE",
		schema.TypeTime:      "TIME",
		schema.TypeDateTime:  "DATETIME",
		schema.TypeTimestamp: "DATETIME2",
		schema.TypeBlob:      "VARBINARY(MAX)",
		schema.TypeUUID:      "UNIQUEIDENTIFIER",
		schema.TypeJSON:      "NVARCHAR(MAX)",
		schema.TypeEnum:      "VARCHAR(255)",
	},
	AutoIncrement:        dialect.AutoIncrementKeywordAfterType,
	AutoIncrementKeyword: "IDENTITY(1,1)",
	NowExpr:              "GETDATE()",
	UUIDExpr:             "NEWID()",
}
