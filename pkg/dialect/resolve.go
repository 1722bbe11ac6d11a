package dialect

import (
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// TypeInfo is the abstract reading of a concrete type token.
type TypeInfo struct {
	// Type is the abstract type the token maps to.
	Type schema.DataType

	// AutoIncrement is set for serial-family tokens, which fold the
	// auto-increment mechanism into the type itself.
	AutoIncrement bool
}

// concreteTypes is the union of every concrete base type the registered
// dialects emit plus the common aliases seen in externally written DDL.
// Keys are uppercase; multiword types are joined with a single space.
// The mapping is deliberately many-to-one: dialects without a native
// representation for an abstract type borrow a wider one, so the reverse
// direction cannot be injective.
var concreteTypes = map[string]TypeInfo{
	"VARCHAR":           {Type: schema.TypeVarchar},
	"NVARCHAR":          {Type: schema.TypeVarchar},
	"VARCHAR2":          {Type: schema.TypeVarchar},
	"CHARACTER VARYING": {Type: schema.TypeVarchar},

	"CHAR":      {Type: schema.TypeChar},
	"NCHAR":     {Type: schema.TypeChar},
	"CHARACTER": {Type: schema.TypeChar},

	"TEXT":       {Type: schema.TypeText},
	"TINYTEXT":   {Type: schema.TypeText},
	"MEDIUMTEXT": {Type: schema.TypeText},
	"LONGTEXT":   {Type: schema.TypeText},
	"CLOB":       {Type: schema.TypeText},
	"NTEXT":      {Type: schema.TypeText},

	"SMALLINT": {Type: schema.TypeSmallInt},
	"INT2":     {Type: schema.TypeSmallInt},
	"TINYINT":  {Type: schema.TypeSmallInt},

	"INT":       {Type: schema.TypeInt},
	"INTEGER":   {Type: schema.TypeInt},
	"INT4":      {Type: schema.TypeInt},
	"MEDIUMINT": {Type: schema.TypeInt},

	"BIGINT": {Type: schema.TypeBigInt},
	"INT8":   {Type: schema.TypeBigInt},

	"DECIMAL": {Type: schema.TypeDecimal},
	"NUMERIC": {Type: schema.TypeDecimal},
	"NUMBER":  {Type: schema.TypeDecimal},
	"MONEY":   {Type: schema.TypeDecimal},

	"FLOAT": {Type: schema.TypeFloat},
	"REAL":  {Type: schema.TypeFloat},

	"DOUBLE":           {Type: schema.TypeDouble},
	"DOUBLE PRECISION": {Type: schema.TypeDouble},

	"BOOLEAN": {Type: schema.TypeBoolean},
	"BOOL":    {Type: schema.TypeBoolean},
	"BIT":     {Type: schema.TypeBoolean},

	"DATE": {Type: schema.TypeDate},

	"TIME":                   {Type: schema.TypeTime},
	"TIME WITH TIME ZONE":    {Type: schema.TypeTime},
	"TIME WITHOUT TIME ZONE": {Type: schema.TypeTime},

	"DATETIME":      {Type: schema.TypeDateTime},
	"SMALLDATETIME": {Type: schema.TypeDateTime},

	"TIMESTAMP":                   {Type: schema.TypeTimestamp},
	"TIMESTAMP WITH TIME ZONE":    {Type: schema.TypeTimestamp},
	"TIMESTAMP WITHOUT TIME ZONE": {Type: schema.TypeTimestamp},
	"TIMESTAMPTZ":                 {Type: schema.TypeTimestamp},
	"DATETIME2":                   {Type: schema.TypeTimestamp},
	"DATETIMEOFFSET":              {Type: schema.TypeTimestamp},

	"BLOB":       {Type: schema.TypeBlob},
	"TINYBLOB":   {Type: schema.TypeBlob},
	"MEDIUMBLOB": {Type: schema.TypeBlob},
	"LONGBLOB":   {Type: schema.TypeBlob},
	"BYTEA":      {Type: schema.TypeBlob},
	"BINARY":     {Type: schema.TypeBlob},
	"VARBINARY":  {Type: schema.TypeBlob},
	"IMAGE":      {Type: schema.TypeBlob},

	"UUID":             {Type: schema.TypeUUID},
	"UNIQUEIDENTIFIER": {Type: schema.TypeUUID},
	"GUID":             {Type: schema.TypeUUID},

	"JSON":  {Type: schema.TypeJSON},
	"JSONB": {Type: schema.TypeJSON},

	"ENUM": {Type: schema.TypeEnum},

	"SERIAL":      {Type: schema.TypeInt, AutoIncrement: true},
	"SERIAL4":     {Type: schema.TypeInt, AutoIncrement: true},
	"BIGSERIAL":   {Type: schema.TypeBigInt, AutoIncrement: true},
	"SERIAL8":     {Type: schema.TypeBigInt, AutoIncrement: true},
	"SMALLSERIAL": {Type: schema.TypeSmallInt, AutoIncrement: true},
	"SERIAL2":     {Type: schema.TypeSmallInt, AutoIncrement: true},
}

// Resolve maps a concrete type token (base name, without parameters) back
// onto the abstract vocabulary. The second return is false for tokens no
// dialect recognizes; callers preserve those raw.
func Resolve(token string) (TypeInfo, bool) {
	info, ok := concreteTypes[strings.ToUpper(strings.TrimSpace(token))]
	return info, ok
}
