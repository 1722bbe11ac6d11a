// Package dialect defines the SQL dialect abstraction used by the DDL
// generator and parser: the mapping from the abstract type vocabulary onto
// concrete column types, identifier quoting rules, auto-increment
// mechanisms, and default-expression synonyms. Concrete dialects live in
// pkg/dialects/<name> and self-register through init().
package dialect

import (
	"fmt"
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// AutoIncrementStyle selects how a dialect expresses an auto-incrementing
// integer key column.
type AutoIncrementStyle int

const (
	// AutoIncrementImplicit emits nothing; the dialect auto-assigns values
	// for integer primary keys on its own (sqlite rowid behavior).
	AutoIncrementImplicit AutoIncrementStyle = iota
	// AutoIncrementSerial substitutes a dedicated serial type for the
	// column type (postgresql SERIAL family).
	AutoIncrementSerial
	// AutoIncrementKeywordAfterType places the keyword directly after the
	// type (sqlserver IDENTITY(1,1)).
	AutoIncrementKeywordAfterType
	// AutoIncrementKeywordAfterNull places the keyword after the NULL
	// clause (mysql AUTO_INCREMENT).
	AutoIncrementKeywordAfterNull
)

// IdentifierConfig defines how the dialect quotes identifiers.
type IdentifierConfig struct {
	// Quote is the opening quote character.
	Quote string

	// QuoteEnd is the closing quote character, usually equal to Quote
	// (] for sqlserver's bracket form).
	QuoteEnd string

	// Escape is the sequence that embeds a closing quote inside a quoted
	// identifier.
	Escape string
}

// Dialect is one supported SQL dialect. The fields are pure data; the
// generator and parser interpret them. Every dialect must map the entire
// abstract type vocabulary (checked at registration).
type Dialect struct {
	// Name is the canonical dialect name (mysql, postgresql, sqlite,
	// sqlserver).
	Name string

	// Aliases are accepted alternative names (postgres, mssql).
	Aliases []string

	// Identifiers holds the quoting rules.
	Identifiers IdentifierConfig

	// Types maps every abstract type onto the dialect's concrete base
	// type. Length, precision, and enum parameters are rendered by
	// TypeFor.
	Types map[schema.DataType]string

	// SerialTypes substitutes dedicated auto-increment types per integer
	// abstract type. Consulted when AutoIncrement is AutoIncrementSerial.
	SerialTypes map[schema.DataType]string

	// AutoIncrement selects the auto-increment mechanism.
	AutoIncrement AutoIncrementStyle

	// AutoIncrementKeyword is the keyword emitted for the keyword styles.
	AutoIncrementKeyword string

	// EnumInline renders enum columns as an inline ENUM('a','b') type
	// instead of the Types entry.
	EnumInline bool

	// NowExpr is the translation of the "now" default synonym.
	NowExpr string

	// UUIDExpr is the translation of the "generate uuid" default synonym.
	UUIDExpr string
}

// Default sizes applied when a sized type carries no explicit parameter.
const (
	defaultVarcharSize = 255
	defaultCharSize    = 1
)

// TypeFor renders the concrete column type for an attribute: the mapped
// base type with length/precision/enum parameters applied, the serial
// substitution for auto-increment integers where the dialect uses one, and
// the preserved raw token for TypeRaw. Total over the closed vocabulary;
// registration guarantees no abstract type is unmapped.
func (d *Dialect) TypeFor(a *schema.Attribute) string {
	if a.AutoIncrement && d.AutoIncrement == AutoIncrementSerial {
		if serial, ok := d.SerialTypes[a.Type]; ok {
			return serial
		}
	}

	switch a.Type {
	case schema.TypeRaw:
		return a.Raw
	case schema.TypeEnum:
		if d.EnumInline {
			return "ENUM(" + quotedValueList(a.EnumValues) + ")"
		}
		return d.Types[schema.TypeEnum]
	case schema.TypeVarchar:
		return sizedType(d.Types[schema.TypeVarchar], a.Size, defaultVarcharSize)
	case schema.TypeChar:
		return sizedType(d.Types[schema.TypeChar], a.Size, defaultCharSize)
	case schema.TypeDecimal:
		base := d.Types[schema.TypeDecimal]
		switch {
		case a.Precision > 0 && a.Scale > 0:
			return fmt.Sprintf("%s(%d,%d)", base, a.Precision, a.Scale)
		case a.Precision > 0:
			return fmt.Sprintf("%s(%d)", base, a.Precision)
		default:
			return base
		}
	default:
		return d.Types[a.Type]
	}
}

func sizedType(base string, size, fallback int) string {
	if strings.Contains(base, "(") {
		return base
	}
	if size <= 0 {
		size = fallback
	}
	return fmt.Sprintf("%s(%d)", base, size)
}

func quotedValueList(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(parts, ",")
}

// Default expression synonyms recognized by DefaultExpr.
const (
	SynonymNow  = "now"
	SynonymUUID = "generate uuid"
)

// DefaultExpr translates the recognized default-value synonyms ("now",
// "generate uuid") into the dialect's expression and passes every other
// expression through verbatim.
func (d *Dialect) DefaultExpr(expr string) string {
	switch strings.ToLower(strings.TrimSpace(expr)) {
	case SynonymNow:
		return d.NowExpr
	case SynonymUUID:
		return d.UUIDExpr
	default:
		return expr
	}
}

// QuoteIdentifier wraps an identifier in the dialect's quote characters,
// doubling any embedded closing quote.
func (d *Dialect) QuoteIdentifier(name string) string {
	if d.Identifiers.Quote == "" {
		return name
	}
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}
