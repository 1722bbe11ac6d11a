// Package ddl generates SQL DDL scripts from a schema graph. Generation
// is pure and deterministic: the same schema, dialect, and options always
// produce byte-identical output, and nothing is emitted while the schema
// has structural defects.
package ddl

import (
	"fmt"
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Options controls optional sections of the generated script.
type Options struct {
	// IncludeDrops prefixes the script with DROP TABLE IF EXISTS
	// statements, junction tables first, then tables in reverse
	// declaration order.
	IncludeDrops bool

	// IncludeComments adds a banner comment above each table.
	IncludeComments bool
}

// Generate renders the schema as a DDL script for the named dialect.
// The whole schema is validated first; any defects abort generation and
// come back as a *schema.DefectError with the complete list. An unknown
// dialect name is an argument error, not a schema defect.
func Generate(s *schema.Schema, dialectName string, opts Options) (string, error) {
	d, ok := dialect.Get(dialectName)
	if !ok {
		return "", fmt.Errorf("unknown dialect %q (supported: %s)", dialectName, strings.Join(dialect.List(), ", "))
	}

	if defects := schema.Validate(s); len(defects) > 0 {
		return "", &schema.DefectError{Defects: defects}
	}

	g := &generator{d: d, opts: opts, s: s}
	return g.render(s), nil
}

type generator struct {
	d    *dialect.Dialect
	opts Options
	s    *schema.Schema
}

// render assembles the script: drops, then tables in declaration order
// with their foreign-key indexes, then synthesized junction tables.
// Statements are separated by blank lines.
func (g *generator) render(s *schema.Schema) string {
	junctions := collectJunctions(s)

	var blocks []string
	if g.opts.IncludeDrops {
		if drops := g.dropBlock(s, junctions); drops != "" {
			blocks = append(blocks, drops)
		}
	}

	for _, t := range s.Tables {
		if len(t.Attributes) == 0 {
			blocks = append(blocks, fmt.Sprintf("-- Table %q has no attributes and was not created.", t.Name))
			continue
		}
		blocks = append(blocks, g.tableBlock(t))
		blocks = append(blocks, g.indexStatements(t)...)
	}

	for _, j := range junctions {
		blocks = append(blocks, g.junctionBlock(j))
	}

	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// quote renders an identifier: normalized, then quoted for the dialect.
func (g *generator) quote(name string) string {
	return g.d.QuoteIdentifier(schema.NormalizeIdentifier(name))
}
