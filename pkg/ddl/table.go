package ddl

import (
	"fmt"
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// tableBlock renders one CREATE TABLE statement: one attribute per
// line, then one table-level FOREIGN KEY clause per non-many-to-many
// foreign attribute, in attribute order after all columns.
func (g *generator) tableBlock(t *schema.Table) string {
	var b strings.Builder
	if g.opts.IncludeComments {
		fmt.Fprintf(&b, "-- Table: %s\n", schema.NormalizeIdentifier(t.Name))
	}
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", g.quote(t.Name))

	lines := make([]string, 0, len(t.Attributes))
	for _, a := range t.Attributes {
		lines = append(lines, "  "+g.columnDDL(a))
	}
	for _, a := range t.Attributes {
		if a.Role == schema.RoleForeign && a.Ref != nil && a.Ref.Cardinality != schema.ManyToMany {
			lines = append(lines, "  "+g.foreignKeyClause(a))
		}
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);")
	return b.String()
}

// columnDDL renders one column definition. Clause order is fixed: name,
// type, auto-increment (where the dialect puts it), NULL constraint,
// UNIQUE, DEFAULT, CHECK, PRIMARY KEY. Foreign keys render no clause
// here; they become table-level constraints after the columns, and
// many-to-many references materialize as junction tables instead.
func (g *generator) columnDDL(a *schema.Attribute) string {
	parts := []string{g.quote(a.Name), g.d.TypeFor(a)}

	if a.AutoIncrement && g.d.AutoIncrement == dialect.AutoIncrementKeywordAfterType {
		parts = append(parts, g.d.AutoIncrementKeyword)
	}
	optionalRef := a.Ref != nil && a.Ref.Optional
	if (a.NotNull && !optionalRef) || a.Role == schema.RolePrimary {
		parts = append(parts, "NOT NULL")
	}
	if a.AutoIncrement && g.d.AutoIncrement == dialect.AutoIncrementKeywordAfterNull {
		parts = append(parts, g.d.AutoIncrementKeyword)
	}
	if a.Unique && a.Role != schema.RolePrimary {
		parts = append(parts, "UNIQUE")
	}
	if a.Default != "" {
		parts = append(parts, "DEFAULT "+g.d.DefaultExpr(a.Default))
	}
	if a.Check != "" {
		parts = append(parts, "CHECK ("+a.Check+")")
	}
	if a.Role == schema.RolePrimary {
		parts = append(parts, "PRIMARY KEY")
	}

	return strings.Join(parts, " ")
}

// foreignKeyClause renders one table-level foreign-key constraint. The
// target is re-resolved so the clause carries the referenced table's own
// spelling, not whatever case or whitespace variant the reference was
// written with. NO ACTION is the engine default everywhere, so it is
// omitted.
func (g *generator) foreignKeyClause(a *schema.Attribute) string {
	ref := a.Ref
	table, attr := ref.Table, ref.Attr
	if target := g.s.Table(ref.Table); target != nil {
		table = target.Name
		if ta := target.Attribute(ref.Attr); ta != nil {
			attr = ta.Name
		}
	}
	clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.quote(a.Name), g.quote(table), g.quote(attr))
	if ref.OnDelete != schema.NoAction {
		clause += " ON DELETE " + ref.OnDelete.SQL()
	}
	if ref.OnUpdate != schema.NoAction {
		clause += " ON UPDATE " + ref.OnUpdate.SQL()
	}
	return clause
}

// indexStatements renders one CREATE INDEX per foreign-key column of the
// table. Junction tables are keyed by their composite primary key and get
// no extra indexes.
func (g *generator) indexStatements(t *schema.Table) []string {
	var stmts []string
	for _, a := range t.Attributes {
		if a.Role != schema.RoleForeign || a.Ref == nil || a.Ref.Cardinality == schema.ManyToMany {
			continue
		}
		name := fmt.Sprintf("idx_%s_%s", schema.NormalizeIdentifier(t.Name), schema.NormalizeIdentifier(a.Name))
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s);",
			g.d.QuoteIdentifier(name), g.quote(t.Name), g.quote(a.Name)))
	}
	return stmts
}

// dropBlock renders the DROP TABLE preamble: junction tables first, then
// declared tables in reverse declaration order, so referencing tables
// always drop before their targets. Tables that were never created
// (zero attributes) are not dropped.
func (g *generator) dropBlock(s *schema.Schema, junctions []junction) string {
	var lines []string
	for _, j := range junctions {
		lines = append(lines, "DROP TABLE IF EXISTS "+g.d.QuoteIdentifier(j.name)+";")
	}
	for i := len(s.Tables) - 1; i >= 0; i-- {
		t := s.Tables[i]
		if len(t.Attributes) == 0 {
			continue
		}
		lines = append(lines, "DROP TABLE IF EXISTS "+g.quote(t.Name)+";")
	}
	return strings.Join(lines, "\n")
}
