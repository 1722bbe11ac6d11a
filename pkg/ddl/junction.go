package ddl

import (
	"fmt"
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// junction is a synthesized many-to-many join table. Each distinct
// unordered pair of tables connected by a many-to-many reference gets
// exactly one, regardless of how many attributes declare the pairing.
type junction struct {
	name     string
	left     junctionSide
	right    junctionSide
	onDelete schema.Action
	onUpdate schema.Action
}

// junctionSide is one end of the pair: the referenced table, its primary
// key, and the synthesized column name ({table}_{pk}).
type junctionSide struct {
	table *schema.Table
	pk    *schema.Attribute
	col   string
}

// collectJunctions walks the schema in declaration order and synthesizes
// one junction per distinct many-to-many pair. Sides are ordered by
// normalized table name so the junction's name and column order never
// depend on which side declared the relationship. A pair is skipped when
// either table lacks a primary key to reference, and a table paired with
// itself synthesizes nothing.
func collectJunctions(s *schema.Schema) []junction {
	seen := make(map[string]bool)
	var out []junction

	for _, t := range s.Tables {
		for _, a := range t.Attributes {
			if a.Role != schema.RoleForeign || a.Ref == nil || a.Ref.Cardinality != schema.ManyToMany {
				continue
			}
			target := s.Table(a.Ref.Table)
			if target == nil {
				continue
			}

			leftKey, rightKey := schema.TableKey(t.Name), schema.TableKey(target.Name)
			if leftKey == rightKey {
				continue
			}
			pairKey := leftKey + "\x00" + rightKey
			if rightKey < leftKey {
				pairKey = rightKey + "\x00" + leftKey
			}
			if seen[pairKey] {
				continue
			}

			left, right := newSide(t), newSide(target)
			if rightKey < leftKey {
				left, right = right, left
			}
			if left.pk == nil || right.pk == nil {
				continue
			}
			seen[pairKey] = true

			onDelete, onUpdate := a.Ref.OnDelete, a.Ref.OnUpdate
			if onDelete == schema.NoAction {
				onDelete = schema.Cascade
			}
			if onUpdate == schema.NoAction {
				onUpdate = schema.Cascade
			}

			out = append(out, junction{
				name:     left.normName() + "_" + right.normName(),
				left:     left,
				right:    right,
				onDelete: onDelete,
				onUpdate: onUpdate,
			})
		}
	}
	return out
}

func newSide(t *schema.Table) junctionSide {
	side := junctionSide{table: t, pk: t.Primary()}
	if side.pk != nil {
		side.col = side.normName() + "_" + schema.NormalizeIdentifier(side.pk.Name)
	}
	return side
}

func (js junctionSide) normName() string {
	return schema.NormalizeIdentifier(js.table.Name)
}

// keyColumn synthesizes the referencing attribute for one side: the
// referenced primary key's type with key, uniqueness, and auto-increment
// stripped, required, and pointing back at the primary key.
func (js junctionSide) keyColumn(onDelete, onUpdate schema.Action) *schema.Attribute {
	col := js.pk.Clone()
	col.Name = js.col
	col.Role = schema.RoleForeign
	col.NotNull = true
	col.Unique = false
	col.AutoIncrement = false
	col.Default = ""
	col.Check = ""
	col.Ref = &schema.ForeignRef{
		Table:       js.table.Name,
		Attr:        js.pk.Name,
		Cardinality: schema.OneToMany,
		OnDelete:    onDelete,
		OnUpdate:    onUpdate,
	}
	return col
}

// junctionBlock renders the CREATE TABLE for a junction: both key
// columns, a created_at timestamp, the composite primary key over the
// pair, and one table-level foreign-key clause per side.
func (g *generator) junctionBlock(j junction) string {
	created := schema.NewAttribute("created_at", schema.TypeTimestamp)
	created.NotNull = true
	created.Default = "now"

	leftCol := j.left.keyColumn(j.onDelete, j.onUpdate)
	rightCol := j.right.keyColumn(j.onDelete, j.onUpdate)

	var b strings.Builder
	if g.opts.IncludeComments {
		fmt.Fprintf(&b, "-- Junction table for %s and %s\n", j.left.normName(), j.right.normName())
	}
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", g.d.QuoteIdentifier(j.name))
	fmt.Fprintf(&b, "  %s,\n", g.columnDDL(leftCol))
	fmt.Fprintf(&b, "  %s,\n", g.columnDDL(rightCol))
	fmt.Fprintf(&b, "  %s,\n", g.columnDDL(created))
	fmt.Fprintf(&b, "  PRIMARY KEY (%s, %s),\n", g.quote(j.left.col), g.quote(j.right.col))
	fmt.Fprintf(&b, "  %s,\n", g.foreignKeyClause(leftCol))
	fmt.Fprintf(&b, "  %s\n", g.foreignKeyClause(rightCol))
	b.WriteString(");")
	return b.String()
}
