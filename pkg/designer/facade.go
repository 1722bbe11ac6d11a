package designer

import (
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/ddl"
	"github.com/schemaforge-labs/schemaforge/pkg/parser"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// ImportDDL parses a script and replaces the entire schema with the
// result. Defects reject the import with the current schema untouched;
// the error then carries every defect found, not just the first. On
// success the old edge set is torn down and the new one built, all
// through the listener.
func (d *Designer) ImportDDL(text string) error {
	s, err := parser.Parse(text)
	if err != nil {
		return err
	}
	d.replace(s)
	return nil
}

// ExportDDL renders the current schema for a dialect.
func (d *Designer) ExportDDL(dialectName string, opts ddl.Options) (string, error) {
	return ddl.Generate(d.schema, dialectName, opts)
}

// Snapshot converts the current schema to its plain structural form for
// persistence collaborators.
func (d *Designer) Snapshot() *schema.Snapshot {
	return schema.ToSnapshot(d.schema)
}

// Restore replaces the entire schema from a snapshot. The snapshot must
// decode and validate cleanly; a defective one rejects with the current
// schema untouched.
func (d *Designer) Restore(snap *schema.Snapshot) error {
	s, err := schema.FromSnapshot(snap)
	if err != nil {
		return err
	}
	if defects := schema.Validate(s); len(defects) > 0 {
		return &schema.DefectError{Defects: defects}
	}
	d.replace(s)
	return nil
}

// replace swaps in a new schema: every live edge is destroyed in stable
// order, then the new schema's foreign attributes get fresh edges in
// declaration order.
func (d *Designer) replace(s *schema.Schema) {
	for _, e := range d.Edges() {
		delete(d.edges, edgeKey{tableID: e.Target.TableID, attr: strings.ToLower(e.Target.Attr)})
		d.listener.EdgeDestroyed(e.ID)
	}
	d.schema = s
	for _, t := range s.Tables {
		for _, a := range t.Attributes {
			if a.Role == schema.RoleForeign && a.Ref != nil {
				d.createEdge(t, a)
			}
		}
	}
}
