// Package schema defines the canonical in-memory model for a designed
// relational schema: tables, typed attributes, and the reference
// descriptors that foreign-key attributes carry. The model is plain data.
// Mutation cascades live in pkg/designer, DDL rendering in pkg/ddl, and
// DDL ingestion in pkg/parser; all of them share the validation and
// normalization rules defined here.
package schema

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Table is one designed table: a display name, an ordered attribute list,
// and an opaque visual payload owned by the canvas layer. Attribute order
// is significant; it is the column order in generated DDL.
type Table struct {
	// ID is a stable opaque key. Relationship indexing uses it instead of
	// pointers so a renamed table keeps its identity.
	ID string

	// Name is the user-facing display name. It is not guaranteed DDL-safe;
	// NormalizeIdentifier is applied at generation time.
	Name string

	// Attributes are the table's columns, in declaration order.
	Attributes []*Attribute

	// Visual is the canvas payload (position, color, collapse state).
	// The engine round-trips it through snapshots and never reads it.
	Visual map[string]any
}

// NewTable returns an empty table with a fresh ID.
func NewTable(name string) *Table {
	return &Table{ID: uuid.NewString(), Name: name}
}

// Attribute returns the attribute with the given name, compared
// case-insensitively, or nil.
func (t *Table) Attribute(name string) *Attribute {
	for _, a := range t.Attributes {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// Primary returns the table's primary-key attribute, or nil.
func (t *Table) Primary() *Attribute {
	for _, a := range t.Attributes {
		if a.Role == RolePrimary {
			return a
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{ID: t.ID, Name: t.Name}
	if t.Attributes != nil {
		c.Attributes = make([]*Attribute, len(t.Attributes))
		for i, a := range t.Attributes {
			c.Attributes[i] = a.Clone()
		}
	}
	if t.Visual != nil {
		c.Visual = make(map[string]any, len(t.Visual))
		for k, v := range t.Visual {
			c.Visual[k] = v
		}
	}
	return c
}

// Schema is the whole designed graph: a set of tables in declaration order.
// Table-name uniqueness (case-insensitive, whitespace-normalized) is a
// validation-time invariant, not an edit-time one, so interactive renames
// may pass through transient duplicate states.
type Schema struct {
	Tables []*Table
}

// New returns an empty schema.
func New() *Schema {
	return &Schema{}
}

// Table returns the table whose name matches under TableKey, or nil.
func (s *Schema) Table(name string) *Table {
	key := TableKey(name)
	for _, t := range s.Tables {
		if TableKey(t.Name) == key {
			return t
		}
	}
	return nil
}

// TableByID returns the table with the given ID, or nil.
func (s *Schema) TableByID(id string) *Table {
	for _, t := range s.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	c := &Schema{}
	if s.Tables != nil {
		c.Tables = make([]*Table, len(s.Tables))
		for i, t := range s.Tables {
			c.Tables[i] = t.Clone()
		}
	}
	return c
}

// NormalizeIdentifier converts a display name into a DDL-safe identifier:
// Unicode NFC normalization, surrounding whitespace trimmed, and every
// internal whitespace run collapsed to a single underscore. Nothing else is
// escaped or rejected; this is a design tool, not a migration system.
func NormalizeIdentifier(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return name
	}
	return strings.Join(strings.Fields(name), "_")
}

// TableKey is the uniqueness key for table names: the normalized identifier,
// case-folded. Two tables collide when their keys are equal.
func TableKey(name string) string {
	return strings.ToLower(NormalizeIdentifier(name))
}
