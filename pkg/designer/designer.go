// Package designer is the mutation layer of the schema engine. Every
// structural edit passes through a Designer, which applies the change,
// cascades it to every dependent attribute, and keeps the relationship
// edge set synchronized with the foreign key declarations in the schema.
//
// A mutation either commits fully or is rejected with a
// *PreconditionError naming the check that failed; there is no partial
// state. Valid mutations may still have downstream consequences, such as
// demoting a foreign attribute whose target was just deleted. The
// Designer applies those itself, and each one is observable through the
// EdgeListener.
package designer

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Designer wraps a schema as its only mutation path. It assumes a single
// logical writer: callers sharing one across goroutines must serialize
// access themselves.
type Designer struct {
	schema   *schema.Schema
	listener EdgeListener

	// edges indexes the live relationship set by the foreign attribute
	// declaring it: (owning table ID, lower-cased attribute name).
	edges map[edgeKey]Edge
}

type edgeKey struct {
	tableID string
	attr    string
}

func keyFor(t *schema.Table, attrName string) edgeKey {
	return edgeKey{tableID: t.ID, attr: strings.ToLower(attrName)}
}

// New returns a Designer over an empty schema. A nil listener is
// replaced with a no-op one.
func New(listener EdgeListener) *Designer {
	if listener == nil {
		listener = noopListener{}
	}
	return &Designer{
		schema:   schema.New(),
		listener: listener,
		edges:    make(map[edgeKey]Edge),
	}
}

// Schema exposes the current schema for reading. Callers must not mutate
// it directly; every edit goes through a Designer operation.
func (d *Designer) Schema() *schema.Schema { return d.schema }

// Edges returns the live relationship set, ordered by the foreign
// attribute's table and name.
func (d *Designer) Edges() []Edge {
	out := make([]Edge, 0, len(d.edges))
	for _, e := range d.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Target.Table != out[j].Target.Table {
			return out[i].Target.Table < out[j].Target.Table
		}
		return out[i].Target.Attr < out[j].Target.Attr
	})
	return out
}

// AddTable appends an empty table.
func (d *Designer) AddTable(name string) (*schema.Table, error) {
	const op = "add table"
	if schema.NormalizeIdentifier(name) == "" {
		return nil, reject(op, "table name is empty")
	}
	if existing := d.schema.Table(name); existing != nil {
		return nil, reject(op, "a table named %q already exists", existing.Name)
	}
	t := schema.NewTable(name)
	d.schema.Tables = append(d.schema.Tables, t)
	return t, nil
}

// AddAttribute appends an attribute to a table. A foreign attribute must
// arrive with its full reference descriptor and a resolvable target; it
// commits and its edge is created in the same call. Any rejection leaves
// both the table and the attribute untouched.
func (d *Designer) AddAttribute(tableName string, attr *schema.Attribute) error {
	const op = "add attribute"
	t := d.schema.Table(tableName)
	if t == nil {
		return reject(op, "table %q does not exist", tableName)
	}
	if attr == nil {
		return reject(op, "attribute is nil")
	}
	if schema.NormalizeIdentifier(attr.Name) == "" {
		return reject(op, "attribute name is empty")
	}
	if existing := t.Attribute(attr.Name); existing != nil {
		return reject(op, "table %q already has an attribute named %q", t.Name, existing.Name)
	}
	if attr.Role == schema.RolePrimary {
		if attr.Ref != nil {
			return reject(op, "attribute %q cannot be both primary key and foreign key", attr.Name)
		}
		if p := t.Primary(); p != nil {
			return reject(op, "table %q already has primary key %q", t.Name, p.Name)
		}
	}
	if attr.Role == schema.RoleForeign || attr.Ref != nil {
		if err := d.checkReference(op, t, attr.Name, attr.Ref); err != nil {
			return err
		}
		attr.Role = schema.RoleForeign
		normalizeRef(attr.Ref)
		attr.NotNull = !attr.Ref.Optional
	}

	t.Attributes = append(t.Attributes, attr)
	if attr.Role == schema.RoleForeign {
		d.createEdge(t, attr)
	}
	return nil
}

// PromoteToPrimary makes an attribute its table's primary key. A table
// holds at most one, and a foreign attribute cannot be promoted while
// its reference stands.
func (d *Designer) PromoteToPrimary(tableName, attrName string) error {
	const op = "promote to primary"
	t, a, err := d.lookup(op, tableName, attrName)
	if err != nil {
		return err
	}
	if a.Role == schema.RolePrimary {
		return nil
	}
	if a.Role == schema.RoleForeign {
		return reject(op, "attribute %q is a foreign key; clear its reference first", a.Name)
	}
	if p := t.Primary(); p != nil {
		return reject(op, "table %q already has primary key %q", t.Name, p.Name)
	}
	a.Role = schema.RolePrimary
	a.NotNull = true
	return nil
}

// SetForeign declares or repoints an attribute's foreign key reference.
// Every precondition is checked before anything commits. Repointing an
// already-foreign attribute destroys the old edge and creates the new
// one as two ordered steps with no other mutation between them, so the
// listener never observes both at once.
func (d *Designer) SetForeign(tableName, attrName string, ref schema.ForeignRef) error {
	const op = "set foreign key"
	t, a, err := d.lookup(op, tableName, attrName)
	if err != nil {
		return err
	}
	if a.Role == schema.RolePrimary {
		return reject(op, "attribute %q is the primary key of table %q", a.Name, t.Name)
	}
	if err := d.checkReference(op, t, a.Name, &ref); err != nil {
		return err
	}

	if a.Role == schema.RoleForeign {
		d.destroyEdge(t, a.Name)
	}
	normalizeRef(&ref)
	a.Role = schema.RoleForeign
	a.Ref = &ref
	a.NotNull = !ref.Optional
	d.createEdge(t, a)
	return nil
}

// ClearForeign demotes a foreign attribute back to normal: its edge is
// destroyed, then the role and reference clear.
func (d *Designer) ClearForeign(tableName, attrName string) error {
	const op = "clear foreign key"
	t, a, err := d.lookup(op, tableName, attrName)
	if err != nil {
		return err
	}
	if a.Role != schema.RoleForeign {
		return reject(op, "attribute %q is not a foreign key", a.Name)
	}
	d.destroyEdge(t, a.Name)
	a.Demote()
	return nil
}

// TypeSpec carries the declared-type fields applied by Retype.
type TypeSpec struct {
	Type       schema.DataType
	Size       int
	Precision  int
	Scale      int
	EnumValues []string
	Raw        string
}

// Retype replaces an attribute's declared type. The role survives: a
// foreign attribute's edge is destroyed before the type changes and a
// fresh edge created once it has, as two ordered steps.
func (d *Designer) Retype(tableName, attrName string, spec TypeSpec) error {
	const op = "retype attribute"
	t, a, err := d.lookup(op, tableName, attrName)
	if err != nil {
		return err
	}
	switch spec.Type {
	case schema.TypeRaw:
		if strings.TrimSpace(spec.Raw) == "" {
			return reject(op, "raw type on %q needs its type literal", a.Name)
		}
	case schema.TypeEnum:
		if len(spec.EnumValues) == 0 {
			return reject(op, "enum type on %q needs at least one value", a.Name)
		}
	default:
		if !knownType(spec.Type) {
			return reject(op, "unknown data type %q", spec.Type)
		}
	}

	foreign := a.Role == schema.RoleForeign
	if foreign {
		d.destroyEdge(t, a.Name)
	}
	a.Type = spec.Type
	a.Size = spec.Size
	a.Precision = spec.Precision
	a.Scale = spec.Scale
	a.EnumValues = spec.EnumValues
	a.Raw = spec.Raw
	if foreign {
		d.createEdge(t, a)
	}
	return nil
}

// RenameTable renames a table and rewrites the target-table field of
// every foreign reference resolving to it. Edge identities are the
// attributes themselves, so no edge events fire; the display names held
// by live edges are refreshed in place.
func (d *Designer) RenameTable(oldName, newName string) error {
	const op = "rename table"
	t := d.schema.Table(oldName)
	if t == nil {
		return reject(op, "table %q does not exist", oldName)
	}
	if schema.NormalizeIdentifier(newName) == "" {
		return reject(op, "table name is empty")
	}
	if other := d.schema.Table(newName); other != nil && other.ID != t.ID {
		return reject(op, "a table named %q already exists", other.Name)
	}

	oldKey := schema.TableKey(t.Name)
	t.Name = newName
	for _, owner := range d.schema.Tables {
		for _, a := range owner.Attributes {
			if a.Role == schema.RoleForeign && a.Ref != nil && schema.TableKey(a.Ref.Table) == oldKey {
				a.Ref.Table = newName
			}
		}
	}
	for k, e := range d.edges {
		changed := false
		if e.Source.TableID == t.ID {
			e.Source.Table = newName
			changed = true
		}
		if e.Target.TableID == t.ID {
			e.Target.Table = newName
			changed = true
		}
		if changed {
			d.edges[k] = e
		}
	}
	return nil
}

// RenameAttribute renames an attribute and rewrites every reference
// targeting it. Nothing demotes and no edge events fire.
func (d *Designer) RenameAttribute(tableName, oldName, newName string) error {
	const op = "rename attribute"
	t, a, err := d.lookup(op, tableName, oldName)
	if err != nil {
		return err
	}
	if schema.NormalizeIdentifier(newName) == "" {
		return reject(op, "attribute name is empty")
	}
	if other := t.Attribute(newName); other != nil && other != a {
		return reject(op, "table %q already has an attribute named %q", t.Name, other.Name)
	}

	// the edge index keys on the attribute name, so a foreign attribute
	// is reindexed in place
	if a.Role == schema.RoleForeign {
		k := keyFor(t, a.Name)
		if e, ok := d.edges[k]; ok {
			delete(d.edges, k)
			e.Target.Attr = newName
			d.edges[keyFor(t, newName)] = e
		}
	}

	tableKey := schema.TableKey(t.Name)
	prev := a.Name
	a.Name = newName
	for _, owner := range d.schema.Tables {
		for _, oa := range owner.Attributes {
			if oa.Role == schema.RoleForeign && oa.Ref != nil &&
				schema.TableKey(oa.Ref.Table) == tableKey &&
				strings.EqualFold(oa.Ref.Attr, prev) {
				oa.Ref.Attr = newName
			}
		}
	}
	for k, e := range d.edges {
		if e.Source.TableID == t.ID && strings.EqualFold(e.Source.Attr, prev) {
			e.Source.Attr = newName
			d.edges[k] = e
		}
	}
	return nil
}

// DeleteAttribute removes an attribute with its cascade: every foreign
// attribute anywhere in the schema whose reference targets it demotes to
// normal and loses its edge first, then the attribute itself (and its
// own edge, if foreign) goes.
func (d *Designer) DeleteAttribute(tableName, attrName string) error {
	const op = "delete attribute"
	t, a, err := d.lookup(op, tableName, attrName)
	if err != nil {
		return err
	}

	d.demoteReferencing(t, a.Name)
	if a.Role == schema.RoleForeign {
		d.destroyEdge(t, a.Name)
	}
	kept := t.Attributes[:0]
	for _, x := range t.Attributes {
		if x != a {
			kept = append(kept, x)
		}
	}
	t.Attributes = kept
	return nil
}

// DeleteTable removes a table with its full cascade: foreign attributes
// elsewhere that resolve into it demote and lose their edges, the
// table's own foreign edges are destroyed, and only then does the table
// go. No dangling edge is observable at any point.
func (d *Designer) DeleteTable(tableName string) error {
	const op = "delete table"
	t := d.schema.Table(tableName)
	if t == nil {
		return reject(op, "table %q does not exist", tableName)
	}

	tableKey := schema.TableKey(t.Name)
	for _, owner := range d.schema.Tables {
		if owner.ID == t.ID {
			continue
		}
		for _, a := range owner.Attributes {
			if a.Role == schema.RoleForeign && a.Ref != nil && schema.TableKey(a.Ref.Table) == tableKey {
				d.destroyEdge(owner, a.Name)
				a.Demote()
			}
		}
	}
	for _, a := range t.Attributes {
		if a.Role == schema.RoleForeign {
			d.destroyEdge(t, a.Name)
		}
	}

	kept := d.schema.Tables[:0]
	for _, x := range d.schema.Tables {
		if x.ID != t.ID {
			kept = append(kept, x)
		}
	}
	d.schema.Tables = kept
	return nil
}

func (d *Designer) lookup(op, tableName, attrName string) (*schema.Table, *schema.Attribute, error) {
	t := d.schema.Table(tableName)
	if t == nil {
		return nil, nil, reject(op, "table %q does not exist", tableName)
	}
	a := t.Attribute(attrName)
	if a == nil {
		return nil, nil, reject(op, "table %q has no attribute %q", t.Name, attrName)
	}
	return t, a, nil
}

// checkReference verifies a reference descriptor is complete and its
// target exists and is eligible (primary or normal role). The first
// failing precondition is named.
func (d *Designer) checkReference(op string, owner *schema.Table, attrName string, ref *schema.ForeignRef) error {
	if ref == nil {
		return reject(op, "no reference selected for foreign attribute %q", attrName)
	}
	if ref.Table == "" {
		return reject(op, "reference on %q has no target table", attrName)
	}
	if ref.Attr == "" {
		return reject(op, "reference on %q has no target attribute", attrName)
	}
	target := d.schema.Table(ref.Table)
	if target == nil {
		return reject(op, "referenced table %q does not exist", ref.Table)
	}
	tAttr := target.Attribute(ref.Attr)
	if tAttr == nil {
		return reject(op, "referenced attribute %q does not exist in table %q", ref.Attr, target.Name)
	}
	if tAttr.Role == schema.RoleForeign {
		return reject(op, "attribute %s.%s is itself a foreign key and cannot be referenced", target.Name, tAttr.Name)
	}
	if target.ID == owner.ID && strings.EqualFold(tAttr.Name, attrName) {
		return reject(op, "attribute %q cannot reference itself", attrName)
	}
	return nil
}

func normalizeRef(ref *schema.ForeignRef) {
	if ref.Cardinality == "" {
		ref.Cardinality = schema.OneToMany
	}
	if ref.OnDelete == "" {
		ref.OnDelete = schema.NoAction
	}
	if ref.OnUpdate == "" {
		ref.OnUpdate = schema.NoAction
	}
}

func knownType(t schema.DataType) bool {
	for _, k := range schema.DataTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// createEdge records and announces the edge for a resolved foreign
// attribute. Callers guarantee the reference resolves.
func (d *Designer) createEdge(t *schema.Table, a *schema.Attribute) {
	target := d.schema.Table(a.Ref.Table)
	tAttr := target.Attribute(a.Ref.Attr)
	e := Edge{
		ID:          uuid.NewString(),
		Source:      AttrRef{TableID: target.ID, Table: target.Name, Attr: tAttr.Name},
		Target:      AttrRef{TableID: t.ID, Table: t.Name, Attr: a.Name},
		Cardinality: a.Ref.Cardinality,
		Optional:    a.Ref.Optional,
	}
	d.edges[keyFor(t, a.Name)] = e
	d.listener.EdgeCreated(e)
}

// destroyEdge removes and announces the edge declared by the named
// attribute, if one is live.
func (d *Designer) destroyEdge(t *schema.Table, attrName string) {
	k := keyFor(t, attrName)
	e, ok := d.edges[k]
	if !ok {
		return
	}
	delete(d.edges, k)
	d.listener.EdgeDestroyed(e.ID)
}

// demoteReferencing demotes every foreign attribute in the schema whose
// reference targets the named attribute: the edge is destroyed first,
// then the role and reference clear.
func (d *Designer) demoteReferencing(target *schema.Table, attrName string) {
	tableKey := schema.TableKey(target.Name)
	for _, owner := range d.schema.Tables {
		for _, a := range owner.Attributes {
			if a.Role != schema.RoleForeign || a.Ref == nil {
				continue
			}
			if schema.TableKey(a.Ref.Table) != tableKey || !strings.EqualFold(a.Ref.Attr, attrName) {
				continue
			}
			d.destroyEdge(owner, a.Name)
			a.Demote()
		}
	}
}
