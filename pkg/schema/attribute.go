package schema

// DataType is the closed abstract type vocabulary attributes are declared
// with. Dialect packages map each entry onto a concrete SQL type; the parser
// maps concrete tokens back. TypeRaw is the one open slot: it carries a
// concrete type token the parser did not recognize, preserved verbatim so
// dialect-specific extensions survive a round trip.
type DataType string

const (
	// TypeVarchar is variable-length text. Size holds the declared length.
	TypeVarchar DataType = "varchar"
	// TypeChar is fixed-length text. Size holds the declared length.
	TypeChar DataType = "char"
	// TypeText is unbounded text.
	TypeText DataType = "text"
	// TypeSmallInt is a small-range integer.
	TypeSmallInt DataType = "smallint"
	// TypeInt is a standard integer.
	TypeInt DataType = "int"
	// TypeBigInt is a large-range integer.
	TypeBigInt DataType = "bigint"
	// TypeDecimal is an exact fixed-point number. Precision and Scale apply.
	TypeDecimal DataType = "decimal"
	// TypeFloat is a single-precision floating point number.
	TypeFloat DataType = "float"
	// TypeDouble is a double-precision floating point number.
	TypeDouble DataType = "double"
	// TypeBoolean is a true/false value.
	TypeBoolean DataType = "boolean"
	// TypeDate is a calendar date without time of day.
	TypeDate DataType = "date"
	// TypeTime is a time of day without date.
	TypeTime DataType = "time"
	// TypeDateTime is a date with time of day.
	TypeDateTime DataType = "datetime"
	// TypeTimestamp is a point in time, typically with timezone semantics.
	TypeTimestamp DataType = "timestamp"
	// TypeBlob is arbitrary binary data.
	TypeBlob DataType = "blob"
	// TypeUUID is a universally unique identifier.
	TypeUUID DataType = "uuid"
	// TypeJSON is a structured JSON document.
	TypeJSON DataType = "json"
	// TypeEnum is a value drawn from a fixed set. EnumValues holds the set.
	TypeEnum DataType = "enum"
	// TypeRaw preserves an unrecognized concrete type token. Raw holds it.
	TypeRaw DataType = "raw"
)

// DataTypes lists every member of the closed vocabulary except TypeRaw,
// in a stable order. Dialect mapping tables are checked against this list
// at registration time.
func DataTypes() []DataType {
	return []DataType{
		TypeVarchar, TypeChar, TypeText,
		TypeSmallInt, TypeInt, TypeBigInt,
		TypeDecimal, TypeFloat, TypeDouble,
		TypeBoolean,
		TypeDate, TypeTime, TypeDateTime, TypeTimestamp,
		TypeBlob, TypeUUID, TypeJSON, TypeEnum,
	}
}

// KeyRole classifies an attribute's participation in key constraints.
type KeyRole string

const (
	// RoleNormal is a plain column with no key participation.
	RoleNormal KeyRole = "normal"
	// RolePrimary is the table's primary key column. At most one per table.
	RolePrimary KeyRole = "primary"
	// RoleForeign references another table's attribute. Ref must be set.
	RoleForeign KeyRole = "foreign"
)

// Cardinality is the multiplicity of a relationship.
type Cardinality string

const (
	// OneToOne relates exactly one row on each side.
	OneToOne Cardinality = "one-to-one"
	// OneToMany relates one referenced row to many referencing rows.
	OneToMany Cardinality = "one-to-many"
	// ManyToMany relates rows through a synthesized junction table.
	ManyToMany Cardinality = "many-to-many"
)

// Action is a referential action applied when the referenced row changes.
type Action string

const (
	// NoAction leaves dependent rows untouched and lets the engine error.
	NoAction Action = "no-action"
	// Cascade propagates the delete/update to dependent rows.
	Cascade Action = "cascade"
	// SetNull nulls the referencing column.
	SetNull Action = "set-null"
	// SetDefault resets the referencing column to its default.
	SetDefault Action = "set-default"
	// Restrict refuses the delete/update while dependents exist.
	Restrict Action = "restrict"
)

// SQL returns the action's SQL keyword form.
func (a Action) SQL() string {
	switch a {
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	case Restrict:
		return "RESTRICT"
	default:
		return "NO ACTION"
	}
}

// ForeignRef is the reference descriptor carried by a foreign attribute.
// Table and Attr name the target by display name; resolution compares
// normalized forms, so a reference survives cosmetic whitespace edits.
type ForeignRef struct {
	// Table is the referenced table's display name.
	Table string

	// Attr is the referenced attribute's name.
	Attr string

	// Cardinality is the relationship multiplicity.
	Cardinality Cardinality

	// OnDelete is the referential action for deletes of the target row.
	OnDelete Action

	// OnUpdate is the referential action for updates of the target key.
	OnUpdate Action

	// Optional marks the foreign key nullable.
	Optional bool
}

// Clone returns a deep copy of the reference descriptor.
func (r *ForeignRef) Clone() *ForeignRef {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Attribute is one typed column of a Table. Name is unique within the
// owning table, compared case-insensitively. Ref is non-nil exactly when
// Role is RoleForeign; the constructors and the Consistency Maintainer
// preserve that pairing, and Validate reports any snapshot that breaks it.
type Attribute struct {
	// Name is the column's display name.
	Name string

	// Type is the abstract declared type.
	Type DataType

	// Size is the declared length for TypeVarchar and TypeChar. Zero means
	// the dialect default applies.
	Size int

	// Precision and Scale parameterize TypeDecimal. Zero precision means
	// the dialect default applies.
	Precision int
	Scale     int

	// EnumValues holds the member set for TypeEnum.
	EnumValues []string

	// Raw is the concrete type token preserved when Type is TypeRaw.
	Raw string

	// Role is the attribute's key participation.
	Role KeyRole

	// NotNull forbids NULL values. Primary keys render NOT NULL regardless.
	NotNull bool

	// Unique requires distinct values. Ignored for primary keys, which are
	// implicitly unique.
	Unique bool

	// AutoIncrement asks the dialect for its auto-increment mechanism.
	// Only meaningful for integer types.
	AutoIncrement bool

	// Default is a default-value expression. The synonyms "now" and
	// "generate uuid" are translated per dialect; anything else passes
	// through verbatim.
	Default string

	// Check is a check-constraint expression, passed through verbatim.
	Check string

	// Ref is the reference descriptor. Non-nil iff Role is RoleForeign.
	Ref *ForeignRef
}

// NewAttribute returns a plain attribute with the given name and type.
func NewAttribute(name string, typ DataType) *Attribute {
	return &Attribute{Name: name, Type: typ, Role: RoleNormal}
}

// NewPrimary returns a primary-key attribute. Primary keys render NOT NULL;
// the flag is set here so snapshots carry the effective state.
func NewPrimary(name string, typ DataType) *Attribute {
	return &Attribute{Name: name, Type: typ, Role: RolePrimary, NotNull: true}
}

// NewForeign returns a foreign-key attribute with its reference descriptor.
// The descriptor is not resolved here; resolution happens at validation and
// mutation time against the owning schema.
func NewForeign(name string, typ DataType, ref ForeignRef) *Attribute {
	return &Attribute{Name: name, Type: typ, Role: RoleForeign, Ref: &ref}
}

// Demote collapses the attribute back to a plain column, clearing the
// reference descriptor. Used when the referenced target disappears.
func (a *Attribute) Demote() {
	a.Role = RoleNormal
	a.Ref = nil
}

// Clone returns a deep copy of the attribute.
func (a *Attribute) Clone() *Attribute {
	c := *a
	if a.EnumValues != nil {
		c.EnumValues = append([]string(nil), a.EnumValues...)
	}
	c.Ref = a.Ref.Clone()
	return &c
}
