package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Snapshot is the plain structural form of a Schema: tables, attributes,
// and reference descriptors as bare data with no behavior attached.
// Persistence collaborators round-trip this form without depending on the
// engine's working types.
type Snapshot struct {
	Tables []TableSnapshot `json:"tables" yaml:"tables"`
}

// TableSnapshot mirrors Table.
type TableSnapshot struct {
	ID         string              `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string              `json:"name" yaml:"name"`
	Attributes []AttributeSnapshot `json:"attributes" yaml:"attributes"`
	Visual     map[string]any      `json:"visual,omitempty" yaml:"visual,omitempty"`
}

// AttributeSnapshot mirrors Attribute.
type AttributeSnapshot struct {
	Name          string        `json:"name" yaml:"name"`
	Type          string        `json:"type" yaml:"type"`
	Size          int           `json:"size,omitempty" yaml:"size,omitempty"`
	Precision     int           `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale         int           `json:"scale,omitempty" yaml:"scale,omitempty"`
	EnumValues    []string      `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`
	Raw           string        `json:"raw,omitempty" yaml:"raw,omitempty"`
	Role          string        `json:"role,omitempty" yaml:"role,omitempty"`
	NotNull       bool          `json:"not_null,omitempty" yaml:"not_null,omitempty"`
	Unique        bool          `json:"unique,omitempty" yaml:"unique,omitempty"`
	AutoIncrement bool          `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
	Default       string        `json:"default,omitempty" yaml:"default,omitempty"`
	Check         string        `json:"check,omitempty" yaml:"check,omitempty"`
	Ref           *RefSnapshot  `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// RefSnapshot mirrors ForeignRef.
type RefSnapshot struct {
	Table       string `json:"table" yaml:"table"`
	Attr        string `json:"attribute" yaml:"attribute"`
	Cardinality string `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
	OnDelete    string `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate    string `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	Optional    bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// ToSnapshot converts a schema into its plain structural form. Maps and
// slices are copied, never shared, so mutating the schema afterwards
// cannot reach into the snapshot or vice versa.
func ToSnapshot(s *Schema) *Snapshot {
	snap := &Snapshot{Tables: make([]TableSnapshot, 0, len(s.Tables))}
	for _, t := range s.Tables {
		ts := TableSnapshot{
			ID:         t.ID,
			Name:       t.Name,
			Attributes: make([]AttributeSnapshot, 0, len(t.Attributes)),
			Visual:     cloneVisual(t.Visual),
		}
		for _, a := range t.Attributes {
			as := AttributeSnapshot{
				Name:          a.Name,
				Type:          string(a.Type),
				Size:          a.Size,
				Precision:     a.Precision,
				Scale:         a.Scale,
				EnumValues:    cloneEnumValues(a.EnumValues),
				Raw:           a.Raw,
				Role:          string(a.Role),
				NotNull:       a.NotNull,
				Unique:        a.Unique,
				AutoIncrement: a.AutoIncrement,
				Default:       a.Default,
				Check:         a.Check,
			}
			if a.Ref != nil {
				as.Ref = &RefSnapshot{
					Table:       a.Ref.Table,
					Attr:        a.Ref.Attr,
					Cardinality: string(a.Ref.Cardinality),
					OnDelete:    string(a.Ref.OnDelete),
					OnUpdate:    string(a.Ref.OnUpdate),
					Optional:    a.Ref.Optional,
				}
			}
			ts.Attributes = append(ts.Attributes, as)
		}
		snap.Tables = append(snap.Tables, ts)
	}
	return snap
}

// FromSnapshot rebuilds a schema from its plain structural form. Unknown
// type strings are tolerated by preserving them as TypeRaw, matching the
// parser's treatment of unrecognized type tokens; unknown roles,
// cardinalities, or actions are hard errors since no tolerant reading
// exists for them. Missing table IDs are assigned fresh ones.
func FromSnapshot(snap *Snapshot) (*Schema, error) {
	s := &Schema{Tables: make([]*Table, 0, len(snap.Tables))}
	for _, ts := range snap.Tables {
		t := &Table{ID: ts.ID, Name: ts.Name, Visual: cloneVisual(ts.Visual)}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		for _, as := range ts.Attributes {
			a, err := attributeFromSnapshot(as)
			if err != nil {
				return nil, fmt.Errorf("table %q, attribute %q: %w", ts.Name, as.Name, err)
			}
			t.Attributes = append(t.Attributes, a)
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

func attributeFromSnapshot(as AttributeSnapshot) (*Attribute, error) {
	a := &Attribute{
		Name:          as.Name,
		Size:          as.Size,
		Precision:     as.Precision,
		Scale:         as.Scale,
		EnumValues:    cloneEnumValues(as.EnumValues),
		Raw:           as.Raw,
		NotNull:       as.NotNull,
		Unique:        as.Unique,
		AutoIncrement: as.AutoIncrement,
		Default:       as.Default,
		Check:         as.Check,
	}

	a.Type = DataType(as.Type)
	if !knownDataType(a.Type) {
		a.Raw = as.Type
		a.Type = TypeRaw
	}

	switch role := KeyRole(as.Role); role {
	case RoleNormal, RolePrimary, RoleForeign:
		a.Role = role
	case "":
		a.Role = RoleNormal
	default:
		return nil, fmt.Errorf("unknown key role %q", as.Role)
	}

	if as.Ref != nil {
		ref, err := refFromSnapshot(as.Ref)
		if err != nil {
			return nil, err
		}
		a.Ref = ref
	}
	return a, nil
}

func refFromSnapshot(rs *RefSnapshot) (*ForeignRef, error) {
	ref := &ForeignRef{Table: rs.Table, Attr: rs.Attr, Optional: rs.Optional}

	switch c := Cardinality(rs.Cardinality); c {
	case OneToOne, OneToMany, ManyToMany:
		ref.Cardinality = c
	case "":
		ref.Cardinality = OneToMany
	default:
		return nil, fmt.Errorf("unknown cardinality %q", rs.Cardinality)
	}

	var err error
	if ref.OnDelete, err = actionFromSnapshot(rs.OnDelete); err != nil {
		return nil, err
	}
	if ref.OnUpdate, err = actionFromSnapshot(rs.OnUpdate); err != nil {
		return nil, err
	}
	return ref, nil
}

func cloneVisual(v map[string]any) map[string]any {
	if v == nil {
		return nil
	}
	c := make(map[string]any, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

func cloneEnumValues(vals []string) []string {
	if vals == nil {
		return nil
	}
	return append([]string(nil), vals...)
}

func actionFromSnapshot(s string) (Action, error) {
	switch a := Action(s); a {
	case NoAction, Cascade, SetNull, SetDefault, Restrict:
		return a, nil
	case "":
		return NoAction, nil
	default:
		return "", fmt.Errorf("unknown referential action %q", s)
	}
}

func knownDataType(t DataType) bool {
	if t == TypeRaw {
		return true
	}
	for _, k := range DataTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// Format selects a snapshot wire encoding.
type Format string

const (
	// FormatJSON encodes with encoding/json, indented for readability.
	FormatJSON Format = "json"
	// FormatYAML encodes with yaml.v3.
	FormatYAML Format = "yaml"
)

// MarshalSnapshot encodes a snapshot in the given format.
func MarshalSnapshot(snap *Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}

// UnmarshalSnapshot decodes a snapshot from the given format.
func UnmarshalSnapshot(data []byte, format Format) (*Snapshot, error) {
	snap := &Snapshot{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
	return snap, nil
}
