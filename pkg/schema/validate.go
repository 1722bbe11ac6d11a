package schema

import (
	"fmt"
	"strings"
)

// Validate checks the whole schema and returns every structural defect
// found: duplicate table names, duplicate attribute names within a table,
// more than one primary key in a table, and unresolvable foreign-key
// references. The generator and the parser both run this same pass and
// refuse to produce output while the list is non-empty.
func Validate(s *Schema) []Defect {
	var defects []Defect

	defects = append(defects, duplicateTableDefects(s)...)

	for _, t := range s.Tables {
		defects = append(defects, duplicateAttributeDefects(t)...)
		defects = append(defects, primaryCountDefects(t)...)
		for _, a := range t.Attributes {
			defects = append(defects, referenceDefects(s, t, a)...)
		}
	}

	return defects
}

func duplicateTableDefects(s *Schema) []Defect {
	var defects []Defect
	seen := make(map[string]int, len(s.Tables))
	for _, t := range s.Tables {
		seen[TableKey(t.Name)]++
	}
	reported := make(map[string]bool)
	for _, t := range s.Tables {
		key := TableKey(t.Name)
		if seen[key] > 1 && !reported[key] {
			reported[key] = true
			defects = append(defects, Defect{
				Kind:    DefectDuplicateTable,
				Table:   t.Name,
				Message: fmt.Sprintf("%d tables share the name %q", seen[key], t.Name),
			})
		}
	}
	return defects
}

func duplicateAttributeDefects(t *Table) []Defect {
	var defects []Defect
	seen := make(map[string]int, len(t.Attributes))
	for _, a := range t.Attributes {
		seen[strings.ToLower(a.Name)]++
	}
	reported := make(map[string]bool)
	for _, a := range t.Attributes {
		key := strings.ToLower(a.Name)
		if seen[key] > 1 && !reported[key] {
			reported[key] = true
			defects = append(defects, Defect{
				Kind:      DefectDuplicateAttribute,
				Table:     t.Name,
				Attribute: a.Name,
				Message:   fmt.Sprintf("%d attributes share the name %q", seen[key], a.Name),
			})
		}
	}
	return defects
}

func primaryCountDefects(t *Table) []Defect {
	var primaries []string
	for _, a := range t.Attributes {
		if a.Role == RolePrimary {
			primaries = append(primaries, a.Name)
		}
	}
	if len(primaries) <= 1 {
		return nil
	}
	return []Defect{{
		Kind:    DefectMultiplePrimary,
		Table:   t.Name,
		Message: fmt.Sprintf("table declares %d primary keys (%s); at most one is allowed", len(primaries), strings.Join(primaries, ", ")),
	}}
}

func referenceDefects(s *Schema, t *Table, a *Attribute) []Defect {
	if a.Role != RoleForeign {
		if a.Ref != nil {
			return []Defect{{
				Kind:      DefectOrphanReference,
				Table:     t.Name,
				Attribute: a.Name,
				Message:   fmt.Sprintf("reference to %s.%s present but role is %q", a.Ref.Table, a.Ref.Attr, a.Role),
			}}
		}
		return nil
	}

	if a.Ref == nil {
		return []Defect{{
			Kind:      DefectUnresolvedReference,
			Table:     t.Name,
			Attribute: a.Name,
			Message:   "foreign attribute has no reference descriptor",
		}}
	}

	target := s.Table(a.Ref.Table)
	if target == nil {
		return []Defect{{
			Kind:      DefectUnresolvedReference,
			Table:     t.Name,
			Attribute: a.Name,
			Message:   fmt.Sprintf("referenced table %q does not exist", a.Ref.Table),
		}}
	}
	if target.Attribute(a.Ref.Attr) == nil {
		return []Defect{{
			Kind:      DefectUnresolvedReference,
			Table:     t.Name,
			Attribute: a.Name,
			Message:   fmt.Sprintf("referenced attribute %q does not exist in table %q", a.Ref.Attr, a.Ref.Table),
		}}
	}
	return nil
}
