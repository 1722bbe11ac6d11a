package schema

import (
	"errors"
	"fmt"
	"strings"
)

// DefectKind classifies a structural defect.
type DefectKind string

const (
	// DefectDuplicateTable is two or more tables sharing a TableKey.
	DefectDuplicateTable DefectKind = "duplicate-table"
	// DefectDuplicateAttribute is two or more attributes in one table
	// sharing a case-insensitive name.
	DefectDuplicateAttribute DefectKind = "duplicate-attribute"
	// DefectUnresolvedReference is a foreign attribute whose target table
	// or attribute does not exist, or whose descriptor is missing.
	DefectUnresolvedReference DefectKind = "unresolved-reference"
	// DefectOrphanReference is a reference descriptor on a non-foreign
	// attribute. Constructed schemas never contain one; snapshots might.
	DefectOrphanReference DefectKind = "orphan-reference"
	// DefectMultiplePrimary is more than one primary-key attribute in a
	// table. Single-column primary keys are an enforced model invariant.
	DefectMultiplePrimary DefectKind = "multiple-primary-keys"
	// DefectMalformedStatement is DDL text the parser could not accept.
	DefectMalformedStatement DefectKind = "malformed-statement"
	// DefectEmptyInput is DDL input with no content.
	DefectEmptyInput DefectKind = "empty-input"
	// DefectNoTables is DDL input containing no table definitions.
	DefectNoTables DefectKind = "no-tables"
)

// Defect is one structural problem found in a schema or in DDL input.
// Defects are always collected exhaustively; nothing fails fast on the
// first one.
type Defect struct {
	// Kind classifies the defect.
	Kind DefectKind

	// Table names the affected table, when one is known.
	Table string

	// Attribute names the affected attribute, when one is known.
	Attribute string

	// Line and Column locate the defect in DDL input. Zero when the
	// defect came from an in-memory schema rather than text.
	Line   int
	Column int

	// Message is the human-readable description.
	Message string
}

// String renders the defect with its location and subject when present.
func (d Defect) String() string {
	var b strings.Builder
	if d.Line > 0 {
		fmt.Fprintf(&b, "line %d, column %d: ", d.Line, d.Column)
	}
	b.WriteString(string(d.Kind))
	switch {
	case d.Table != "" && d.Attribute != "":
		fmt.Fprintf(&b, " (%s.%s)", d.Table, d.Attribute)
	case d.Table != "":
		fmt.Fprintf(&b, " (%s)", d.Table)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// DefectError carries the full defect list across the generator, parser,
// and import/export boundaries. Callers render the list; nothing inside
// the engine panics or throws for expected defect conditions.
type DefectError struct {
	Defects []Defect
}

// Error summarizes the defect count and lists every defect, one per line.
func (e *DefectError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d schema defect(s)", len(e.Defects))
	for _, d := range e.Defects {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}

// AsDefects unwraps an error into its defect list. The second return is
// false when err does not carry a DefectError.
func AsDefects(err error) ([]Defect, bool) {
	var de *DefectError
	if errors.As(err, &de) {
		return de.Defects, true
	}
	return nil, false
}
