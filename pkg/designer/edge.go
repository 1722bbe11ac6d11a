package designer

import "github.com/schemaforge-labs/schemaforge/pkg/schema"

// AttrRef identifies one attribute endpoint of a relationship edge. The
// owning table is carried both by ID and by the display name it had when
// the edge was created or last renamed.
type AttrRef struct {
	TableID string
	Table   string
	Attr    string
}

// Edge is one relationship in the visual layer: a line drawn from the
// referenced attribute (Source) to the foreign attribute declaring the
// reference (Target).
type Edge struct {
	ID          string
	Source      AttrRef
	Target      AttrRef
	Cardinality schema.Cardinality
	Optional    bool
}

// EdgeListener receives edge lifecycle events. Events fire synchronously,
// in the order the maintainer applies them, while the mutation that
// caused them is still running. Implementations must not call back into
// the Designer.
type EdgeListener interface {
	EdgeCreated(Edge)
	EdgeDestroyed(id string)
}

type noopListener struct{}

func (noopListener) EdgeCreated(Edge)     {}
func (noopListener) EdgeDestroyed(string) {}
