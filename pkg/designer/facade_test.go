package designer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge-labs/schemaforge/pkg/ddl"
	"github.com/schemaforge-labs/schemaforge/pkg/designer"
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

const rosterDDL = `CREATE TABLE teams (
  id INTEGER NOT NULL PRIMARY KEY,
  name VARCHAR(80) NOT NULL
);

CREATE TABLE players (
  id INTEGER NOT NULL PRIMARY KEY,
  team_id INTEGER NOT NULL REFERENCES teams (id) ON DELETE CASCADE
);
`

func TestImportDDLReplacesSchema(t *testing.T) {
	rec := &eventRecorder{}
	d := linkedPair(t, rec)
	oldEdge := rec.created[0].ID

	require.NoError(t, d.ImportDDL(rosterDDL))

	// the old schema and its edges are fully gone
	assert.Nil(t, d.Schema().Table("A"))
	assert.Contains(t, rec.destroyed, oldEdge)

	require.NotNil(t, d.Schema().Table("teams"))
	require.NotNil(t, d.Schema().Table("players"))
	require.Len(t, d.Edges(), 1)
	e := d.Edges()[0]
	assert.Equal(t, "teams", e.Source.Table)
	assert.Equal(t, "players", e.Target.Table)
	assert.Equal(t, "team_id", e.Target.Attr)
	assert.Len(t, rec.created, 2, "the rebuilt edge arrives through the listener")
}

func TestImportDDLRejectsDuplicateTables(t *testing.T) {
	rec := &eventRecorder{}
	d := linkedPair(t, rec)

	err := d.ImportDDL(`CREATE TABLE users (id INTEGER PRIMARY KEY);
CREATE TABLE users (id INTEGER PRIMARY KEY);`)
	require.Error(t, err)

	defects, ok := schema.AsDefects(err)
	require.True(t, ok)
	require.Len(t, defects, 1)
	assert.Equal(t, schema.DefectDuplicateTable, defects[0].Kind)
	assert.Equal(t, "users", defects[0].Table)

	// no partially constructed schema: the current one is untouched
	assert.NotNil(t, d.Schema().Table("A"))
	assert.Nil(t, d.Schema().Table("users"))
	assert.Len(t, d.Edges(), 1)
	assert.Empty(t, rec.destroyed)
}

func TestImportDDLCollectsAllDefects(t *testing.T) {
	d := designer.New(nil)
	err := d.ImportDDL(`CREATE TABLE users (id INTEGER PRIMARY KEY);
CREATE TABLE users (id INTEGER PRIMARY KEY);
CREATE TABLE posts (
  id INTEGER PRIMARY KEY,
  author_id INTEGER REFERENCES members (id)
);`)
	require.Error(t, err)

	defects, ok := schema.AsDefects(err)
	require.True(t, ok)
	require.Len(t, defects, 2, "every defect surfaces in one call")

	kinds := map[schema.DefectKind]bool{}
	for _, defect := range defects {
		kinds[defect.Kind] = true
	}
	assert.True(t, kinds[schema.DefectDuplicateTable])
	assert.True(t, kinds[schema.DefectUnresolvedReference])
}

func TestExportDDLAllDialects(t *testing.T) {
	d := linkedPair(t, &eventRecorder{})
	for _, dialect := range []string{"mysql", "postgresql", "sqlite", "sqlserver"} {
		out, err := d.ExportDDL(dialect, ddl.Options{})
		require.NoError(t, err, dialect)
		assert.Contains(t, out, "CREATE TABLE", dialect)
	}

	_, err := d.ExportDDL("mongodb", ddl.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgresql")
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	d := linkedPair(t, &eventRecorder{})
	snap := d.Snapshot()

	rec := &eventRecorder{}
	restored := designer.New(rec)
	require.NoError(t, restored.Restore(snap))

	assert.Len(t, rec.created, 1, "edges rebuild from the snapshot's foreign attributes")

	want, err := d.ExportDDL("postgresql", ddl.Options{})
	require.NoError(t, err)
	got, err := restored.ExportDDL("postgresql", ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// the restored schema is independent of the source
	require.NoError(t, restored.RenameTable("A", "Z"))
	still, err := d.ExportDDL("postgresql", ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, want, still)
}

func TestSnapshotSurvivesWireEncoding(t *testing.T) {
	d := linkedPair(t, &eventRecorder{})

	data, err := schema.MarshalSnapshot(d.Snapshot(), schema.FormatJSON)
	require.NoError(t, err)
	snap, err := schema.UnmarshalSnapshot(data, schema.FormatJSON)
	require.NoError(t, err)

	restored := designer.New(nil)
	require.NoError(t, restored.Restore(snap))

	want, _ := d.ExportDDL("mysql", ddl.Options{})
	got, _ := restored.ExportDDL("mysql", ddl.Options{})
	assert.Equal(t, want, got)
}

func TestRestoreRejectsDefectiveSnapshot(t *testing.T) {
	d := linkedPair(t, &eventRecorder{})

	snap := &schema.Snapshot{Tables: []schema.TableSnapshot{{
		Name: "b",
		Attributes: []schema.AttributeSnapshot{{
			Name: "a_id",
			Type: "int",
			Role: "foreign",
			Ref:  &schema.RefSnapshot{Table: "ghosts", Attr: "id"},
		}},
	}}}

	err := d.Restore(snap)
	require.Error(t, err)
	defects, ok := schema.AsDefects(err)
	require.True(t, ok)
	require.Len(t, defects, 1)
	assert.Equal(t, schema.DefectUnresolvedReference, defects[0].Kind)

	assert.NotNil(t, d.Schema().Table("A"), "a rejected restore changes nothing")
}
