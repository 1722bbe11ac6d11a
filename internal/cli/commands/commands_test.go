package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge-labs/schemaforge/internal/cli/commands"
	"github.com/schemaforge-labs/schemaforge/internal/config"
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

const blogDDL = `CREATE TABLE users (
  id INTEGER NOT NULL PRIMARY KEY,
  email VARCHAR(255) NOT NULL UNIQUE
);

CREATE TABLE posts (
  id INTEGER NOT NULL PRIMARY KEY,
  user_id INTEGER NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StorePath:       filepath.Join(t.TempDir(), "designs.db"),
		Dialect:         "postgresql",
		Format:          "json",
		IncludeComments: true,
		Debounce:        50 * time.Millisecond,
	}
}

// run executes cmd with args under a context carrying cfg, returning
// captured stdout.
func run(t *testing.T, cfg *config.Config, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(config.WithConfig(context.Background(), cfg))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportWritesSnapshot(t *testing.T) {
	cfg := testConfig(t)
	ddlFile := writeFile(t, "blog.sql", blogDDL)
	outFile := filepath.Join(t.TempDir(), "blog.json")

	out, err := run(t, cfg, commands.NewImportCommand(), ddlFile, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 tables")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	snap, err := schema.UnmarshalSnapshot(data, schema.FormatJSON)
	require.NoError(t, err)
	require.Len(t, snap.Tables, 2)
	assert.Equal(t, "users", snap.Tables[0].Name)
	require.NotNil(t, snap.Tables[1].Attributes[1].Ref)
	assert.Equal(t, "users", snap.Tables[1].Attributes[1].Ref.Table)
}

func TestImportRejectsDuplicateTables(t *testing.T) {
	cfg := testConfig(t)
	ddlFile := writeFile(t, "dup.sql", `
CREATE TABLE users (id INT PRIMARY KEY);
CREATE TABLE users (id INT PRIMARY KEY);
`)
	outFile := filepath.Join(t.TempDir(), "dup.json")

	out, err := run(t, cfg, commands.NewImportCommand(), ddlFile, "-o", outFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defect")
	assert.Contains(t, out, "users")

	_, statErr := os.Stat(outFile)
	assert.True(t, os.IsNotExist(statErr), "no snapshot may be written for a rejected import")
}

func TestExportSnapshotToDDL(t *testing.T) {
	cfg := testConfig(t)
	ddlFile := writeFile(t, "blog.sql", blogDDL)
	snapFile := filepath.Join(t.TempDir(), "blog.json")
	_, err := run(t, cfg, commands.NewImportCommand(), ddlFile, "-o", snapFile)
	require.NoError(t, err)

	out, err := run(t, cfg, commands.NewExportCommand(), snapFile)
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE "users"`)
	assert.Contains(t, out, `REFERENCES "users" ("id")`)
	assert.Contains(t, out, "ON DELETE CASCADE")
}

func TestExportAllDialectsToDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dialect = "all"
	ddlFile := writeFile(t, "blog.sql", blogDDL)
	snapFile := filepath.Join(t.TempDir(), "blog.json")
	_, err := run(t, cfg, commands.NewImportCommand(), ddlFile, "-o", snapFile)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	out, err := run(t, cfg, commands.NewExportCommand(), snapFile, "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 4 dialects")

	for _, name := range []string{"mysql", "postgresql", "sqlite", "sqlserver"} {
		data, err := os.ReadFile(filepath.Join(outDir, name+".sql"))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "CREATE TABLE", name)
	}
}

func TestValidateReportsEveryDefect(t *testing.T) {
	cfg := testConfig(t)
	ddlFile := writeFile(t, "bad.sql", `
CREATE TABLE users (id INT PRIMARY KEY);
CREATE TABLE Users (id INT PRIMARY KEY);
CREATE TABLE posts (
  id INT PRIMARY KEY,
  author_id INT,
  FOREIGN KEY (author_id) REFERENCES nobody (id)
);
`)

	out, err := run(t, cfg, commands.NewValidateCommand(), ddlFile)
	require.Error(t, err)
	assert.Contains(t, out, "duplicate-table")
	assert.Contains(t, out, "unresolved-reference")
}

func TestValidateAcceptsCleanFiles(t *testing.T) {
	cfg := testConfig(t)
	ddlFile := writeFile(t, "blog.sql", blogDDL)

	out, err := run(t, cfg, commands.NewValidateCommand(), ddlFile)
	require.NoError(t, err)
	assert.Contains(t, out, "valid: 2 tables")
}

func TestDesignsLifecycle(t *testing.T) {
	cfg := testConfig(t)
	ddlFile := writeFile(t, "blog.sql", blogDDL)

	_, err := run(t, cfg, commands.NewImportCommand(), ddlFile, "--design", "blog", "--note", "first")
	require.NoError(t, err)
	_, err = run(t, cfg, commands.NewImportCommand(), ddlFile, "--design", "blog", "--note", "second")
	require.NoError(t, err)

	out, err := run(t, cfg, commands.NewDesignsCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "blog")

	out, err = run(t, cfg, commands.NewDesignsCommand(), "versions", "blog")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")

	out, err = run(t, cfg, commands.NewDesignsCommand(), "show", "blog", "--version", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"users"`)

	_, err = run(t, cfg, commands.NewDesignsCommand(), "delete", "blog")
	require.NoError(t, err)

	_, err = run(t, cfg, commands.NewDesignsCommand(), "versions", "blog")
	require.Error(t, err)
}

func TestApplyTransformsSnapshot(t *testing.T) {
	cfg := testConfig(t)
	ddlFile := writeFile(t, "blog.sql", blogDDL)
	snapFile := filepath.Join(t.TempDir(), "blog.json")
	_, err := run(t, cfg, commands.NewImportCommand(), ddlFile, "-o", snapFile)
	require.NoError(t, err)

	transform := writeFile(t, "rename.star", `rename_table("users", "accounts")`)
	out, err := run(t, cfg, commands.NewApplyCommand(), transform, snapFile)
	require.NoError(t, err)
	assert.Contains(t, out, "2 tables written")

	data, err := os.ReadFile(snapFile)
	require.NoError(t, err)
	snap, err := schema.UnmarshalSnapshot(data, schema.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "accounts", snap.Tables[0].Name)
	// The rename cascaded into the dependent foreign key.
	assert.Equal(t, "accounts", snap.Tables[1].Attributes[1].Ref.Table)
}

func TestDialectsListsClosedSet(t *testing.T) {
	cfg := testConfig(t)
	out, err := run(t, cfg, commands.NewDialectsCommand())
	require.NoError(t, err)
	for _, name := range []string{"mysql", "postgresql", "sqlite", "sqlserver"} {
		assert.Contains(t, out, name)
	}
}

func TestVersionPrintsVersion(t *testing.T) {
	cfg := testConfig(t)
	out, err := run(t, cfg, commands.NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "schemaforge v1.2.3")
}
