package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge-labs/schemaforge/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.Reset()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootWiresSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"export", "import", "validate", "inspect", "apply", "watch", "dialects", "designs", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootRunsDialects(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "dialects")
	require.NoError(t, err)
	assert.Contains(t, out, "postgresql")
	assert.Contains(t, out, "sqlserver")
}

func TestRootRejectsUnknownDialect(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "dialects", "--dialect", "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
}

func TestRootShowsHelpWithoutConfig(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "schemaforge")
}
