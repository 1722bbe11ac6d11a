package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/pkg/parser"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a DDL script or schema snapshot",
		Long: `Validate a file against the schema model's structural invariants.

A .sql or .ddl file is parsed as DDL; anything else is decoded as a
snapshot. Every defect found is reported in one pass: duplicate table
and attribute names, unresolved foreign-key references, multiple
primary keys, and malformed statements with their positions. The exit
status is non-zero when any defect exists.`,
		Example: `  schemaforge validate schema.sql
  schemaforge validate blog.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	cc := NewCommandContext(cmd)

	var (
		s   *schema.Schema
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql", ".ddl":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read DDL: %w", err)
		}
		s, err = parser.Parse(string(data))
	default:
		var snap *schema.Snapshot
		snap, err = readSnapshotFile(path, cc.Cfg)
		if err != nil {
			return err
		}
		s, err = schema.FromSnapshot(snap)
		if err == nil {
			if defects := schema.Validate(s); len(defects) > 0 {
				err = &schema.DefectError{Defects: defects}
			}
		}
	}
	if err != nil {
		return reportDefects(cc, err)
	}

	attrs := 0
	for _, t := range s.Tables {
		attrs += len(t.Attributes)
	}
	cc.Renderer.Printf("%s is valid: %d tables, %d attributes\n", path, len(s.Tables), attrs)
	return nil
}
