package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/pkg/designer"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// ImportOptions holds options for the import command.
type ImportOptions struct {
	File   string // DDL file argument
	Out    string // Snapshot output file
	Design string // Stored design name to save a version under
	Note   string // Version note for --design
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &ImportOptions{}
	cmd := &cobra.Command{
		Use:   "import <ddl-file>",
		Short: "Parse DDL into a design",
		Long: `Parse a DDL script into a schema snapshot.

The whole document is parsed before anything is accepted: forward
foreign-key references resolve, and every structural defect (malformed
statements, duplicate names, dangling references) is collected and
reported in one pass. A rejected import produces no snapshot at all.`,
		Example: `  # DDL file to a snapshot file
  schemaforge import schema.sql -o blog.json

  # Save as a new version of a stored design
  schemaforge import schema.sql --design blog --note "initial import"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Snapshot output file")
	cmd.Flags().StringVar(&opts.Design, "design", "", "Save as a new version of this stored design")
	cmd.Flags().StringVar(&opts.Note, "note", "", "Version note (with --design)")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions) error {
	cc := NewCommandContext(cmd)

	data, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("read DDL: %w", err)
	}

	d := designer.New(nil)
	if err := d.ImportDDL(string(data)); err != nil {
		return reportDefects(cc, err)
	}
	snap := d.Snapshot()

	tables := len(snap.Tables)
	switch {
	case opts.Design != "":
		s, err := openStore(cc.Cfg)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		v, err := s.SaveVersion(cc.Ctx, opts.Design, opts.Note, snap)
		if err != nil {
			return err
		}
		cc.Renderer.Printf("Imported %d tables as design %q version %d\n", tables, opts.Design, v.Number)
	case opts.Out != "":
		if err := writeSnapshotFile(opts.Out, snap, cc.Cfg); err != nil {
			return err
		}
		cc.Renderer.Printf("Imported %d tables into %s\n", tables, opts.Out)
	default:
		data, err := schema.MarshalSnapshot(snap, schema.Format(cc.Cfg.Format))
		if err != nil {
			return err
		}
		_, _ = cmd.OutOrStdout().Write(data)
	}
	return nil
}
