package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/internal/script"
	"github.com/schemaforge-labs/schemaforge/pkg/designer"
)

// ApplyOptions holds options for the apply command.
type ApplyOptions struct {
	Transform string // Starlark transform file argument
	File      string // Snapshot file argument
	Design    string // Stored design name
	Version   int    // Stored design version (0 = latest)
	Out       string // Output file (default: the input file)
	Note      string // Version note for --design
}

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	opts := &ApplyOptions{}
	cmd := &cobra.Command{
		Use:   "apply <transform.star> [snapshot-file]",
		Short: "Run a Starlark transform over a design",
		Long: `Run a Starlark transform script against a snapshot or stored design.

The script edits the design through the same mutation path as
interactive edits, so renames cascade to dependent foreign keys,
deletions demote dangling references, and every edit is validated
before it commits. A failed mutation aborts the run and nothing is
written.

Builtins: add_table, add_attribute, set_primary, set_type, link,
unlink, rename_table, rename_attribute, drop_attribute, drop_table.`,
		Example: `  # Transform a snapshot file in place
  schemaforge apply add_audit_columns.star blog.json

  # Transform the latest version of a stored design into a new version
  schemaforge apply add_audit_columns.star --design blog`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Transform = args[0]
			if len(args) > 1 {
				opts.File = args[1]
			}
			return runApply(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Design, "design", "", "Transform a stored design instead of a file")
	cmd.Flags().IntVar(&opts.Version, "version", 0, "Stored design version (default: latest)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file (default: overwrite the input file)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "Version note (with --design)")

	return cmd
}

func runApply(cmd *cobra.Command, opts *ApplyOptions) error {
	cc := NewCommandContext(cmd)

	snap, err := resolveSnapshot(cc, opts.File, opts.Design, opts.Version)
	if err != nil {
		return err
	}

	d := designer.New(nil)
	if err := d.Restore(snap); err != nil {
		return reportDefects(cc, err)
	}

	runner := script.NewRunner(d, cc.Logger)
	if err := runner.RunFile(opts.Transform); err != nil {
		return err
	}
	result := d.Snapshot()

	switch {
	case opts.Design != "":
		s, err := openStore(cc.Cfg)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		note := opts.Note
		if note == "" {
			note = "applied " + filepath.Base(opts.Transform)
		}
		v, err := s.SaveVersion(cc.Ctx, opts.Design, note, result)
		if err != nil {
			return err
		}
		cc.Renderer.Printf("Applied %s: design %q version %d\n", opts.Transform, opts.Design, v.Number)
	default:
		out := opts.Out
		if out == "" {
			out = opts.File
		}
		if out == "" {
			return fmt.Errorf("an output file is required, pass -o")
		}
		if err := writeSnapshotFile(out, result, cc.Cfg); err != nil {
			return err
		}
		cc.Renderer.Printf("Applied %s: %d tables written to %s\n", opts.Transform, len(result.Tables), out)
	}
	return nil
}
