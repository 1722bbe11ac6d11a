package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/internal/introspect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	URL    string // Database URL argument
	Out    string // Snapshot output file
	Design string // Stored design name to save a version under
	Note   string // Version note for --design
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <database-url>",
		Short: "Build a design from a live database",
		Long: `Connect to a database and reconstruct its schema as a snapshot.

The URL scheme selects the source: postgres:// and mysql:// URLs pass
through to their drivers, sqlite:path and duckdb:path open local
files. Tables, columns, primary keys, and single-column foreign keys
are read; anything the model cannot hold is logged and skipped.`,
		Example: `  schemaforge inspect postgres://localhost/blog -o blog.json
  schemaforge inspect sqlite:app.db --design app`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.URL = args[0]
			return runInspect(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Snapshot output file")
	cmd.Flags().StringVar(&opts.Design, "design", "", "Save as a new version of this stored design")
	cmd.Flags().StringVar(&opts.Note, "note", "", "Version note (with --design)")

	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions) error {
	cc := NewCommandContext(cmd)

	s, err := introspect.Build(cc.Ctx, cc.Logger, opts.URL)
	if err != nil {
		return reportDefects(cc, err)
	}
	snap := schema.ToSnapshot(s)

	switch {
	case opts.Design != "":
		st, err := openStore(cc.Cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		note := opts.Note
		if note == "" {
			note = "inspected from " + opts.URL
		}
		v, err := st.SaveVersion(cc.Ctx, opts.Design, note, snap)
		if err != nil {
			return err
		}
		cc.Renderer.Printf("Inspected %d tables into design %q version %d\n", len(snap.Tables), opts.Design, v.Number)
	case opts.Out != "":
		if err := writeSnapshotFile(opts.Out, snap, cc.Cfg); err != nil {
			return err
		}
		cc.Renderer.Printf("Inspected %d tables into %s\n", len(snap.Tables), opts.Out)
	default:
		data, err := schema.MarshalSnapshot(snap, schema.Format(cc.Cfg.Format))
		if err != nil {
			return err
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	return nil
}
