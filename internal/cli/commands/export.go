package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/schemaforge-labs/schemaforge/pkg/ddl"
	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	File    string // Snapshot file argument
	Design  string // Stored design name
	Version int    // Stored design version (0 = latest)
	Out     string // Output file, or directory for --dialect all
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export [snapshot-file]",
		Short: "Generate DDL from a design",
		Long: `Generate a DDL script from a schema snapshot file or a stored design.

The whole design is validated first; any structural defect (duplicate
names, unresolved foreign keys) aborts generation and the full defect
list is reported. With --dialect all, every registered dialect is
generated concurrently and written to one .sql file per dialect.`,
		Example: `  # Print postgresql DDL for a snapshot
  schemaforge export blog.json --dialect postgresql

  # Generate every dialect into a directory
  schemaforge export blog.json --dialect all -o out/

  # Export the latest version of a stored design
  schemaforge export --design blog -o blog.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.File = args[0]
			}
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Design, "design", "", "Export a stored design instead of a file")
	cmd.Flags().IntVar(&opts.Version, "version", 0, "Stored design version (default: latest)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file (directory with --dialect all)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	cc := NewCommandContext(cmd)

	snap, err := resolveSnapshot(cc, opts.File, opts.Design, opts.Version)
	if err != nil {
		return err
	}
	s, err := schema.FromSnapshot(snap)
	if err != nil {
		return err
	}

	if cc.Cfg.Dialect == "all" {
		return exportAll(cmd, cc, s, opts)
	}

	text, err := ddl.Generate(s, cc.Cfg.Dialect, cc.Cfg.GenerateOptions())
	if err != nil {
		return reportDefects(cc, err)
	}
	if opts.Out == "" {
		_, werr := fmt.Fprint(cmd.OutOrStdout(), text)
		return werr
	}
	return writeTextFile(opts.Out, text)
}

// exportAll generates every registered dialect concurrently. Output goes
// to one file per dialect under the output directory, or to stdout in
// dialect name order when no directory is given.
func exportAll(cmd *cobra.Command, cc *CommandContext, s *schema.Schema, opts *ExportOptions) error {
	names := dialect.List()
	scripts := make([]string, len(names))

	g, _ := errgroup.WithContext(cc.Ctx)
	for i, name := range names {
		g.Go(func() error {
			text, err := ddl.Generate(s, name, cc.Cfg.GenerateOptions())
			if err != nil {
				return err
			}
			scripts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reportDefects(cc, err)
	}

	if opts.Out == "" {
		for i, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "-- dialect: %s\n\n%s", name, scripts[i])
			if i < len(names)-1 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
		return nil
	}

	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for i, name := range names {
		path := filepath.Join(opts.Out, name+".sql")
		if err := writeTextFile(path, scripts[i]); err != nil {
			return err
		}
		cc.Logger.Info("dialect written", "dialect", name, "path", path)
	}
	cc.Renderer.Printf("Generated %d dialects in %s\n", len(names), opts.Out)
	return nil
}

func writeTextFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// reportDefects renders a defect list as a table and collapses the error
// to a one-line summary. Non-defect errors pass through untouched.
func reportDefects(cc *CommandContext, err error) error {
	defects, ok := schema.AsDefects(err)
	if !ok {
		return err
	}
	cc.Renderer.Defects(defects)
	return fmt.Errorf("%d schema defect(s) found", len(defects))
}
