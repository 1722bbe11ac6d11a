package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// NewDesignsCommand creates the designs command group.
func NewDesignsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "designs",
		Short: "Manage stored designs",
		Long: `List, show, and delete designs saved in the local design store.

Designs accumulate numbered versions; import, inspect, and apply can
all save into the store with --design.`,
	}

	cmd.AddCommand(newDesignsListCommand())
	cmd.AddCommand(newDesignsVersionsCommand())
	cmd.AddCommand(newDesignsShowCommand())
	cmd.AddCommand(newDesignsDeleteCommand())

	return cmd
}

func newDesignsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored designs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			s, err := openStore(cc.Cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			designs, err := s.ListDesigns(cc.Ctx)
			if err != nil {
				return err
			}
			if len(designs) == 0 {
				cc.Renderer.Printf("No designs stored in %s\n", s.Path())
				return nil
			}

			rows := make([]table.Row, 0, len(designs))
			for _, d := range designs {
				rows = append(rows, table.Row{
					d.Name, d.Versions,
					d.CreatedAt.Local().Format("2006-01-02 15:04"),
					d.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			cc.Renderer.Table(table.Row{"Design", "Versions", "Created", "Updated"}, rows)
			return nil
		},
	}
}

func newDesignsVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <design>",
		Short: "List the versions of a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			s, err := openStore(cc.Cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			versions, err := s.ListVersions(cc.Ctx, args[0])
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(versions))
			for _, v := range versions {
				rows = append(rows, table.Row{
					v.Number,
					v.CreatedAt.Local().Format("2006-01-02 15:04"),
					v.Note,
				})
			}
			cc.Renderer.Table(table.Row{"Version", "Created", "Note"}, rows)
			return nil
		},
	}
}

func newDesignsShowCommand() *cobra.Command {
	var version int
	cmd := &cobra.Command{
		Use:   "show <design>",
		Short: "Print a stored design's snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			snap, err := resolveSnapshot(cc, "", args[0], version)
			if err != nil {
				return err
			}
			data, err := schema.MarshalSnapshot(snap, schema.Format(cc.Cfg.Format))
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "Version to show (default: latest)")
	return cmd
}

func newDesignsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <design>",
		Short: "Delete a design and all of its versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			s, err := openStore(cc.Cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.DeleteDesign(cc.Ctx, args[0]); err != nil {
				return err
			}
			cc.Renderer.Printf("Deleted design %q\n", args[0])
			return nil
		},
	}
}
