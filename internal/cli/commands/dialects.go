package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects",
		Long: `List every registered SQL dialect with its aliases, identifier
quoting style, and auto-increment mechanism.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			rows := make([]table.Row, 0, len(dialect.List()))
			for _, name := range dialect.List() {
				d, ok := dialect.Get(name)
				if !ok {
					continue
				}
				rows = append(rows, table.Row{
					d.Name,
					strings.Join(d.Aliases, ", "),
					d.Identifiers.Quote + "x" + d.Identifiers.QuoteEnd,
					autoIncrementLabel(d),
				})
			}
			cc.Renderer.Table(table.Row{"Dialect", "Aliases", "Quoting", "Auto-increment"}, rows)
			return nil
		},
	}
}

func autoIncrementLabel(d *dialect.Dialect) string {
	switch d.AutoIncrement {
	case dialect.AutoIncrementImplicit:
		return "implicit"
	case dialect.AutoIncrementSerial:
		return "serial types"
	default:
		return d.AutoIncrementKeyword
	}
}
