// Package render writes tabular CLI output. Tables are drawn with box
// characters when stdout is a terminal and fall back to plain ASCII when
// piped, so command output stays grep-friendly in scripts.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Renderer draws tables and messages onto one output stream.
type Renderer struct {
	out    io.Writer
	styled bool
}

// New returns a renderer for w. Styling is enabled only when w is the
// process stdout and stdout is a terminal.
func New(w io.Writer) *Renderer {
	styled := false
	if f, ok := w.(*os.File); ok && f == os.Stdout {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &Renderer{out: w, styled: styled}
}

func (r *Renderer) writer() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	if r.styled {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	return t
}

// Table draws one table with a header row.
func (r *Renderer) Table(header table.Row, rows []table.Row) {
	t := r.writer()
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

// Defects draws the defect list with locations and subjects.
func (r *Renderer) Defects(defects []schema.Defect) {
	rows := make([]table.Row, 0, len(defects))
	for _, d := range defects {
		loc := ""
		if d.Line > 0 {
			loc = fmt.Sprintf("%d:%d", d.Line, d.Column)
		}
		subject := d.Table
		if d.Attribute != "" {
			subject = d.Table + "." + d.Attribute
		}
		rows = append(rows, table.Row{string(d.Kind), subject, loc, d.Message})
	}
	r.Table(table.Row{"Defect", "Subject", "Location", "Detail"}, rows)
}

// Printf writes a formatted line outside any table.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
