// Package script runs Starlark transform files against a design.
//
// A transform sees a small builtin vocabulary bound to designer
// mutations, so edits made from a script flow through the same cascade
// and edge-event path as interactive edits. Scripts are plain .star
// files executed top to bottom; a failed mutation aborts the run with
// the designer's rejection reason in the backtrace.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.starlark.net/starlark"

	"github.com/schemaforge-labs/schemaforge/pkg/designer"
)

// Runner executes transform scripts against one designer.
type Runner struct {
	d      *designer.Designer
	logger *slog.Logger
}

// NewRunner returns a runner bound to d. A nil logger discards output.
func NewRunner(d *designer.Designer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{d: d, logger: logger}
}

// RunFile loads and executes the transform at path.
func (r *Runner) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transform: %w", err)
	}
	return r.Run(filepath.Base(path), src)
}

// Run executes src as a transform. The name appears in backtraces.
func (r *Runner) Run(name string, src []byte) error {
	thread := &starlark.Thread{
		Name: "transform:" + name,
		Print: func(_ *starlark.Thread, msg string) {
			r.logger.Info("transform output",
				slog.String("script", name),
				slog.String("message", msg))
		},
	}

	_, err := starlark.ExecFile(thread, name, src, r.builtins()) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return fmt.Errorf("run transform %s: %s", name, evalErr.Backtrace())
		}
		return fmt.Errorf("run transform %s: %w", name, err)
	}
	return nil
}
