package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/pkg/ddl"
	"github.com/schemaforge-labs/schemaforge/pkg/parser"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	File string // DDL file argument
	Out  string // Regenerated DDL output file
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch <ddl-file>",
		Short: "Re-validate a DDL file on every change",
		Long: `Watch a DDL file and re-parse it whenever it changes.

Every save triggers a full parse and validation pass; defects are
reported with their positions. With --out, a clean parse also
regenerates the file in the configured dialect, keeping a normalized
copy in sync with hand-edited DDL. Stop with Ctrl-C.`,
		Example: `  schemaforge watch schema.sql
  schemaforge watch schema.sql --out normalized.sql --dialect mysql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Regenerate DDL to this file after each clean parse")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	cc := NewCommandContext(cmd)

	ctx, stop := signal.NotifyContext(cc.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors that write via
	// rename-over replace the inode and a file watch would go stale.
	abs, err := filepath.Abs(opts.File)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	checkOnce(cc, abs, opts)
	cc.Renderer.Printf("Watching %s (Ctrl-C to stop)\n", opts.File)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			cc.Renderer.Printf("Stopped\n")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: editors fire bursts of events per save.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cc.Cfg.Debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watch error", "error", err)
		case <-pending:
			checkOnce(cc, abs, opts)
		}
	}
}

// checkOnce parses and validates the file, reporting defects or, on a
// clean parse with --out set, regenerating normalized DDL.
func checkOnce(cc *CommandContext, path string, opts *WatchOptions) {
	data, err := os.ReadFile(path)
	if err != nil {
		cc.Logger.Error("read failed", "path", opts.File, "error", err)
		return
	}

	s, err := parser.Parse(string(data))
	if err != nil {
		if defects, ok := schema.AsDefects(err); ok {
			cc.Renderer.Defects(defects)
			cc.Renderer.Printf("%s: %d defect(s)\n", opts.File, len(defects))
		} else {
			cc.Logger.Error("parse failed", "path", opts.File, "error", err)
		}
		return
	}

	attrs := 0
	for _, t := range s.Tables {
		attrs += len(t.Attributes)
	}
	cc.Renderer.Printf("%s: valid, %d tables, %d attributes\n", opts.File, len(s.Tables), attrs)

	if opts.Out == "" {
		return
	}
	text, err := ddl.Generate(s, cc.Cfg.Dialect, cc.Cfg.GenerateOptions())
	if err != nil {
		cc.Logger.Error("regenerate failed", "error", err)
		return
	}
	if err := writeTextFile(opts.Out, text); err != nil {
		cc.Logger.Error("write failed", "path", opts.Out, "error", err)
		return
	}
	cc.Logger.Info("regenerated", "path", opts.Out, "dialect", cc.Cfg.Dialect)
}
