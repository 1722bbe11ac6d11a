// Package commands implements the schemaforge subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemaforge-labs/schemaforge/internal/cli/render"
	"github.com/schemaforge-labs/schemaforge/internal/config"
	"github.com/schemaforge-labs/schemaforge/internal/store"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Ctx      context.Context
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *render.Renderer
}

// NewCommandContext assembles the dependencies every command starts from.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Ctx:      cmd.Context(),
		Cfg:      config.FromContext(cmd.Context()),
		Logger:   config.Logger(cmd.Context()),
		Renderer: render.New(cmd.OutOrStdout()),
	}
}

// openStore opens the design store at the configured path, creating the
// parent directory and running pending migrations.
func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.StorePath != ":memory:" {
		if dir := filepath.Dir(cfg.StorePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}
	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// snapshotFormatFor picks the snapshot encoding for a path: the file
// extension when it is decisive, the configured format otherwise.
func snapshotFormatFor(path string, cfg *config.Config) schema.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return schema.FormatJSON
	case ".yaml", ".yml":
		return schema.FormatYAML
	default:
		return schema.Format(cfg.Format)
	}
}

// readSnapshotFile loads and decodes a snapshot file.
func readSnapshotFile(path string, cfg *config.Config) (*schema.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := schema.UnmarshalSnapshot(data, snapshotFormatFor(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

// writeSnapshotFile encodes and writes a snapshot, creating parent
// directories as needed.
func writeSnapshotFile(path string, snap *schema.Snapshot, cfg *config.Config) error {
	data, err := schema.MarshalSnapshot(snap, snapshotFormatFor(path, cfg))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// resolveSnapshot loads the snapshot a command operates on: a snapshot
// file when given as an argument, a stored design otherwise. version 0
// means the latest stored version.
func resolveSnapshot(cc *CommandContext, file, design string, version int) (*schema.Snapshot, error) {
	switch {
	case file != "" && design != "":
		return nil, fmt.Errorf("pass either a snapshot file or --design, not both")
	case file != "":
		return readSnapshotFile(file, cc.Cfg)
	case design != "":
		s, err := openStore(cc.Cfg)
		if err != nil {
			return nil, err
		}
		defer func() { _ = s.Close() }()
		if version > 0 {
			_, snap, err := s.LoadVersion(cc.Ctx, design, version)
			return snap, err
		}
		_, snap, err := s.LoadLatest(cc.Ctx, design)
		return snap, err
	default:
		return nil, fmt.Errorf("a snapshot file argument or --design is required")
	}
}
