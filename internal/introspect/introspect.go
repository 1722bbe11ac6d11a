// Package introspect builds a schema graph from a live database.
//
// Sources are registered per URL scheme and read physical metadata in
// whatever way their engine exposes it (information_schema, PRAGMAs,
// duckdb_constraints). The assembly step here is shared: concrete column
// types are mapped back onto the abstract vocabulary, single-column
// primary keys become primary attributes, and foreign keys become
// reference descriptors. Whatever the engine reports that the model
// cannot express is logged and left out rather than guessed at.
package introspect

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Column is one physical column as a source reports it. Type carries the
// concrete token, possibly with parameters ("VARCHAR(80)", "numeric").
type Column struct {
	Name          string
	Type          string
	NotNull       bool
	Default       string
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
	EnumValues    []string
	Size          int
	Precision     int
	Scale         int
}

// ForeignKey is one single-column outgoing reference as a source reports
// it. TargetColumn may be empty when the engine lets a reference name
// only the table; assembly resolves it to the target's primary key.
type ForeignKey struct {
	Column       string
	TargetTable  string
	TargetColumn string
	OnDelete     string
	OnUpdate     string
}

// Source reads physical metadata from one database engine.
type Source interface {
	// Name returns the scheme the source is registered under.
	Name() string

	// Connect opens the database identified by target.
	Connect(ctx context.Context, target string) error

	// Close releases the connection.
	Close() error

	// Tables lists user table names in name order.
	Tables(ctx context.Context) ([]string, error)

	// Columns returns the columns of one table in ordinal order.
	Columns(ctx context.Context, table string) ([]Column, error)

	// ForeignKeys returns the single-column outgoing references of one table.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)
}

// Build connects to the database at url and reconstructs its schema.
// The scheme selects the source; postgres and mysql URLs pass through to
// their drivers, sqlite and duckdb take a file path after the scheme.
// The result is validated before it is returned, so a database whose
// layout the model cannot hold (case-colliding table names, dangling
// foreign keys) surfaces as a *schema.DefectError.
func Build(ctx context.Context, logger *slog.Logger, url string) (*schema.Schema, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	scheme, target, err := splitURL(url)
	if err != nil {
		return nil, err
	}

	factory, ok := Get(scheme)
	if !ok {
		return nil, &UnknownSchemeError{Scheme: scheme, Available: List()}
	}

	src := factory(logger)
	if err := src.Connect(ctx, target); err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	return buildSchema(ctx, logger, src)
}

func buildSchema(ctx context.Context, logger *slog.Logger, src Source) (*schema.Schema, error) {
	names, err := src.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	s := schema.New()
	for _, name := range names {
		cols, err := src.Columns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", name, err)
		}
		fks, err := src.ForeignKeys(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read foreign keys of %s: %w", name, err)
		}
		s.Tables = append(s.Tables, buildTable(logger, name, cols, fks))
	}

	resolveImplicitTargets(s)

	if defects := schema.Validate(s); len(defects) > 0 {
		return nil, &schema.DefectError{Defects: defects}
	}

	logger.Info("introspected database",
		slog.String("source", src.Name()),
		slog.Int("tables", len(s.Tables)))

	return s, nil
}

func buildTable(logger *slog.Logger, name string, cols []Column, fks []ForeignKey) *schema.Table {
	tbl := schema.NewTable(name)

	refs := make(map[string]ForeignKey, len(fks))
	for _, fk := range fks {
		refs[strings.ToLower(fk.Column)] = fk
	}

	pkCount := 0
	for _, c := range cols {
		if c.PrimaryKey {
			pkCount++
		}
	}
	if pkCount > 1 {
		logger.Warn("composite primary key kept as plain columns",
			slog.String("table", name), slog.Int("columns", pkCount))
	}

	for _, c := range cols {
		attr := buildAttribute(c)
		if c.PrimaryKey && pkCount == 1 {
			attr.Role = schema.RolePrimary
			attr.NotNull = true
		}
		if fk, ok := refs[strings.ToLower(c.Name)]; ok && attr.Role != schema.RolePrimary {
			attr.Role = schema.RoleForeign
			attr.Ref = &schema.ForeignRef{
				Table:       fk.TargetTable,
				Attr:        fk.TargetColumn,
				Cardinality: schema.OneToMany,
				OnDelete:    actionFrom(fk.OnDelete),
				OnUpdate:    actionFrom(fk.OnUpdate),
				Optional:    !attr.NotNull,
			}
		}
		tbl.Attributes = append(tbl.Attributes, attr)
	}

	return tbl
}

func buildAttribute(c Column) *schema.Attribute {
	base, args := splitTypeToken(c.Type)

	attr := &schema.Attribute{
		Name:          c.Name,
		Role:          schema.RoleNormal,
		NotNull:       c.NotNull,
		Unique:        c.Unique,
		AutoIncrement: c.AutoIncrement,
		Default:       c.Default,
	}

	info, known := dialect.Resolve(base)
	if !known {
		attr.Type = schema.TypeRaw
		attr.Raw = strings.TrimSpace(c.Type)
		return attr
	}

	attr.Type = info.Type
	if info.AutoIncrement {
		attr.AutoIncrement = true
	}

	switch info.Type {
	case schema.TypeVarchar, schema.TypeChar:
		attr.Size = c.Size
		if attr.Size == 0 && len(args) > 0 {
			attr.Size, _ = strconv.Atoi(args[0])
		}
	case schema.TypeDecimal:
		attr.Precision, attr.Scale = c.Precision, c.Scale
		if attr.Precision == 0 && len(args) > 0 {
			attr.Precision, _ = strconv.Atoi(args[0])
			if len(args) > 1 {
				attr.Scale, _ = strconv.Atoi(args[1])
			}
		}
	case schema.TypeEnum:
		attr.EnumValues = c.EnumValues
		if len(attr.EnumValues) == 0 {
			for _, a := range args {
				attr.EnumValues = append(attr.EnumValues, strings.Trim(a, "'"))
			}
		}
	}

	return attr
}

// splitTypeToken separates a concrete type token into its base name and
// parenthesized arguments: "NUMERIC(10, 2)" yields "NUMERIC" and [10 2].
// The base keeps multiword forms like "timestamp without time zone".
func splitTypeToken(tok string) (string, []string) {
	tok = strings.TrimSpace(tok)
	open := strings.IndexByte(tok, '(')
	if open < 0 {
		return tok, nil
	}
	end := strings.LastIndexByte(tok, ')')
	if end < open {
		return tok, nil
	}

	base := strings.TrimSpace(tok[:open])
	var args []string
	for _, a := range strings.Split(tok[open+1:end], ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return base, args
}

func actionFrom(rule string) schema.Action {
	switch strings.ToUpper(strings.TrimSpace(rule)) {
	case "CASCADE":
		return schema.Cascade
	case "SET NULL":
		return schema.SetNull
	case "SET DEFAULT":
		return schema.SetDefault
	case "RESTRICT":
		return schema.Restrict
	default:
		return schema.NoAction
	}
}

// resolveImplicitTargets fills in reference target attributes that the
// engine reported as table-only, using the target's primary key.
func resolveImplicitTargets(s *schema.Schema) {
	for _, t := range s.Tables {
		for _, a := range t.Attributes {
			if a.Ref == nil || a.Ref.Attr != "" {
				continue
			}
			target := s.Table(a.Ref.Table)
			if target == nil {
				continue
			}
			if pk := target.Primary(); pk != nil {
				a.Ref.Attr = pk.Name
			}
		}
	}
}

// splitURL separates the scheme from the driver target. Network engines
// keep the full URL (their drivers parse it natively); file engines get
// the bare path.
func splitURL(url string) (scheme, target string, err error) {
	scheme, rest, ok := strings.Cut(url, ":")
	if !ok || scheme == "" {
		return "", "", fmt.Errorf("database url %q has no scheme, expected scheme://target or scheme:path", url)
	}

	scheme = strings.ToLower(scheme)
	switch scheme {
	case "postgres", "postgresql":
		return "postgres", url, nil
	case "mysql":
		return "mysql", url, nil
	case "sqlite", "sqlite3":
		return "sqlite", strings.TrimPrefix(rest, "//"), nil
	case "duckdb":
		return "duckdb", strings.TrimPrefix(rest, "//"), nil
	default:
		return scheme, strings.TrimPrefix(rest, "//"), nil
	}
}
