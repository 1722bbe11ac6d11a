package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Source { return &duckdbSource{logger: logger} })
}

// duckdbSource reads metadata through information_schema plus the
// duckdb_constraints() table function, which is where DuckDB exposes
// key and reference information.
type duckdbSource struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *duckdbSource) Name() string { return "duckdb" }

func (s *duckdbSource) Connect(ctx context.Context, target string) error {
	db, err := sql.Open("duckdb", target)
	if err != nil {
		return fmt.Errorf("open duckdb database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping duckdb database: %w", err)
	}
	s.db = db
	return nil
}

func (s *duckdbSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *duckdbSource) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *duckdbSource) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			column_name,
			data_type,
			is_nullable,
			column_default,
			COALESCE(character_maximum_length, 0),
			COALESCE(numeric_precision, 0),
			COALESCE(numeric_scale, 0)
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			c          Column
			nullable   string
			defaultVal sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &defaultVal,
			&c.Size, &c.Precision, &c.Scale); err != nil {
			return nil, err
		}

		c.NotNull = nullable == "NO"
		if defaultVal.Valid {
			if strings.HasPrefix(defaultVal.String, "nextval(") {
				c.AutoIncrement = true
			} else {
				c.Default = defaultVal.String
			}
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.applyKeys(ctx, table, cols); err != nil {
		return nil, err
	}

	return cols, nil
}

// applyKeys marks primary key and single-column unique membership from
// duckdb_constraints().
func (s *duckdbSource) applyKeys(ctx context.Context, table string, cols []Column) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT constraint_type, unnest(constraint_column_names), len(constraint_column_names)
		FROM duckdb_constraints()
		WHERE schema_name = 'main' AND table_name = ?
			AND constraint_type IN ('PRIMARY KEY', 'UNIQUE')
	`, table)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[strings.ToLower(c.Name)] = i
	}

	for rows.Next() {
		var (
			kind string
			col  string
			size int
		)
		if err := rows.Scan(&kind, &col, &size); err != nil {
			return err
		}
		i, ok := index[strings.ToLower(col)]
		if !ok {
			continue
		}
		switch {
		case kind == "PRIMARY KEY":
			cols[i].PrimaryKey = true
		case size == 1:
			cols[i].Unique = true
		}
	}
	return rows.Err()
}

func (s *duckdbSource) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	// DuckDB references carry no ON DELETE / ON UPDATE clauses; the
	// defaults stand. Composite references are skipped by the length
	// filter, matching the single-column reference model.
	rows, err := s.db.QueryContext(ctx, `
		SELECT constraint_column_names[1], referenced_table, referenced_column_names[1]
		FROM duckdb_constraints()
		WHERE schema_name = 'main' AND table_name = ?
			AND constraint_type = 'FOREIGN KEY'
			AND len(constraint_column_names) = 1
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var (
			fk ForeignKey
			to sql.NullString
		)
		if err := rows.Scan(&fk.Column, &fk.TargetTable, &to); err != nil {
			return nil, err
		}
		fk.TargetColumn = to.String
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
