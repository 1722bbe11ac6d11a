package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func init() {
	Register("postgres", func(logger *slog.Logger) Source { return &postgresSource{logger: logger} })
}

// postgresSource reads metadata through information_schema in the
// connection's current schema (usually public).
type postgresSource struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *postgresSource) Name() string { return "postgres" }

func (s *postgresSource) Connect(ctx context.Context, target string) error {
	db, err := sql.Open("pgx", target)
	if err != nil {
		return fmt.Errorf("open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	s.db = db
	return nil
}

func (s *postgresSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *postgresSource) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
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

func (s *postgresSource) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			c.column_name,
			CASE WHEN c.data_type = 'USER-DEFINED' THEN c.udt_name ELSE c.data_type END,
			c.is_nullable,
			c.column_default,
			c.is_identity,
			COALESCE(c.character_maximum_length, 0),
			COALESCE(c.numeric_precision, 0),
			COALESCE(c.numeric_scale, 0),
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.constraint_column_usage ccu
					ON tc.constraint_name = ccu.constraint_name
					AND tc.table_schema = ccu.table_schema
				WHERE tc.table_schema = current_schema()
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'UNIQUE'
					AND ccu.column_name = c.column_name
			) THEN true ELSE false END,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.key_column_usage kcu
				JOIN information_schema.table_constraints tc
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.table_schema = current_schema()
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
			) THEN true ELSE false END
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema() AND c.table_name = $1
		ORDER BY c.ordinal_position
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
			identity   string
			defaultVal sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &defaultVal, &identity,
			&c.Size, &c.Precision, &c.Scale, &c.Unique, &c.PrimaryKey); err != nil {
			return nil, err
		}

		c.NotNull = nullable == "NO"

		// Serial columns surface as a nextval default on a sequence.
		switch {
		case identity == "YES":
			c.AutoIncrement = true
		case defaultVal.Valid && strings.HasPrefix(defaultVal.String, "nextval("):
			c.AutoIncrement = true
		case defaultVal.Valid:
			c.Default = defaultVal.String
		}

		// Parameter columns only mean something for sized types; the
		// assembly step ignores them elsewhere.
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (s *postgresSource) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			kcu.column_name,
			ccu.table_name,
			ccu.column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = current_schema()
			AND tc.table_name = $1
		ORDER BY kcu.ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.TargetTable, &fk.TargetColumn,
			&fk.OnDelete, &fk.OnUpdate); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
