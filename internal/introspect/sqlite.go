package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Source { return &sqliteSource{logger: logger} })
}

// sqliteSource reads metadata through the PRAGMA interface.
type sqliteSource struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *sqliteSource) Name() string { return "sqlite" }

func (s *sqliteSource) Connect(ctx context.Context, target string) error {
	db, err := sql.Open("sqlite", target+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping sqlite database: %w", err)
	}
	s.db = db
	return nil
}

func (s *sqliteSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *sqliteSource) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
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

func (s *sqliteSource) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid        int
			c          Column
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &c.Name, &c.Type, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}

		c.NotNull = notNull != 0
		c.PrimaryKey = pk > 0
		if defaultVal.Valid {
			c.Default = defaultVal.String
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unique, err := s.uniqueColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		if unique[strings.ToLower(cols[i].Name)] && !cols[i].PrimaryKey {
			cols[i].Unique = true
		}
	}

	return cols, nil
}

// uniqueColumns returns the names covered by single-column unique indexes.
func (s *sqliteSource) uniqueColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA index_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}

	var indexes []string
	for rows.Next() {
		var (
			seq     int
			name    string
			uniq    int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &uniq, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if uniq == 1 && origin != "pk" {
			indexes = append(indexes, name)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	unique := make(map[string]bool)
	for _, idx := range indexes {
		cols, err := s.indexColumns(ctx, idx)
		if err != nil {
			return nil, err
		}
		if len(cols) == 1 {
			unique[strings.ToLower(cols[0])] = true
		}
	}
	return unique, nil
}

func (s *sqliteSource) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA index_info("+quoteIdent(index)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

func (s *sqliteSource) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int]*ForeignKey)
	counts := make(map[int]int)
	var order []int
	for rows.Next() {
		var (
			id, seq            int
			targetTable, from  string
			to                 sql.NullString
			onUpdate, onDelete string
			match              string
		)
		if err := rows.Scan(&id, &seq, &targetTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		counts[id]++
		if seq == 0 {
			byID[id] = &ForeignKey{
				Column:       from,
				TargetTable:  targetTable,
				TargetColumn: to.String,
				OnDelete:     onDelete,
				OnUpdate:     onUpdate,
			}
			order = append(order, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fks []ForeignKey
	for _, id := range order {
		if counts[id] > 1 {
			s.logger.Warn("composite foreign key skipped",
				slog.String("table", table),
				slog.String("target", byID[id].TargetTable))
			continue
		}
		fks = append(fks, *byID[id])
	}
	return fks, nil
}

// quoteIdent wraps an identifier for interpolation into a PRAGMA call,
// which takes no bind parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
