package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

func init() {
	Register("mysql", func(logger *slog.Logger) Source { return &mysqlSource{logger: logger} })
}

// mysqlSource reads metadata through information_schema for the database
// named in the URL path.
type mysqlSource struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *mysqlSource) Name() string { return "mysql" }

func (s *mysqlSource) Connect(ctx context.Context, target string) error {
	dsn, err := mysqlDSN(target)
	if err != nil {
		return err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("open mysql connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping mysql: %w", err)
	}
	s.db = db
	return nil
}

// mysqlDSN converts a mysql:// URL into the driver's DSN form.
func mysqlDSN(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Passwd = pw
		}
	}
	if q := u.Query(); len(q) > 0 {
		cfg.Params = make(map[string]string, len(q))
		for k := range q {
			cfg.Params[k] = q.Get(k)
		}
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("mysql url %q names no database", target)
	}

	return cfg.FormatDSN(), nil
}

func (s *mysqlSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *mysqlSource) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
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

func (s *mysqlSource) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_default, column_key, extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
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
			colType    string
			nullable   string
			defaultVal sql.NullString
			key        string
			extra      string
		)
		if err := rows.Scan(&c.Name, &colType, &nullable, &defaultVal, &key, &extra); err != nil {
			return nil, err
		}

		// column_type carries everything: "varchar(80)", "decimal(10,2)",
		// "enum('new','paid')". Modifiers the model has no slot for are
		// stripped before resolution.
		colType = strings.ReplaceAll(colType, " unsigned", "")
		colType = strings.ReplaceAll(colType, " zerofill", "")

		c.Type = colType
		c.NotNull = nullable == "NO"
		c.PrimaryKey = key == "PRI"
		c.Unique = key == "UNI"
		c.AutoIncrement = strings.Contains(extra, "auto_increment")
		if defaultVal.Valid {
			c.Default = defaultVal.String
		}

		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (s *mysqlSource) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kcu.column_name, kcu.referenced_table_name, kcu.referenced_column_name,
			rc.delete_rule, rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = kcu.constraint_name
			AND rc.constraint_schema = kcu.table_schema
		WHERE kcu.table_schema = DATABASE()
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
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
