// Package store persists named designs and their versioned schema
// snapshots in a local SQLite database.
//
// Each design is identified by name and accumulates numbered versions.
// A version holds a complete schema snapshot serialized as JSON, so any
// version can be restored independently of the ones before it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

var (
	// ErrDesignNotFound is returned when no design with the given name exists.
	ErrDesignNotFound = errors.New("design not found")

	// ErrVersionNotFound is returned when a design exists but the requested
	// version number does not.
	ErrVersionNotFound = errors.New("version not found")
)

// Design is a named schema under version control.
type Design struct {
	ID        string
	Name      string
	Versions  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Version is one saved snapshot of a design. Numbers start at 1 and
// increase by one per save.
type Version struct {
	ID        string
	DesignID  string
	Number    int
	Note      string
	CreatedAt time.Time
}

// Store is a SQLite-backed design store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the design store at path, creating the file if needed.
// Use ":memory:" for an in-memory store. Call Migrate before first use.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open design store: %w", err)
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping design store: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// SaveVersion stores snap as the next version of the named design,
// creating the design if it does not exist yet.
func (s *Store) SaveVersion(ctx context.Context, design, note string, snap *schema.Snapshot) (Version, error) {
	data, err := schema.MarshalSnapshot(snap, schema.FormatJSON)
	if err != nil {
		return Version{}, fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Version{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	var designID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM designs WHERE name = ?`, design).Scan(&designID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		designID = uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO designs (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			designID, design, now, now,
		); err != nil {
			return Version{}, fmt.Errorf("create design: %w", err)
		}
	case err != nil:
		return Version{}, fmt.Errorf("look up design: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE designs SET updated_at = ? WHERE id = ?`, now, designID,
		); err != nil {
			return Version{}, fmt.Errorf("touch design: %w", err)
		}
	}

	var number int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number), 0) + 1 FROM versions WHERE design_id = ?`, designID,
	).Scan(&number); err != nil {
		return Version{}, fmt.Errorf("next version number: %w", err)
	}

	v := Version{
		ID:        uuid.NewString(),
		DesignID:  designID,
		Number:    number,
		Note:      note,
		CreatedAt: now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO versions (id, design_id, number, note, snapshot, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.DesignID, v.Number, v.Note, string(data), v.CreatedAt,
	); err != nil {
		return Version{}, fmt.Errorf("insert version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Version{}, fmt.Errorf("commit transaction: %w", err)
	}

	return v, nil
}

// LoadLatest returns the newest version of the named design along with
// its decoded snapshot.
func (s *Store) LoadLatest(ctx context.Context, design string) (Version, *schema.Snapshot, error) {
	designID, err := s.designID(ctx, design)
	if err != nil {
		return Version{}, nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, design_id, number, note, snapshot, created_at
		FROM versions WHERE design_id = ?
		ORDER BY number DESC LIMIT 1
	`, designID)

	return scanVersion(row, design)
}

// LoadVersion returns a specific version of the named design along with
// its decoded snapshot.
func (s *Store) LoadVersion(ctx context.Context, design string, number int) (Version, *schema.Snapshot, error) {
	designID, err := s.designID(ctx, design)
	if err != nil {
		return Version{}, nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, design_id, number, note, snapshot, created_at
		FROM versions WHERE design_id = ? AND number = ?
	`, designID, number)

	return scanVersion(row, design)
}

// ListDesigns returns all designs ordered by name, with their version counts.
func (s *Store) ListDesigns(ctx context.Context) ([]Design, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, COUNT(v.id), d.created_at, d.updated_at
		FROM designs d
		LEFT JOIN versions v ON v.design_id = d.id
		GROUP BY d.id
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query designs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var designs []Design
	for rows.Next() {
		var d Design
		if err := rows.Scan(&d.ID, &d.Name, &d.Versions, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		designs = append(designs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate designs: %w", err)
	}

	return designs, nil
}

// ListVersions returns all versions of the named design, oldest first.
// Snapshots are not decoded; use LoadVersion for that.
func (s *Store) ListVersions(ctx context.Context, design string) ([]Version, error) {
	designID, err := s.designID(ctx, design)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, design_id, number, note, created_at
		FROM versions WHERE design_id = ?
		ORDER BY number
	`, designID)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.DesignID, &v.Number, &v.Note, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}

// DeleteDesign removes the named design and all of its versions.
func (s *Store) DeleteDesign(ctx context.Context, design string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM designs WHERE name = ?`, design)
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("design %q: %w", design, ErrDesignNotFound)
	}

	return nil
}

func (s *Store) designID(ctx context.Context, design string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM designs WHERE name = ?`, design).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("design %q: %w", design, ErrDesignNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("look up design: %w", err)
	}
	return id, nil
}

func scanVersion(row *sql.Row, design string) (Version, *schema.Snapshot, error) {
	var (
		v    Version
		blob string
	)
	err := row.Scan(&v.ID, &v.DesignID, &v.Number, &v.Note, &blob, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, nil, fmt.Errorf("design %q: %w", design, ErrVersionNotFound)
	}
	if err != nil {
		return Version{}, nil, fmt.Errorf("scan version: %w", err)
	}

	snap, err := schema.UnmarshalSnapshot([]byte(blob), schema.FormatJSON)
	if err != nil {
		return Version{}, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return v, snap, nil
}
