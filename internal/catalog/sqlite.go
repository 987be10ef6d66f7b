package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no resource has the requested URL.
var ErrNotFound = errors.New("resource not found")

const tableResources = "resources"

var resourceColumns = []string{"url", "title", "type", "source", "topic", "description", "duration_minutes"}

// DB is a SQLite query cache of the catalog, rebuilt from the JSONL source of
// truth.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite catalog database at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS resources (
			url TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			source TEXT NOT NULL,
			topic TEXT,
			description TEXT,
			duration_minutes INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_resources_type ON resources(type);
		CREATE INDEX IF NOT EXISTS idx_resources_topic ON resources(topic COLLATE NOCASE);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild replaces every row with resources in one transaction.
func (d *DB) Rebuild(resources []Resource) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + tableResources); err != nil {
		return 0, fmt.Errorf("clearing resources table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO resources (url, title, type, source, topic, description, duration_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing resources insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range resources {
		if _, err := stmt.Exec(r.URL, r.Title, string(r.Type), r.Source, r.Topic, r.Description, r.DurationMinutes); err != nil {
			return 0, fmt.Errorf("inserting %s: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing resources: %w", err)
	}
	return len(resources), nil
}

// RebuildFromJSONL clears the database and reloads it from a JSONL file.
func (d *DB) RebuildFromJSONL(path string) (int, error) {
	resources, err := ReadAll(path)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.Rebuild(resources)
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Type   ResourceType
	Source string
	Topic  string // Case-insensitive
	Limit  int
}

func (f Filter) where() sqrl.And {
	cond := sqrl.And{}
	if f.Type != "" {
		cond = append(cond, sqrl.Eq{"type": string(f.Type)})
	}
	if f.Source != "" {
		cond = append(cond, sqrl.Eq{"source": f.Source})
	}
	if f.Topic != "" {
		cond = append(cond, sqrl.Expr("topic = ? COLLATE NOCASE", f.Topic))
	}
	return cond
}

// List returns resources matching f, ordered by title then URL.
func (d *DB) List(f Filter) ([]Resource, error) {
	q := sqrl.Select(resourceColumns...).
		From(tableResources).
		Where(f.where()).
		OrderBy("title", "url")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var out []Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of resources matching f.
func (d *DB) Count(f Filter) (int, error) {
	query, args, err := sqrl.Select("COUNT(*)").From(tableResources).Where(f.where()).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	var n int
	if err := d.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting resources: %w", err)
	}
	return n, nil
}

// GetByURL returns the resource with the given URL.
func (d *DB) GetByURL(u string) (*Resource, error) {
	query, args, err := sqrl.Select(resourceColumns...).
		From(tableResources).
		Where(sqrl.Eq{"url": u}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	r, err := scanResource(d.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(s scanner) (Resource, error) {
	var (
		r                  Resource
		typ                string
		topic, description sql.NullString
	)
	if err := s.Scan(&r.URL, &r.Title, &typ, &r.Source, &topic, &description, &r.DurationMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resource{}, err
		}
		return Resource{}, fmt.Errorf("scanning resource: %w", err)
	}
	r.Type = ResourceType(typ)
	r.Topic = topic.String
	r.Description = description.String
	return r, nil
}
