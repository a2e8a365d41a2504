// Package store persists templates and the SKU list in a SQLite database.
//
// The store is the mutable side of the template registry. Jobs never read it
// directly: they take a [Snapshot], an immutable in-memory copy, so a job
// sees one consistent registry even while templates are being imported.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/ingest"
	"github.com/matzehuels/bedforge/pkg/template"
)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS skus (
	key            TEXT PRIMARY KEY,
	sku            TEXT NOT NULL,
	template_id    TEXT NOT NULL DEFAULT '',
	requires_photo INTEGER NOT NULL DEFAULT 0,
	attrs          TEXT NOT NULL DEFAULT '{}'
);
`

// Store is a SQLite-backed template and SKU registry.
type Store struct {
	db *sql.DB
}

// TemplateInfo summarises a stored template.
type TemplateInfo struct {
	ID        string
	Name      string
	BedWidth  float64
	BedHeight float64
	Rows      int
	Cols      int
	Elements  int
	UpdatedAt time.Time
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create registry dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" a single database and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// PutTemplate validates tpl and stores it under id, replacing any previous
// version.
func (s *Store) PutTemplate(ctx context.Context, id, name string, tpl *template.Template) error {
	if id == "" {
		return errors.Invalid(errors.ErrCodeInvalidSchema, "id", "template id is required")
	}
	if err := tpl.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("encode template %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, body = excluded.body, updated_at = excluded.updated_at`,
		id, name, string(body), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store template %s: %w", id, err)
	}
	return nil
}

// GetTemplate loads a template. A missing id is a NOT_FOUND error.
func (s *Store) GetTemplate(ctx context.Context, id string) (*template.Template, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM templates WHERE id = ?", id).Scan(&body)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeNotFound, "template %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query template %s: %w", id, err)
	}
	return decodeTemplate(id, body)
}

// DeleteTemplate removes a template. Deleting a missing id is not an error.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	return nil
}

// ListTemplates returns a summary of every template, ordered by id.
func (s *Store) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, body, updated_at FROM templates ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []TemplateInfo
	for rows.Next() {
		var (
			id, name, body string
			updated        int64
		)
		if err := rows.Scan(&id, &name, &body, &updated); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		tpl, err := decodeTemplate(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, TemplateInfo{
			ID:        id,
			Name:      name,
			BedWidth:  tpl.Bed.WidthMM,
			BedHeight: tpl.Bed.HeightMM,
			Rows:      tpl.Tiling.Rows,
			Cols:      tpl.Tiling.Cols,
			Elements:  len(tpl.Part.Elements),
			UpdatedAt: time.UnixMilli(updated),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// PutSKUs upserts SKU rows in one transaction.
func (s *Store) PutSKUs(ctx context.Context, metas []ingest.SKUMeta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO skus (key, sku, template_id, requires_photo, attrs) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET sku = excluded.sku, template_id = excluded.template_id,
			requires_photo = excluded.requires_photo, attrs = excluded.attrs`)
	if err != nil {
		return fmt.Errorf("prepare sku insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, m := range metas {
		attrs, err := json.Marshal(m.Attrs)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, ingest.NormalizeSKU(m.SKU), m.SKU, m.TemplateID, m.RequiresPhoto, string(attrs)); err != nil {
			return fmt.Errorf("store sku %s: %w", m.SKU, err)
		}
	}
	return tx.Commit()
}

// SKUs loads the SKU list.
func (s *Store) SKUs(ctx context.Context) (ingest.SKUMap, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT sku, template_id, requires_photo, attrs FROM skus ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("query skus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	m := ingest.SKUMap{}
	for rows.Next() {
		var (
			meta  ingest.SKUMeta
			attrs string
		)
		if err := rows.Scan(&meta.SKU, &meta.TemplateID, &meta.RequiresPhoto, &attrs); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(attrs), &meta.Attrs); err != nil {
			return nil, fmt.Errorf("parse sku attrs %s: %w", meta.SKU, err)
		}
		m.Add(meta)
	}
	return m, rows.Err()
}

// Snapshot loads every template and the SKU list into memory.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, body FROM templates")
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := &Snapshot{templates: map[string]*template.Template{}}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		tpl, err := decodeTemplate(id, body)
		if err != nil {
			return nil, err
		}
		snap.templates[id] = tpl
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if snap.skus, err = s.SKUs(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

func decodeTemplate(id, body string) (*template.Template, error) {
	tpl, err := template.Parse([]byte(body), template.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", id, err)
	}
	return tpl, nil
}
