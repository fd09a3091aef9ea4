// Package codestore is a content-addressed store for generated code kept in SQLite.
//
// The id of an artifact is the SHA-256 hex digest of its content, so storing
// the same content twice yields the same id and never rewrites the row.
package codestore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Retrieve for unknown ids.
var ErrNotFound = errors.New("code not found")

const schema = `
CREATE TABLE IF NOT EXISTS codes (
	code_id      TEXT PRIMARY KEY,
	code_content TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL
)`

// Meta is optional descriptive data supplied when code is stored.
type Meta struct {
	Name        string
	Description string
}

// Artifact is a stored piece of code.
type Artifact struct {
	ID          string
	Content     string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Summary is one entry of ListAll. Heuristic is set when name or description
// were derived from the content instead of supplied at store time.
type Summary struct {
	ID          string `json:"code_id"`
	Name        string `json:"function_name"`
	Description string `json:"function_description"`
	Heuristic   bool   `json:"heuristic,omitempty"`
}

// Store persists artifacts in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// ID returns the content-derived identifier for content.
func ID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Store upserts content and returns its id. Content of an existing id is
// never changed; supplied metadata only fills fields that are still empty.
func (s *Store) Store(ctx context.Context, content string, meta Meta) (string, error) {
	id := ID(content)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO codes (code_id, code_content, name, description, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(code_id) DO UPDATE SET
	name        = CASE WHEN codes.name = '' THEN excluded.name ELSE codes.name END,
	description = CASE WHEN codes.description = '' THEN excluded.description ELSE codes.description END`,
		id, content, meta.Name, meta.Description, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("store code %s: %w", id, err)
	}
	return id, nil
}

// Retrieve returns the artifact with the given id.
func (s *Store) Retrieve(ctx context.Context, id string) (*Artifact, error) {
	a := &Artifact{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT code_content, name, description, created_at FROM codes WHERE code_id = ?`, id).
		Scan(&a.Content, &a.Name, &a.Description, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve code %s: %w", id, err)
	}
	return a, nil
}

// ListAll summarizes every stored artifact ordered by id. Missing names and
// descriptions are filled by Extract; extraction failures become placeholder
// values rather than errors.
func (s *Store) ListAll(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code_id, code_content, name, description FROM codes ORDER BY code_id`)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var id, content, name, desc string
		if err := rows.Scan(&id, &content, &name, &desc); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		out = append(out, summarize(id, content, name, desc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	return out, nil
}

func summarize(id, content, name, desc string) Summary {
	sum := Summary{ID: id, Name: name, Description: desc}
	if name != "" && desc != "" {
		return sum
	}
	sum.Heuristic = true
	meta, err := Extract(content)
	if err != nil {
		if sum.Name == "" {
			sum.Name = UnknownName
		}
		if sum.Description == "" {
			sum.Description = "Parsing error: " + err.Error()
		}
		return sum
	}
	if sum.Name == "" {
		sum.Name = meta.Name
	}
	if sum.Description == "" {
		sum.Description = meta.Description
	}
	return sum
}
