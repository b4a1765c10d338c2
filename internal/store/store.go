// SPDX-License-Identifier: MIT

// Package store persists render artifacts in SQLite. A record is created in
// state locked before rendering, promoted to saved once the file exists, and
// removed together with any partial file when the render fails.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Artifact lifecycle states.
const (
	StatusLocked = "locked"
	StatusSaved  = "saved"
)

// Artifact kinds.
const (
	TypeImage = "image"
	TypeVideo = "video"
)

// ErrNotFound reports a missing or foreign artifact.
var ErrNotFound = errors.New("artifact not found")

// Artifact is one owned render output.
type Artifact struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Duration  float64   `json:"duration_seconds"`
	Status    string    `json:"status"`
	File      string    `json:"file"`
	Orientation string  `json:"orientation"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileExt returns the artifact's file extension for its type and format.
func FileExt(artifactType, stillFormat string) string {
	if artifactType == TypeVideo {
		return "mp4"
	}
	if stillFormat == "jpg" {
		return "jpg"
	}
	return "png"
}

const schema = `
CREATE TABLE IF NOT EXISTS locked_content (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('image', 'video')),
	duration_seconds REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK (status IN ('locked', 'saved')),
	file TEXT NOT NULL DEFAULT '',
	orientation TEXT NOT NULL DEFAULT 'landscape',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_locked_content_owner_created
	ON locked_content (owner, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_locked_content_owner_orientation
	ON locked_content (owner, orientation, created_at DESC);
`

// Store is a SQLite-backed artifact store rooted at a media directory.
type Store struct {
	db        *sql.DB
	mediaRoot string
}

// Open opens (or creates) the artifact database at dbPath. Pragmas ride the
// DSN so they apply to every pooled connection.
func Open(dbPath, mediaRoot string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath, (5 * time.Second).Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db, mediaRoot: mediaRoot}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// CreateLocked inserts a new artifact in state locked and returns it. The
// file path is assigned deterministically under locked/.
func (s *Store) CreateLocked(ctx context.Context, owner, name, artifactType string, duration float64, orientation, stillFormat string) (*Artifact, error) {
	now := time.Now().UTC()
	a := &Artifact{
		ID:          uuid.NewString(),
		Owner:       owner,
		Name:        name,
		Type:        artifactType,
		Duration:    duration,
		Status:      StatusLocked,
		Orientation: orientation,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a.File = fmt.Sprintf("locked/%s.%s", a.ID, FileExt(artifactType, stillFormat))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locked_content (id, owner, name, type, duration_seconds, status, file, orientation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Owner, a.Name, a.Type, a.Duration, a.Status, a.File, a.Orientation, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create: %w", err)
	}
	return a, nil
}

// MarkSaved promotes an owned locked artifact to saved.
func (s *Store) MarkSaved(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE locked_content SET status = ?, updated_at = ?
		WHERE id = ? AND owner = ? AND status = ?`,
		StatusSaved, time.Now().UTC(), id, owner, StatusLocked,
	)
	if err != nil {
		return fmt.Errorf("store: mark saved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: mark saved: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an owned artifact record and its file, if any. Used both
// for failure rollback and explicit deletes.
func (s *Store) Delete(ctx context.Context, owner, id string) error {
	var file string
	err := s.db.QueryRowContext(ctx,
		`SELECT file FROM locked_content WHERE id = ? AND owner = ?`, id, owner,
	).Scan(&file)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: delete lookup: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM locked_content WHERE id = ? AND owner = ?`, id, owner,
	); err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}

	if file != "" {
		_ = os.Remove(filepath.Join(s.mediaRoot, filepath.FromSlash(file)))
	}
	return nil
}

// Get returns an owned artifact by id.
func (s *Store) Get(ctx context.Context, owner, id string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, name, type, duration_seconds, status, file, orientation, created_at, updated_at
		FROM locked_content WHERE id = ? AND owner = ?`, id, owner)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get: %w", err)
	}
	return a, nil
}

// List returns the owner's artifacts, newest first.
func (s *Store) List(ctx context.Context, owner string) ([]*Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, name, type, duration_seconds, status, file, orientation, created_at, updated_at
		FROM locked_content WHERE owner = ? ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	artifacts := make([]*Artifact, 0)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list rows: %w", err)
	}
	return artifacts, nil
}

// AbsolutePath resolves an artifact's file under the media root.
func (s *Store) AbsolutePath(a *Artifact) string {
	return filepath.Join(s.mediaRoot, filepath.FromSlash(a.File))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*Artifact, error) {
	var a Artifact
	err := row.Scan(&a.ID, &a.Owner, &a.Name, &a.Type, &a.Duration, &a.Status,
		&a.File, &a.Orientation, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
