package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure SQLiteStore implements model.DeploymentStore.
var _ model.DeploymentStore = (*SQLiteStore)(nil)

// SQLiteStore keeps deployment history in a SQLite database so unchanged
// templates are not re-rendered.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// deployments table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS deployments (
			id          TEXT PRIMARY KEY,
			document    TEXT NOT NULL,
			digest      TEXT NOT NULL,
			env         TEXT NOT NULL,
			object_key  TEXT NOT NULL DEFAULT '',
			target      TEXT NOT NULL,
			profile     TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL,
			deployed_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating deployments table: %w", err)
		}
	}
	if err := migrateObjectKey(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(
		`CREATE INDEX IF NOT EXISTS deployments_key_env ON deployments (object_key, env, deployed_at)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating deployments index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// migrateObjectKey adds the object_key column to databases created before
// deployments were tracked per key.
func migrateObjectKey(db *sql.DB) error {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info('deployments') WHERE name = 'object_key'",
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspecting deployments table: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec("ALTER TABLE deployments ADD COLUMN object_key TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding object_key column: %w", err)
	}
	return nil
}

// LatestDigest returns the digest of the newest deployment published to key
// in env, or "" when nothing was published there yet.
func (s *SQLiteStore) LatestDigest(key, env string) (string, error) {
	var digest string
	err := s.db.QueryRow(
		`SELECT digest FROM deployments WHERE object_key = ? AND env = ?
		 ORDER BY deployed_at DESC, rowid DESC LIMIT 1`, key, env,
	).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading latest deployment of %s to %s: %w", key, env, err)
	}
	return digest, nil
}

// Record stores a deployment. A zero DeployedAt is set to now.
func (s *SQLiteStore) Record(d model.Deployment) error {
	if d.DeployedAt.IsZero() {
		d.DeployedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO deployments (id, document, digest, env, object_key, target, profile, url, deployed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Document, d.Digest, d.Env, d.Key, d.Target, d.Profile, d.URL, d.DeployedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording deployment %s: %w", d.ID, err)
	}
	return nil
}

// Recent returns up to limit deployments, newest first.
func (s *SQLiteStore) Recent(limit int) ([]model.Deployment, error) {
	rows, err := s.db.Query(
		`SELECT id, document, digest, env, object_key, target, profile, url, deployed_at
		 FROM deployments ORDER BY deployed_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent deployments: %w", err)
	}
	defer rows.Close()

	var out []model.Deployment
	for rows.Next() {
		var (
			d  model.Deployment
			ms int64
		)
		if err := rows.Scan(&d.ID, &d.Document, &d.Digest, &d.Env, &d.Key, &d.Target, &d.Profile, &d.URL, &ms); err != nil {
			return nil, fmt.Errorf("scanning deployment row: %w", err)
		}
		d.DeployedAt = time.UnixMilli(ms).UTC()
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deployments: %w", err)
	}
	return out, nil
}

// Cleanup deletes deployments older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	_, err := s.db.Exec("DELETE FROM deployments WHERE deployed_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up deployments older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
