// Package store caches serialized span trees in SQLite.
//
// Entries are keyed by an arbitrary name, usually a file path, and carry the
// digest of the text the tree was built from. A lookup with a different
// digest is a miss, so edited files are rebuilt transparently.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/shibukawa/spantree/codec"
	"github.com/shibukawa/spantree/tree"
)

const schema = `CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	digest     TEXT NOT NULL,
	tree_id    TEXT NOT NULL,
	payload    BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Store is a tree snapshot cache
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger that traces snapshot reads and writes
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open connects to the SQLite database at dsn (":memory:" works) and creates
// the snapshot table when missing.
func Open(ctx context.Context, dsn string, options ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// one connection keeps in-memory databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Digest returns the hex encoded SHA-256 of content
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Put stores t under key, replacing any previous entry
func (s *Store) Put(ctx context.Context, key, digest string, t *tree.Tree) error {
	payload, err := codec.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to serialize tree: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, digest, tree_id, payload, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET digest = excluded.digest, tree_id = excluded.tree_id,
		payload = excluded.payload, updated_at = excluded.updated_at`,
		key, digest, t.ID().String(), payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", key, err)
	}

	s.logger.Debug("stored snapshot", zap.String("key", key), zap.String("digest", digest), zap.Int("bytes", len(payload)))

	return nil
}

// Get loads the tree stored under key. It reports false when there is no
// entry or when the entry was built from content with another digest.
func (s *Store) Get(ctx context.Context, key, digest string, options ...tree.Option) (*tree.Tree, bool, error) {
	var (
		stored  string
		payload []byte
	)

	err := s.db.QueryRowContext(ctx, `SELECT digest, payload FROM snapshots WHERE key = ?`, key).Scan(&stored, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("snapshot miss", zap.String("key", key))
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}

	if stored != digest {
		s.logger.Debug("stale snapshot", zap.String("key", key), zap.String("stored", stored), zap.String("digest", digest))
		return nil, false, nil
	}

	t, err := codec.Unmarshal(payload, options...)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot %s: %w", key, err)
	}

	return t, true, nil
}

// Delete removes the entry under key; a missing entry is not an error
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}

	return nil
}

// Keys lists the stored keys in ascending order
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM snapshots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var keys []string

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}

		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
