package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/paperbase/paperbase/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// Immediate transactions plus a busy timeout let concurrent
	// writers queue instead of failing with SQLITE_BUSY mid-cascade.
	dsn := dbPath + "?_txlock=immediate" +
		"&_pragma=journal_mode(wal)" +
		"&_pragma=foreign_keys(on)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id         TEXT PRIMARY KEY,
		parent_id  TEXT REFERENCES nodes(id),
		kind       TEXT NOT NULL,
		title      TEXT NOT NULL,
		owner_id   TEXT NOT NULL,
		lang       TEXT NOT NULL DEFAULT 'deu',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
	CREATE INDEX IF NOT EXISTS idx_nodes_owner ON nodes(owner_id);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_nodes_sibling_title
		ON nodes(parent_id, title, owner_id);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_nodes_root_title
		ON nodes(title, owner_id) WHERE parent_id IS NULL;

	CREATE TABLE IF NOT EXISTS tags (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		fg_color   TEXT NOT NULL DEFAULT '#ffffff',
		bg_color   TEXT NOT NULL DEFAULT '#c41fff',
		owner_id   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_tags_owner_name ON tags(owner_id, name);

	CREATE TABLE IF NOT EXISTS node_tags (
		node_id    TEXT NOT NULL REFERENCES nodes(id),
		tag_id     TEXT NOT NULL REFERENCES tags(id),
		created_at TEXT NOT NULL,
		PRIMARY KEY (node_id, tag_id)
	);
	CREATE INDEX IF NOT EXISTS idx_node_tags_tag ON node_tags(tag_id);

	CREATE TABLE IF NOT EXISTS document_versions (
		id          TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES nodes(id),
		number      INTEGER NOT NULL,
		lang        TEXT NOT NULL DEFAULT 'deu',
		page_count  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		UNIQUE (document_id, number)
	);
	CREATE INDEX IF NOT EXISTS idx_versions_document ON document_versions(document_id);

	CREATE TABLE IF NOT EXISTS pages (
		id         TEXT PRIMARY KEY,
		version_id TEXT NOT NULL REFERENCES document_versions(id),
		number     INTEGER NOT NULL,
		text       TEXT NOT NULL DEFAULT '',
		lang       TEXT NOT NULL DEFAULT 'deu',
		UNIQUE (version_id, number)
	);
	CREATE INDEX IF NOT EXISTS idx_pages_version ON pages(version_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateNode inserts a node. The parent, when set, must exist; a title
// clash among siblings (or at the top level) yields ErrConflict.
func (s *SQLiteStore) CreateNode(ctx context.Context, p CreateNodeParams) (*model.Node, error) {
	now := time.Now().UTC()
	id := s.newID()

	lang := p.Lang
	if lang == "" {
		lang = model.DefaultLang
	}

	ts := now.Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, parent_id, kind, title, owner_id, lang, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.ParentID, string(p.Kind), p.Title, p.OwnerID, lang, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("title %q already in use: %w", p.Title, ErrConflict)
		}
		if isFKViolation(err) {
			return nil, fmt.Errorf("parent of %q: %w", p.Title, ErrNotFound)
		}
		return nil, fmt.Errorf("insert node: %w", err)
	}

	return &model.Node{
		ID:        id,
		ParentID:  p.ParentID,
		Kind:      p.Kind,
		Title:     p.Title,
		OwnerID:   p.OwnerID,
		Lang:      lang,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetNode retrieves a node by id.
func (s *SQLiteStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, parent_id, kind, title, owner_id, lang, created_at, updated_at
		 FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Rename changes a node's title.
func (s *SQLiteStore) Rename(ctx context.Context, id, title string) (*model.Node, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET title = ?, updated_at = ? WHERE id = ?`, title, now, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("title %q already in use: %w", title, ErrConflict)
		}
		return nil, fmt.Errorf("rename node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return s.GetNode(ctx, id)
}

// Reparent attaches a node under a new parent. A nil parent moves it to
// the top level.
func (s *SQLiteStore) Reparent(ctx context.Context, id string, parentID *string) (*model.Node, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET parent_id = ?, updated_at = ? WHERE id = ?`, parentID, now, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("title conflict under new parent: %w", ErrConflict)
		}
		if isFKViolation(err) {
			return nil, fmt.Errorf("target parent: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("reparent node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return s.GetNode(ctx, id)
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row scanner) (model.Node, error) {
	var n model.Node
	var parentID sql.NullString
	var kind, createdAt, updatedAt string

	err := row.Scan(&n.ID, &parentID, &kind, &n.Title, &n.OwnerID, &n.Lang, &createdAt, &updatedAt)
	if err != nil {
		return n, err
	}

	n.Kind = model.NodeKind(kind)
	if parentID.Valid {
		p := parentID.String
		n.ParentID = &p
	}
	n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	n.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return n, nil
}

func scanTag(row scanner) (model.Tag, error) {
	var t model.Tag
	var createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.Name, &t.FgColor, &t.BgColor, &t.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		return t, err
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
