package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/paperbase/paperbase/internal/model"
)

// Cascade reports the result of a subtree deletion.
type Cascade struct {
	// NodeIDs are the node rows that were removed, roots included.
	NodeIDs []string `json:"node_ids"`

	// IndexIDs are the identifiers the search index tracks for the
	// removed nodes: every node id plus, for documents, the page ids
	// of the most recent version.
	IndexIDs []string `json:"index_ids"`
}

// Ancestors walks parent links from the node to the top level and
// returns the chain ordered top-down, ending at the node itself when
// includeSelf is set.
func (s *SQLiteStore) Ancestors(ctx context.Context, id string, includeSelf bool) ([]model.Node, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var chain []model.Node
	visited := map[string]bool{}
	cur := id

	for {
		row := tx.QueryRowContext(ctx,
			`SELECT id, parent_id, kind, title, owner_id, lang, created_at, updated_at
			 FROM nodes WHERE id = ?`, cur)
		n, err := scanNode(row)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("node %s: %w", cur, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if visited[n.ID] {
			return nil, fmt.Errorf("node %s: %w", n.ID, ErrCycle)
		}
		visited[n.ID] = true
		chain = append(chain, n)
		if n.ParentID == nil {
			break
		}
		cur = *n.ParentID
	}

	// Collected bottom-up; reverse into top-down order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	if !includeSelf {
		chain = chain[:len(chain)-1]
	}
	return chain, nil
}

// Breadcrumb returns the node's path from the top level as (id, title)
// pairs.
func (s *SQLiteStore) Breadcrumb(ctx context.Context, id string) ([]model.Crumb, error) {
	chain, err := s.Ancestors(ctx, id, true)
	if err != nil {
		return nil, err
	}
	crumbs := make([]model.Crumb, len(chain))
	for i, n := range chain {
		crumbs[i] = model.Crumb{ID: n.ID, Title: n.Title}
	}
	return crumbs, nil
}

// Descendants returns the subtree rooted at id. Parents appear before
// their children; no other order is defined.
func (s *SQLiteStore) Descendants(ctx context.Context, id string, includeSelf bool) ([]model.Node, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	levels, err := collectSubtree(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	var out []model.Node
	for i, level := range levels {
		if i == 0 && !includeSelf {
			continue
		}
		out = append(out, level...)
	}
	return out, nil
}

// DeleteSubtree removes the node and everything below it in one
// transaction. A missing node yields ErrNotFound.
func (s *SQLiteStore) DeleteSubtree(ctx context.Context, id string) (*Cascade, error) {
	return s.deleteSubtrees(ctx, []string{id}, true)
}

// DeleteSubtrees removes several subtrees in one transaction. Roots
// that no longer exist are skipped, so concurrent deletes of
// overlapping selections stay benign.
func (s *SQLiteStore) DeleteSubtrees(ctx context.Context, ids []string) (*Cascade, error) {
	return s.deleteSubtrees(ctx, ids, false)
}

func (s *SQLiteStore) deleteSubtrees(ctx context.Context, roots []string, strict bool) (*Cascade, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Constraint checks move to commit time so subtree rows can be
	// removed without ordering children before parents.
	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return nil, err
	}

	cas := &Cascade{}
	seen := map[string]bool{}

	for _, rootID := range roots {
		if seen[rootID] {
			continue
		}
		levels, err := collectSubtree(ctx, tx, rootID)
		if err != nil {
			if errors.Is(err, ErrNotFound) && !strict {
				continue
			}
			return nil, err
		}
		for _, level := range levels {
			for _, n := range level {
				if seen[n.ID] {
					continue
				}
				seen[n.ID] = true
				cas.NodeIDs = append(cas.NodeIDs, n.ID)
				cas.IndexIDs = append(cas.IndexIDs, n.ID)
				if n.Kind == model.KindDocument {
					pageIDs, err := latestPageIDs(ctx, tx, n.ID)
					if err != nil {
						return nil, err
					}
					cas.IndexIDs = append(cas.IndexIDs, pageIDs...)
				}
			}
		}
	}

	if len(cas.NodeIDs) == 0 {
		return cas, nil
	}

	for _, chunk := range chunkIDs(cas.NodeIDs, deleteChunkSize) {
		ph := placeholders(len(chunk))
		args := toArgs(chunk)

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM node_tags WHERE node_id IN (`+ph+`)`, args...); err != nil {
			return nil, fmt.Errorf("delete node tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM pages WHERE version_id IN
			   (SELECT id FROM document_versions WHERE document_id IN (`+ph+`))`, args...); err != nil {
			return nil, fmt.Errorf("delete pages: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM document_versions WHERE document_id IN (`+ph+`)`, args...); err != nil {
			return nil, fmt.Errorf("delete versions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM nodes WHERE id IN (`+ph+`)`, args...); err != nil {
			return nil, fmt.Errorf("delete nodes: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cas, nil
}

// collectSubtree gathers the subtree under rootID level by level,
// root first. A revisited id means the parent links form a cycle.
func collectSubtree(ctx context.Context, tx *sql.Tx, rootID string) ([][]model.Node, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, parent_id, kind, title, owner_id, lang, created_at, updated_at
		 FROM nodes WHERE id = ?`, rootID)
	root, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node %s: %w", rootID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	levels := [][]model.Node{{root}}
	visited := map[string]bool{rootID: true}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		query := `SELECT id, parent_id, kind, title, owner_id, lang, created_at, updated_at
			 FROM nodes WHERE parent_id IN (` + placeholders(len(frontier)) + `)`

		rows, err := tx.QueryContext(ctx, query, toArgs(frontier)...)
		if err != nil {
			return nil, err
		}

		var next []model.Node
		for rows.Next() {
			n, err := scanNode(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			if visited[n.ID] {
				rows.Close()
				return nil, fmt.Errorf("node %s: %w", n.ID, ErrCycle)
			}
			visited[n.ID] = true
			next = append(next, n)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = frontier[:0]
		for _, n := range next {
			frontier = append(frontier, n.ID)
		}
	}

	return levels, nil
}

// latestPageIDs returns the page ids of the document's most recent
// version, in page order.
func latestPageIDs(ctx context.Context, tx *sql.Tx, docID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT p.id FROM pages p
		JOIN document_versions v ON p.version_id = v.id
		WHERE v.document_id = ?
		  AND v.number = (SELECT MAX(number) FROM document_versions WHERE document_id = ?)
		ORDER BY p.number`, docID, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const deleteChunkSize = 400

func placeholders(n int) string {
	return "?" + strings.Repeat(",?", n-1)
}

func toArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}
