package store

import (
	"context"
	"time"

	"github.com/paperbase/paperbase/internal/model"
)

// Archive is a portable dump of the node tree and its attachments.
type Archive struct {
	Nodes    []model.Node            `json:"nodes"`
	Tags     []model.Tag             `json:"tags,omitempty"`
	NodeTags []NodeTagPair           `json:"node_tags,omitempty"`
	Versions []model.DocumentVersion `json:"versions,omitempty"`
	Pages    []model.Page            `json:"pages,omitempty"`
}

// NodeTagPair records one tag assignment in an archive.
type NodeTagPair struct {
	NodeID string `json:"node_id"`
	TagID  string `json:"tag_id"`
}

// ExportAll dumps the tree, optionally restricted to one owner.
func (s *SQLiteStore) ExportAll(ctx context.Context, ownerID string) (*Archive, error) {
	a := &Archive{Nodes: []model.Node{}}

	where := ""
	args := []interface{}{}
	if ownerID != "" {
		where = " WHERE owner_id = ?"
		args = append(args, ownerID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, kind, title, owner_id, lang, created_at, updated_at
		 FROM nodes`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		a.Nodes = append(a.Nodes, n)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, name, fg_color, bg_color, owner_id, created_at, updated_at
		 FROM tags`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		a.Tags = append(a.Tags, t)
	}
	rows.Close()

	ownerJoin := ""
	if ownerID != "" {
		ownerJoin = ` JOIN nodes n ON n.id = nt.node_id AND n.owner_id = ?`
	}
	rows, err = s.db.QueryContext(ctx,
		`SELECT nt.node_id, nt.tag_id FROM node_tags nt`+ownerJoin+` ORDER BY nt.node_id`, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p NodeTagPair
		if err := rows.Scan(&p.NodeID, &p.TagID); err != nil {
			rows.Close()
			return nil, err
		}
		a.NodeTags = append(a.NodeTags, p)
	}
	rows.Close()

	versionJoin := ""
	if ownerID != "" {
		versionJoin = ` JOIN nodes n ON n.id = v.document_id AND n.owner_id = ?`
	}
	rows, err = s.db.QueryContext(ctx,
		`SELECT v.id, v.document_id, v.number, v.lang, v.page_count, v.created_at
		 FROM document_versions v`+versionJoin+` ORDER BY v.id`, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var v model.DocumentVersion
		var createdAt string
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Number, &v.Lang, &v.PageCount, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		a.Versions = append(a.Versions, v)
	}
	rows.Close()

	pageJoin := ""
	if ownerID != "" {
		pageJoin = ` JOIN document_versions v ON v.id = p.version_id
			 JOIN nodes n ON n.id = v.document_id AND n.owner_id = ?`
	}
	rows, err = s.db.QueryContext(ctx,
		`SELECT p.id, p.version_id, p.number, p.text, p.lang FROM pages p`+pageJoin+` ORDER BY p.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.VersionID, &p.Number, &p.Text, &p.Lang); err != nil {
			return nil, err
		}
		a.Pages = append(a.Pages, p)
	}

	return a, nil
}

// ImportAll loads an archive produced by ExportAll. Rows whose ids
// already exist are skipped. Returns the number of nodes inserted.
func (s *SQLiteStore) ImportAll(ctx context.Context, a *Archive) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Archives are not topologically sorted, so parent rows may arrive
	// after their children. Check constraints at commit instead.
	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return 0, err
	}

	imported := 0
	for _, n := range a.Nodes {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO nodes (id, parent_id, kind, title, owner_id, lang, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.ParentID, string(n.Kind), n.Title, n.OwnerID, n.Lang,
			n.CreatedAt.UTC().Format(time.RFC3339), n.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return imported, err
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			imported++
		}
	}

	for _, t := range a.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (id, name, fg_color, bg_color, owner_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.FgColor, t.BgColor, t.OwnerID,
			t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return imported, err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range a.NodeTags {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO node_tags (node_id, tag_id, created_at) VALUES (?, ?, ?)`,
			p.NodeID, p.TagID, now)
		if err != nil {
			return imported, err
		}
	}

	for _, v := range a.Versions {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO document_versions (id, document_id, number, lang, page_count, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			v.ID, v.DocumentID, v.Number, v.Lang, v.PageCount, v.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return imported, err
		}
	}

	for _, p := range a.Pages {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pages (id, version_id, number, text, lang)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.VersionID, p.Number, p.Text, p.Lang)
		if err != nil {
			return imported, err
		}
	}

	if err := tx.Commit(); err != nil {
		return imported, err
	}
	return imported, nil
}
