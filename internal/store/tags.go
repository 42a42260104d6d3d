package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paperbase/paperbase/internal/model"
)

// TagParams holds parameters for creating or updating a tag.
type TagParams struct {
	Name    string
	FgColor string
	BgColor string
	OwnerID string
}

// TagPage is one page of a tag listing.
type TagPage struct {
	Items      []model.Tag `json:"items"`
	PageSize   int         `json:"page_size"`
	PageNumber int         `json:"page_number"`
	NumPages   int         `json:"num_pages"`
}

// CreateTag creates a tag. Names are unique per owner.
func (s *SQLiteStore) CreateTag(ctx context.Context, p TagParams) (*model.Tag, error) {
	now := time.Now().UTC()
	id := s.newID()

	fg := p.FgColor
	if fg == "" {
		fg = model.DefaultTagFgColor
	}
	bg := p.BgColor
	if bg == "" {
		bg = model.DefaultTagBgColor
	}

	ts := now.Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, fg_color, bg_color, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, fg, bg, p.OwnerID, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("tag %q: %w", p.Name, ErrConflict)
		}
		return nil, fmt.Errorf("insert tag: %w", err)
	}

	return &model.Tag{
		ID:        id,
		Name:      p.Name,
		FgColor:   fg,
		BgColor:   bg,
		OwnerID:   p.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetTagByName retrieves a tag by owner and name.
func (s *SQLiteStore) GetTagByName(ctx context.Context, ownerID, name string) (*model.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, fg_color, bg_color, owner_id, created_at, updated_at
		 FROM tags WHERE owner_id = ? AND name = ?`, ownerID, name)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTag renames a tag or changes its colors. Empty fields keep
// their current value.
func (s *SQLiteStore) UpdateTag(ctx context.Context, id string, p TagParams) (*model.Tag, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET
			name = CASE WHEN ? = '' THEN name ELSE ? END,
			fg_color = CASE WHEN ? = '' THEN fg_color ELSE ? END,
			bg_color = CASE WHEN ? = '' THEN bg_color ELSE ? END,
			updated_at = ?
		WHERE id = ?`,
		p.Name, p.Name, p.FgColor, p.FgColor, p.BgColor, p.BgColor, now, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("tag %q: %w", p.Name, ErrConflict)
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, fg_color, bg_color, owner_id, created_at, updated_at
		 FROM tags WHERE id = ?`, id)
	t, err := scanTag(row)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTag removes a tag and its assignments.
func (s *SQLiteStore) DeleteTag(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_tags WHERE tag_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// ListTags returns one page of an owner's tags, ordered by name.
func (s *SQLiteStore) ListTags(ctx context.Context, ownerID string, page PageParams) (*TagPage, error) {
	size, number := page.normalize()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, fg_color, bg_color, owner_id, created_at, updated_at
		 FROM tags WHERE owner_id = ? ORDER BY name LIMIT ? OFFSET ?`,
		ownerID, size, (number-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}

	return &TagPage{
		Items:      items,
		PageSize:   size,
		PageNumber: number,
		NumPages:   numPages(total, size),
	}, nil
}

// AssignTags replaces the node's tag set with the named tags, creating
// missing tags with default colors. Assignments key on the node id, so
// folders and documents share the same behavior.
func (s *SQLiteStore) AssignTags(ctx context.Context, nodeID string, names []string) ([]model.Tag, error) {
	node, err := s.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_tags WHERE node_id = ?`, nodeID); err != nil {
		return nil, err
	}

	nowT := time.Now().UTC()
	now := nowT.Format(time.RFC3339)
	var tags []model.Tag
	for _, name := range names {
		row := tx.QueryRowContext(ctx,
			`SELECT id, name, fg_color, bg_color, owner_id, created_at, updated_at
			 FROM tags WHERE owner_id = ? AND name = ?`, node.OwnerID, name)
		t, err := scanTag(row)
		if err == sql.ErrNoRows {
			t = model.Tag{
				ID:        s.newID(),
				Name:      name,
				FgColor:   model.DefaultTagFgColor,
				BgColor:   model.DefaultTagBgColor,
				OwnerID:   node.OwnerID,
				CreatedAt: nowT,
				UpdatedAt: nowT,
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tags (id, name, fg_color, bg_color, owner_id, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.Name, t.FgColor, t.BgColor, t.OwnerID, now, now); err != nil {
				return nil, fmt.Errorf("create tag %q: %w", name, err)
			}
		} else if err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO node_tags (node_id, tag_id, created_at) VALUES (?, ?, ?)`,
			nodeID, t.ID, now); err != nil {
			return nil, fmt.Errorf("assign tag %q: %w", name, err)
		}
		tags = append(tags, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tags, nil
}

// NodeTags returns the tags assigned to a node, ordered by name.
func (s *SQLiteStore) NodeTags(ctx context.Context, nodeID string) ([]model.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.fg_color, t.bg_color, t.owner_id, t.created_at, t.updated_at
		FROM tags t
		JOIN node_tags nt ON nt.tag_id = t.id
		WHERE nt.node_id = ?
		ORDER BY t.name`, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// NodesByTag returns the nodes carrying the named tag.
func (s *SQLiteStore) NodesByTag(ctx context.Context, ownerID, name string) ([]model.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.parent_id, n.kind, n.title, n.owner_id, n.lang, n.created_at, n.updated_at
		FROM nodes n
		JOIN node_tags nt ON nt.node_id = n.id
		JOIN tags t ON t.id = nt.tag_id
		WHERE t.owner_id = ? AND t.name = ?
		ORDER BY n.title`, ownerID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
