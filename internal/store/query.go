package store

import (
	"context"

	"github.com/paperbase/paperbase/internal/model"
)

// ChildrenParams selects a node's direct children.
type ChildrenParams struct {
	ParentID *string // nil lists the owner's top-level nodes
	OwnerID  string
	Page     PageParams
}

// NodePage is one page of a node listing.
type NodePage struct {
	Items      []model.Node `json:"items"`
	PageSize   int          `json:"page_size"`
	PageNumber int          `json:"page_number"`
	NumPages   int          `json:"num_pages"`
}

// ListChildren returns the direct children of a parent, folders first,
// then titles alphabetically.
func (s *SQLiteStore) ListChildren(ctx context.Context, p ChildrenParams) (*NodePage, error) {
	size, number := p.Page.normalize()

	where := "parent_id IS NULL AND owner_id = ?"
	args := []interface{}{p.OwnerID}
	if p.ParentID != nil {
		where = "parent_id = ?"
		args = []interface{}{*p.ParentID}
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes WHERE `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := `SELECT id, parent_id, kind, title, owner_id, lang, created_at, updated_at
		 FROM nodes WHERE ` + where + `
		 ORDER BY CASE kind WHEN 'folder' THEN 0 ELSE 1 END, title
		 LIMIT ? OFFSET ?`
	args = append(args, size, (number-1)*size)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return &NodePage{
		Items:      items,
		PageSize:   size,
		PageNumber: number,
		NumPages:   numPages(total, size),
	}, nil
}
