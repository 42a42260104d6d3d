package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paperbase/paperbase/internal/model"
)

// AddVersion appends a new version to a document with pageCount blank
// pages. Version numbers count up from 1.
func (s *SQLiteStore) AddVersion(ctx context.Context, docID string, pageCount int, lang string) (*model.DocumentVersion, error) {
	node, err := s.GetNode(ctx, docID)
	if err != nil {
		return nil, err
	}
	if node.Kind != model.KindDocument {
		return nil, fmt.Errorf("node %s is not a document", docID)
	}
	if pageCount < 0 {
		pageCount = 0
	}
	if lang == "" {
		lang = node.Lang
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var prev sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(number) FROM document_versions WHERE document_id = ?`, docID).Scan(&prev); err != nil {
		return nil, err
	}
	number := int(prev.Int64) + 1

	id := s.newID()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO document_versions (id, document_id, number, lang, page_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, docID, number, lang, pageCount, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}

	for i := 1; i <= pageCount; i++ {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pages (id, version_id, number, lang) VALUES (?, ?, ?, ?)`,
			s.newID(), id, i, lang)
		if err != nil {
			return nil, fmt.Errorf("insert page %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.DocumentVersion{
		ID:         id,
		DocumentID: docID,
		Number:     number,
		Lang:       lang,
		PageCount:  pageCount,
		CreatedAt:  now,
	}, nil
}

// LatestVersion returns the document's most recent version.
func (s *SQLiteStore) LatestVersion(ctx context.Context, docID string) (*model.DocumentVersion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, number, lang, page_count, created_at
		 FROM document_versions WHERE document_id = ?
		 ORDER BY number DESC LIMIT 1`, docID)

	var v model.DocumentVersion
	var createdAt string
	err := row.Scan(&v.ID, &v.DocumentID, &v.Number, &v.Lang, &v.PageCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s has no versions: %w", docID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &v, nil
}

// LatestVersionPages returns the pages of the document's most recent
// version in page order.
func (s *SQLiteStore) LatestVersionPages(ctx context.Context, docID string) ([]model.Page, error) {
	v, err := s.LatestVersion(ctx, docID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version_id, number, text, lang FROM pages
		 WHERE version_id = ? ORDER BY number`, v.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.VersionID, &p.Number, &p.Text, &p.Lang); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// SetPageText stores extracted text for a page.
func (s *SQLiteStore) SetPageText(ctx context.Context, pageID, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET text = ? WHERE id = ?`, text, pageID)
	if err != nil {
		return fmt.Errorf("update page text: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("page %s: %w", pageID, ErrNotFound)
	}
	return nil
}
