package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string       `json:"db_path"`
	DBSizeBytes int64        `json:"db_size_bytes"`
	Nodes       int          `json:"nodes"`
	Folders     int          `json:"folders"`
	Documents   int          `json:"documents"`
	Tags        int          `json:"tags"`
	Versions    int          `json:"versions"`
	Pages       int          `json:"pages"`
	Owners      []OwnerStats `json:"owners"`
}

// OwnerStats holds per-owner node counts.
type OwnerStats struct {
	OwnerID   string `json:"owner_id"`
	Nodes     int    `json:"nodes"`
	Documents int    `json:"documents"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&st.Nodes)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE kind = 'folder'`).Scan(&st.Folders)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE kind = 'document'`).Scan(&st.Documents)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&st.Tags)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_versions`).Scan(&st.Versions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&st.Pages)

	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, COUNT(*) as cnt,
		       SUM(CASE kind WHEN 'document' THEN 1 ELSE 0 END) as docs
		FROM nodes GROUP BY owner_id ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var o OwnerStats
		rows.Scan(&o.OwnerID, &o.Nodes, &o.Documents)
		st.Owners = append(st.Owners, o)
	}

	return st, nil
}
