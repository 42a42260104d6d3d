package store

import (
	"context"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	root := mkFolder(t, src, nil, "docs")
	doc := mkDoc(t, src, &root.ID, "scan.pdf")
	src.AddVersion(ctx, doc.ID, 2, "")
	src.AssignTags(ctx, doc.ID, []string{"paid"})

	a, err := src.ExportAll(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(a.Nodes) != 2 || len(a.Tags) != 1 || len(a.Versions) != 1 || len(a.Pages) != 2 {
		t.Fatalf("unexpected archive: %d nodes, %d tags, %d versions, %d pages",
			len(a.Nodes), len(a.Tags), len(a.Versions), len(a.Pages))
	}

	dst := newTestStore(t)
	n, err := dst.ImportAll(ctx, a)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 nodes imported, got %d", n)
	}

	got, err := dst.GetNode(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get imported node: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != root.ID {
		t.Error("parent link lost on import")
	}
	if tags, _ := dst.NodeTags(ctx, doc.ID); len(tags) != 1 {
		t.Errorf("expected 1 tag after import, got %d", len(tags))
	}
	if pages, _ := dst.LatestVersionPages(ctx, doc.ID); len(pages) != 2 {
		t.Errorf("expected 2 pages after import, got %d", len(pages))
	}

	// Importing the same archive again changes nothing.
	n, err = dst.ImportAll(ctx, a)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 nodes on re-import, got %d", n)
	}
}

func TestExportOwnerFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mkFolder(t, s, nil, "mine")
	s.CreateNode(ctx, CreateNodeParams{Kind: "folder", Title: "theirs", OwnerID: "u2"})

	a, err := s.ExportAll(ctx, "u1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(a.Nodes) != 1 || a.Nodes[0].Title != "mine" {
		t.Errorf("expected only u1 nodes, got %+v", a.Nodes)
	}
}
