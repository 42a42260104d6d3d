package store

import (
	"context"
	"errors"
	"testing"
)

func TestAddVersionNumbering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := mkDoc(t, s, nil, "scan.pdf")

	v1, err := s.AddVersion(ctx, doc.ID, 2, "")
	if err != nil {
		t.Fatalf("add v1: %v", err)
	}
	if v1.Number != 1 || v1.PageCount != 2 {
		t.Errorf("unexpected v1: %+v", v1)
	}

	v2, err := s.AddVersion(ctx, doc.ID, 3, "eng")
	if err != nil {
		t.Fatalf("add v2: %v", err)
	}
	if v2.Number != 2 || v2.Lang != "eng" {
		t.Errorf("unexpected v2: %+v", v2)
	}

	latest, err := s.LatestVersion(ctx, doc.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != v2.ID {
		t.Errorf("expected latest %s, got %s", v2.ID, latest.ID)
	}
}

func TestAddVersionOnFolder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	folder := mkFolder(t, s, nil, "docs")
	if _, err := s.AddVersion(ctx, folder.ID, 1, ""); err == nil {
		t.Error("expected error adding version to a folder")
	}
}

func TestAddVersionMissingDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.AddVersion(ctx, "missing", 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestVersionPagesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := mkDoc(t, s, nil, "scan.pdf")
	s.AddVersion(ctx, doc.ID, 3, "")

	pages, err := s.LatestVersionPages(ctx, doc.ID)
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d has number %d", i, p.Number)
		}
		if p.Lang != "deu" {
			t.Errorf("expected inherited lang deu, got %q", p.Lang)
		}
	}
}

func TestLatestVersionNone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := mkDoc(t, s, nil, "empty.pdf")
	if _, err := s.LatestVersion(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetPageText(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := mkDoc(t, s, nil, "scan.pdf")
	s.AddVersion(ctx, doc.ID, 1, "")
	pages, _ := s.LatestVersionPages(ctx, doc.ID)

	if err := s.SetPageText(ctx, pages[0].ID, "hello world"); err != nil {
		t.Fatalf("set text: %v", err)
	}

	pages, _ = s.LatestVersionPages(ctx, doc.ID)
	if pages[0].Text != "hello world" {
		t.Errorf("expected text to persist, got %q", pages[0].Text)
	}

	if err := s.SetPageText(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
