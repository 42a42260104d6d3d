package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/paperbase/paperbase/internal/model"
)

func TestListChildrenFoldersFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	mkDoc(t, s, &root.ID, "alpha.pdf")
	mkFolder(t, s, &root.ID, "zeta")
	mkDoc(t, s, &root.ID, "beta.pdf")

	page, err := s.ListChildren(ctx, ChildrenParams{ParentID: &root.ID, OwnerID: "u1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 children, got %d", len(page.Items))
	}
	if page.Items[0].Kind != model.KindFolder {
		t.Errorf("expected folder first, got %s %q", page.Items[0].Kind, page.Items[0].Title)
	}
	if page.Items[1].Title != "alpha.pdf" || page.Items[2].Title != "beta.pdf" {
		t.Errorf("documents out of order: %q, %q", page.Items[1].Title, page.Items[2].Title)
	}
}

func TestListChildrenTopLevel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mkFolder(t, s, nil, "mine")
	s.CreateNode(ctx, CreateNodeParams{Kind: model.KindFolder, Title: "theirs", OwnerID: "u2"})

	page, err := s.ListChildren(ctx, ChildrenParams{OwnerID: "u1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "mine" {
		t.Errorf("expected only the owner's top-level nodes, got %+v", page.Items)
	}
}

func TestListChildrenPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	for i := 0; i < 7; i++ {
		mkDoc(t, s, &root.ID, fmt.Sprintf("doc-%d.pdf", i))
	}

	page, err := s.ListChildren(ctx, ChildrenParams{
		ParentID: &root.ID, OwnerID: "u1", Page: PageParams{Number: 2, Size: 3},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.NumPages != 3 || page.PageNumber != 2 {
		t.Errorf("unexpected paging: %+v", page)
	}
	if len(page.Items) != 3 || page.Items[0].Title != "doc-3.pdf" {
		t.Errorf("unexpected second page: %+v", page.Items)
	}

	last, _ := s.ListChildren(ctx, ChildrenParams{
		ParentID: &root.ID, OwnerID: "u1", Page: PageParams{Number: 3, Size: 3},
	})
	if len(last.Items) != 1 {
		t.Errorf("expected 1 item on last page, got %d", len(last.Items))
	}
}
