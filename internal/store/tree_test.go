package store

import (
	"context"
	"errors"
	"testing"

	"github.com/paperbase/paperbase/internal/model"
)

func has(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestAncestorsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	docs := mkFolder(t, s, nil, "docs")
	inbox := mkFolder(t, s, &docs.ID, "inbox")
	leaf := mkDoc(t, s, &inbox.ID, "a.pdf")

	chain, err := s.Ancestors(ctx, leaf.ID, true)
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(chain))
	}
	if chain[0].ID != docs.ID || chain[1].ID != inbox.ID || chain[2].ID != leaf.ID {
		t.Errorf("wrong order: %s %s %s", chain[0].Title, chain[1].Title, chain[2].Title)
	}

	chain, err = s.Ancestors(ctx, leaf.ID, false)
	if err != nil {
		t.Fatalf("ancestors without self: %v", err)
	}
	if len(chain) != 2 || chain[1].ID != inbox.ID {
		t.Errorf("expected [docs inbox], got %d nodes", len(chain))
	}
}

func TestAncestorsOfTopLevel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")

	chain, err := s.Ancestors(ctx, root.ID, true)
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	if len(chain) != 1 || chain[0].ID != root.ID {
		t.Errorf("expected just the node itself, got %d nodes", len(chain))
	}

	chain, _ = s.Ancestors(ctx, root.ID, false)
	if len(chain) != 0 {
		t.Errorf("expected empty chain, got %d nodes", len(chain))
	}
}

func TestAncestorsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Ancestors(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBreadcrumb(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	docs := mkFolder(t, s, nil, "docs")
	leaf := mkDoc(t, s, &docs.ID, "a.pdf")

	crumbs, err := s.Breadcrumb(ctx, leaf.ID)
	if err != nil {
		t.Fatalf("breadcrumb: %v", err)
	}
	if len(crumbs) != 2 || crumbs[0].Title != "docs" || crumbs[1].Title != "a.pdf" {
		t.Errorf("unexpected breadcrumb: %+v", crumbs)
	}
}

func TestDescendants(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	sub := mkFolder(t, s, &root.ID, "inbox")
	d1 := mkDoc(t, s, &root.ID, "a.pdf")
	d2 := mkDoc(t, s, &sub.ID, "b.pdf")
	mkDoc(t, s, nil, "outside.pdf")

	all, err := s.Descendants(ctx, root.ID, true)
	if err != nil {
		t.Fatalf("descendants: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(all))
	}
	if all[0].ID != root.ID {
		t.Error("expected root first")
	}

	ids := make([]string, len(all))
	for i, n := range all {
		ids[i] = n.ID
	}
	for _, want := range []string{root.ID, sub.ID, d1.ID, d2.ID} {
		if !has(ids, want) {
			t.Errorf("missing node %s", want)
		}
	}

	sansSelf, _ := s.Descendants(ctx, root.ID, false)
	if len(sansSelf) != 3 {
		t.Errorf("expected 3 without self, got %d", len(sansSelf))
	}
}

func TestDeleteSubtreeCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	sub := mkFolder(t, s, &root.ID, "inbox")
	doc := mkDoc(t, s, &sub.ID, "scan.pdf")

	// Two versions: the index only tracks pages of the latest one.
	if _, err := s.AddVersion(ctx, doc.ID, 2, ""); err != nil {
		t.Fatalf("add v1: %v", err)
	}
	oldPages, _ := s.LatestVersionPages(ctx, doc.ID)
	if _, err := s.AddVersion(ctx, doc.ID, 3, ""); err != nil {
		t.Fatalf("add v2: %v", err)
	}
	newPages, _ := s.LatestVersionPages(ctx, doc.ID)
	if len(oldPages) != 2 || len(newPages) != 3 {
		t.Fatalf("unexpected page counts: %d, %d", len(oldPages), len(newPages))
	}

	if _, err := s.AssignTags(ctx, doc.ID, []string{"paid"}); err != nil {
		t.Fatalf("assign tags: %v", err)
	}

	cas, err := s.DeleteSubtree(ctx, root.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(cas.NodeIDs) != 3 {
		t.Errorf("expected 3 removed nodes, got %d", len(cas.NodeIDs))
	}
	for _, want := range []string{root.ID, sub.ID, doc.ID} {
		if !has(cas.NodeIDs, want) {
			t.Errorf("missing removed node %s", want)
		}
		if !has(cas.IndexIDs, want) {
			t.Errorf("missing index id %s", want)
		}
	}
	for _, p := range newPages {
		if !has(cas.IndexIDs, p.ID) {
			t.Errorf("missing latest page id %s", p.ID)
		}
	}
	for _, p := range oldPages {
		if has(cas.IndexIDs, p.ID) {
			t.Errorf("old page id %s should not be indexed", p.ID)
		}
	}
	if len(cas.IndexIDs) != 3+len(newPages) {
		t.Errorf("expected %d index ids, got %d", 3+len(newPages), len(cas.IndexIDs))
	}

	// Everything is gone.
	if _, err := s.GetNode(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	st, _ := s.Stats(ctx, "ignored")
	if st.Nodes != 0 || st.Versions != 0 || st.Pages != 0 {
		t.Errorf("expected empty store, got %+v", st)
	}
	if tags, _ := s.NodesByTag(ctx, "u1", "paid"); len(tags) != 0 {
		t.Errorf("expected no tagged nodes, got %d", len(tags))
	}
}

func TestDeleteSubtreeNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.DeleteSubtree(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSubtreesSkipsMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n := mkDoc(t, s, nil, "a.pdf")

	cas, err := s.DeleteSubtrees(ctx, []string{"missing", n.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cas.NodeIDs) != 1 || cas.NodeIDs[0] != n.ID {
		t.Errorf("expected just %s removed, got %v", n.ID, cas.NodeIDs)
	}
}

func TestDeleteSubtreesOverlapping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	child := mkDoc(t, s, &root.ID, "a.pdf")

	// The child is inside the root's subtree; it must be counted once.
	cas, err := s.DeleteSubtrees(ctx, []string{child.ID, root.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cas.NodeIDs) != 2 {
		t.Errorf("expected 2 removed nodes, got %v", cas.NodeIDs)
	}
}

func TestDeleteLeavesSiblingsAlone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	gone := mkFolder(t, s, &root.ID, "old")
	mkDoc(t, s, &gone.ID, "x.pdf")
	keep := mkDoc(t, s, &root.ID, "keep.pdf")

	if _, err := s.DeleteSubtree(ctx, gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetNode(ctx, keep.ID); err != nil {
		t.Errorf("sibling should survive: %v", err)
	}
	if _, err := s.GetNode(ctx, root.ID); err != nil {
		t.Errorf("parent should survive: %v", err)
	}
}

func TestDescendantsLargeFanout(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	for i := 0; i < 25; i++ {
		sub := mkFolder(t, s, &root.ID, "sub-"+string(rune('a'+i)))
		mkDoc(t, s, &sub.ID, "doc.pdf")
	}

	all, err := s.Descendants(ctx, root.ID, false)
	if err != nil {
		t.Fatalf("descendants: %v", err)
	}
	if len(all) != 50 {
		t.Errorf("expected 50 nodes, got %d", len(all))
	}

	cas, err := s.DeleteSubtree(ctx, root.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cas.NodeIDs) != 51 {
		t.Errorf("expected 51 removed, got %d", len(cas.NodeIDs))
	}
}

func TestDescendantsKindMix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root := mkFolder(t, s, nil, "docs")
	mkDoc(t, s, &root.ID, "a.pdf")
	mkFolder(t, s, &root.ID, "sub")

	all, _ := s.Descendants(ctx, root.ID, true)
	var folders, docs int
	for _, n := range all {
		switch n.Kind {
		case model.KindFolder:
			folders++
		case model.KindDocument:
			docs++
		}
	}
	if folders != 2 || docs != 1 {
		t.Errorf("expected 2 folders and 1 document, got %d and %d", folders, docs)
	}
}

func TestTraversalDetectsCycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := mkFolder(t, s, nil, "a")
	b := mkFolder(t, s, &a.ID, "b")

	// Corrupt the parent links behind the store's back: a <-> b.
	if _, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET parent_id = ? WHERE id = ?`, b.ID, a.ID); err != nil {
		t.Fatalf("corrupt parent link: %v", err)
	}

	if _, err := s.Ancestors(ctx, b.ID, true); !errors.Is(err, ErrCycle) {
		t.Errorf("ancestors: expected ErrCycle, got %v", err)
	}
	if _, err := s.Descendants(ctx, a.ID, true); !errors.Is(err, ErrCycle) {
		t.Errorf("descendants: expected ErrCycle, got %v", err)
	}
	if _, err := s.DeleteSubtree(ctx, a.ID); !errors.Is(err, ErrCycle) {
		t.Errorf("delete: expected ErrCycle, got %v", err)
	}
}
