package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/paperbase/paperbase/internal/model"
)

func TestCreateTagDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tag, err := s.CreateTag(ctx, TagParams{Name: "paid", OwnerID: "u1"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if tag.FgColor != model.DefaultTagFgColor || tag.BgColor != model.DefaultTagBgColor {
		t.Errorf("expected default colors, got %s/%s", tag.FgColor, tag.BgColor)
	}

	got, err := s.GetTagByName(ctx, "u1", "paid")
	if err != nil {
		t.Fatalf("get tag: %v", err)
	}
	if got.ID != tag.ID {
		t.Errorf("expected id %s, got %s", tag.ID, got.ID)
	}
}

func TestTagNameConflictPerOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.CreateTag(ctx, TagParams{Name: "urgent", OwnerID: "u1"})

	if _, err := s.CreateTag(ctx, TagParams{Name: "urgent", OwnerID: "u1"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if _, err := s.CreateTag(ctx, TagParams{Name: "urgent", OwnerID: "u2"}); err != nil {
		t.Errorf("other owner should be fine, got %v", err)
	}
}

func TestAssignTagsSharedAcrossKinds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	folder := mkFolder(t, s, nil, "invoices")
	doc := mkDoc(t, s, nil, "march.pdf")

	if _, err := s.AssignTags(ctx, doc.ID, []string{"paid"}); err != nil {
		t.Fatalf("assign to document: %v", err)
	}
	if _, err := s.AssignTags(ctx, folder.ID, []string{"paid"}); err != nil {
		t.Fatalf("assign to folder: %v", err)
	}

	// Both assignments point at the same tag row.
	docTags, _ := s.NodeTags(ctx, doc.ID)
	folderTags, _ := s.NodeTags(ctx, folder.ID)
	if len(docTags) != 1 || len(folderTags) != 1 {
		t.Fatalf("expected one tag each, got %d and %d", len(docTags), len(folderTags))
	}
	if docTags[0].ID != folderTags[0].ID {
		t.Error("expected the same tag row for both kinds")
	}

	nodes, _ := s.NodesByTag(ctx, "u1", "paid")
	if len(nodes) != 2 {
		t.Errorf("expected 2 tagged nodes, got %d", len(nodes))
	}
}

func TestAssignTagsReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := mkDoc(t, s, nil, "a.pdf")

	s.AssignTags(ctx, doc.ID, []string{"a", "b"})
	s.AssignTags(ctx, doc.ID, []string{"b", "c"})

	tags, _ := s.NodeTags(ctx, doc.ID)
	if len(tags) != 2 || tags[0].Name != "b" || tags[1].Name != "c" {
		t.Errorf("expected [b c], got %+v", tags)
	}

	// Replacing an assignment never deletes the tag itself.
	if _, err := s.GetTagByName(ctx, "u1", "a"); err != nil {
		t.Errorf("tag a should still exist: %v", err)
	}

	s.AssignTags(ctx, doc.ID, nil)
	tags, _ = s.NodeTags(ctx, doc.ID)
	if len(tags) != 0 {
		t.Errorf("expected no tags after clearing, got %d", len(tags))
	}
}

func TestAssignTagsMissingNode(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.AssignTags(ctx, "missing", []string{"x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTag(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tag, _ := s.CreateTag(ctx, TagParams{Name: "todo", OwnerID: "u1"})

	got, err := s.UpdateTag(ctx, tag.ID, TagParams{Name: "done", BgColor: "#00ff00"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "done" || got.BgColor != "#00ff00" {
		t.Errorf("unexpected tag: %+v", got)
	}
	if got.FgColor != model.DefaultTagFgColor {
		t.Errorf("fg color should be unchanged, got %s", got.FgColor)
	}

	if _, err := s.UpdateTag(ctx, "missing", TagParams{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTagClearsAssignments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := mkDoc(t, s, nil, "a.pdf")
	s.AssignTags(ctx, doc.ID, []string{"gone"})
	tag, _ := s.GetTagByName(ctx, "u1", "gone")

	if err := s.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	tags, _ := s.NodeTags(ctx, doc.ID)
	if len(tags) != 0 {
		t.Errorf("expected no tags, got %d", len(tags))
	}
	if err := s.DeleteTag(ctx, tag.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTagsPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		s.CreateTag(ctx, TagParams{Name: fmt.Sprintf("tag-%d", i), OwnerID: "u1"})
	}
	s.CreateTag(ctx, TagParams{Name: "other", OwnerID: "u2"})

	page, err := s.ListTags(ctx, "u1", PageParams{Number: 1, Size: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.NumPages != 3 || page.PageSize != 2 || len(page.Items) != 2 {
		t.Errorf("unexpected page: %+v", page)
	}

	last, _ := s.ListTags(ctx, "u1", PageParams{Number: 3, Size: 2})
	if len(last.Items) != 1 {
		t.Errorf("expected 1 item on last page, got %d", len(last.Items))
	}

	empty, _ := s.ListTags(ctx, "nobody", PageParams{})
	if empty.NumPages != 0 || len(empty.Items) != 0 {
		t.Errorf("expected empty listing, got %+v", empty)
	}
}
