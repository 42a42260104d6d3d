// Package nodes implements lifecycle operations over the node tree:
// create, rename, move and cascading delete. Every successful mutation
// notifies the search indexer; a failed mutation never does.
package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/paperbase/paperbase/internal/index"
	"github.com/paperbase/paperbase/internal/model"
	"github.com/paperbase/paperbase/internal/store"
)

var (
	// ErrInvalidMove marks a move whose target is the node itself or a
	// node inside its own subtree.
	ErrInvalidMove = errors.New("invalid move")

	// ErrNotFolder marks an attempt to place nodes under a document.
	ErrNotFolder = errors.New("not a folder")

	// ErrInvalidTitle marks an empty, oversized or ill-formed title.
	ErrInvalidTitle = errors.New("invalid title")
)

// forbiddenTitleChars mirror the characters most filesystems reject,
// so exported trees stay portable.
const forbiddenTitleChars = `<>:"/\|?*`

// ValidateTitle rejects titles that are blank, longer than
// model.MaxTitleLen runes, or contain control or reserved characters.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("blank title: %w", ErrInvalidTitle)
	}
	if len([]rune(title)) > model.MaxTitleLen {
		return fmt.Errorf("title longer than %d characters: %w", model.MaxTitleLen, ErrInvalidTitle)
	}
	for _, r := range title {
		if unicode.IsControl(r) || strings.ContainsRune(forbiddenTitleChars, r) {
			return fmt.Errorf("title contains %q: %w", r, ErrInvalidTitle)
		}
	}
	return nil
}

// Manager coordinates tree mutations against the store and fans out
// index notifications after each successful change.
type Manager struct {
	store store.Store
	pub   *index.Publisher
}

// NewManager creates a manager over the given store and publisher.
func NewManager(s store.Store, pub *index.Publisher) *Manager {
	return &Manager{store: s, pub: pub}
}

// CreateParams describe a node to create.
type CreateParams struct {
	ParentID *string // nil places the node at the top level
	Kind     model.NodeKind
	Title    string
	OwnerID  string
	Lang     string
}

// Create validates the title and parent, inserts the node and notifies
// the indexer. The parent, when set, must exist and be a folder.
func (m *Manager) Create(ctx context.Context, p CreateParams) (*model.Node, error) {
	if err := ValidateTitle(p.Title); err != nil {
		return nil, err
	}
	if _, ok := model.ValidKinds[p.Kind]; !ok {
		return nil, fmt.Errorf("unknown node kind %q", p.Kind)
	}
	if p.ParentID != nil {
		parent, err := m.store.GetNode(ctx, *p.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Kind != model.KindFolder {
			return nil, fmt.Errorf("parent %s: %w", parent.ID, ErrNotFolder)
		}
	}

	n, err := m.store.CreateNode(ctx, store.CreateNodeParams{
		ParentID: p.ParentID,
		Kind:     p.Kind,
		Title:    p.Title,
		OwnerID:  p.OwnerID,
		Lang:     p.Lang,
	})
	if err != nil {
		return nil, err
	}
	m.pub.Added(ctx, n.ID)
	return n, nil
}

// Rename changes a node's title after validating it.
func (m *Manager) Rename(ctx context.Context, id, title string) (*model.Node, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	n, err := m.store.Rename(ctx, id, title)
	if err != nil {
		return nil, err
	}
	m.pub.Added(ctx, n.ID)
	return n, nil
}

// Move reparents a node. A nil target moves it to the top level. The
// target must be a folder outside the node's own subtree; moving a
// node into itself or below itself would orphan the whole branch.
func (m *Manager) Move(ctx context.Context, id string, targetID *string) (*model.Node, error) {
	if _, err := m.store.GetNode(ctx, id); err != nil {
		return nil, err
	}
	if targetID != nil {
		if *targetID == id {
			return nil, fmt.Errorf("node %s into itself: %w", id, ErrInvalidMove)
		}
		target, err := m.store.GetNode(ctx, *targetID)
		if err != nil {
			return nil, err
		}
		if target.Kind != model.KindFolder {
			return nil, fmt.Errorf("target %s: %w", target.ID, ErrNotFolder)
		}
		chain, err := m.store.Ancestors(ctx, *targetID, true)
		if err != nil {
			return nil, err
		}
		for _, a := range chain {
			if a.ID == id {
				return nil, fmt.Errorf("node %s into its own subtree: %w", id, ErrInvalidMove)
			}
		}
	}

	n, err := m.store.Reparent(ctx, id, targetID)
	if err != nil {
		return nil, err
	}
	m.pub.Added(ctx, n.ID)
	return n, nil
}

// Delete removes a node and its whole subtree, then tells the indexer
// which entries disappeared in a single message. Returns the number of
// nodes removed.
func (m *Manager) Delete(ctx context.Context, id string) (int, error) {
	cas, err := m.store.DeleteSubtree(ctx, id)
	if err != nil {
		return 0, err
	}
	m.pub.Removed(ctx, cas.IndexIDs)
	return len(cas.NodeIDs), nil
}

// DeleteMany removes several subtrees at once. Roots that are already
// gone are skipped rather than failing the batch, so repeated and
// concurrent deletes of the same nodes stay safe. Returns the number
// of nodes removed.
func (m *Manager) DeleteMany(ctx context.Context, ids []string) (int, error) {
	cas, err := m.store.DeleteSubtrees(ctx, ids)
	if err != nil {
		return 0, err
	}
	m.pub.Removed(ctx, cas.IndexIDs)
	return len(cas.NodeIDs), nil
}
