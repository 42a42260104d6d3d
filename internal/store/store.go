// Package store provides the node tree storage interface and SQLite
// implementation.
package store

import (
	"context"
	"errors"

	"github.com/paperbase/paperbase/internal/model"
)

// Sentinel errors returned by store operations. Callers match them with
// errors.Is across any wrapping.
var (
	// ErrNotFound is returned when a node, tag, version or page does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness rule,
	// such as two siblings sharing a title for the same owner.
	ErrConflict = errors.New("conflict")

	// ErrCycle is returned when a traversal revisits a node. A healthy
	// tree never produces it; it guards against corrupt parent links.
	ErrCycle = errors.New("cycle detected")
)

// CreateNodeParams holds parameters for inserting a node.
type CreateNodeParams struct {
	ParentID *string // nil places the node at the top level
	Kind     model.NodeKind
	Title    string
	OwnerID  string
	Lang     string // empty means model.DefaultLang
}

// PageParams selects one page of a listing.
type PageParams struct {
	Number int // 1-based, default 1
	Size   int // default 20
}

func (p PageParams) normalize() (size, number int) {
	size = p.Size
	if size <= 0 {
		size = 20
	}
	number = p.Number
	if number <= 0 {
		number = 1
	}
	return size, number
}

func numPages(total, size int) int {
	if total == 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Store defines the node tree storage interface.
type Store interface {
	// CreateNode inserts a new node. A set parent must already exist.
	CreateNode(ctx context.Context, p CreateNodeParams) (*model.Node, error)

	// GetNode retrieves a node by id.
	GetNode(ctx context.Context, id string) (*model.Node, error)

	// Rename changes a node's title and returns the updated node.
	Rename(ctx context.Context, id, title string) (*model.Node, error)

	// Reparent attaches a node under a new parent (nil for top level)
	// and returns the updated node.
	Reparent(ctx context.Context, id string, parentID *string) (*model.Node, error)

	// Ancestors returns the chain from the top level down to the node.
	Ancestors(ctx context.Context, id string, includeSelf bool) ([]model.Node, error)

	// Descendants returns every node in the subtree rooted at id.
	Descendants(ctx context.Context, id string, includeSelf bool) ([]model.Node, error)

	// DeleteSubtree removes the node and everything below it. The
	// returned cascade lists the removed rows and the ids the search
	// index tracks for them.
	DeleteSubtree(ctx context.Context, id string) (*Cascade, error)

	// DeleteSubtrees removes several subtrees in one transaction,
	// skipping roots that no longer exist.
	DeleteSubtrees(ctx context.Context, ids []string) (*Cascade, error)

	// Close closes the store.
	Close() error
}
