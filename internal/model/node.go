// Package model defines the core node tree data types.
package model

import "time"

// NodeKind discriminates folders from documents. It is fixed when a
// node is created and never changes afterwards.
type NodeKind string

const (
	KindFolder   NodeKind = "folder"
	KindDocument NodeKind = "document"
)

// Node is one entry in the hierarchy. A nil ParentID places the node at
// the top level of its owner's tree.
type Node struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Kind      NodeKind  `json:"kind"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	Lang      string    `json:"lang"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Crumb is one step of a node's path, ordered top level first.
type Crumb struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Tag labels nodes. Names are unique per owner; the same tag row serves
// folders and documents alike.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FgColor   string    `json:"fg_color"`
	BgColor   string    `json:"bg_color"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentVersion is one immutable revision of a document. Numbers
// count up from 1; the highest number is the current revision.
type DocumentVersion struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Number     int       `json:"number"`
	Lang       string    `json:"lang"`
	PageCount  int       `json:"page_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Page belongs to a document version. The pages of the current version
// are what the search index tracks for a document.
type Page struct {
	ID        string `json:"id"`
	VersionID string `json:"version_id"`
	Number    int    `json:"number"`
	Text      string `json:"text,omitempty"`
	Lang      string `json:"lang"`
}

// DefaultLang is used when a node is created without a language.
const DefaultLang = "deu"

// Default colors applied to tags created without explicit ones.
const (
	DefaultTagFgColor = "#ffffff"
	DefaultTagBgColor = "#c41fff"
)

// MaxTitleLen is the longest allowed node title, in runes.
const MaxTitleLen = 200

// ValidKinds are the allowed node kinds.
var ValidKinds = map[NodeKind]bool{
	KindFolder:   true,
	KindDocument: true,
}
