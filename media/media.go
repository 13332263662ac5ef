// Package media stores binary attachments (author photos, book covers, book
// PDFs) outside the primary database and resolves stored references to
// retrieval URLs.
package media

import (
	"context"
	"io"
)

// Kind selects the storage path for an attachment. Images may be transformed
// by the backing store; documents are stored byte-exact.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Store is the contract the handlers are wired against. ResolveURL never
// fails: an absent or unresolvable key yields "", and serialization degrades
// to a null URL.
type Store interface {
	Store(ctx context.Context, kind Kind, filename string, body io.Reader, contentType string) (string, error)
	ResolveURL(ctx context.Context, key string) string
	Delete(ctx context.Context, key string) error
}
