package domain

import "context"

// DocumentStore holds the ordered document collection. Newest first.
type DocumentStore interface {
	// Page returns documents [offset, offset+limit) and the collection size.
	Page(ctx context.Context, offset, limit int) ([]*Document, int, error)

	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Prepend inserts doc at the head of the collection.
	Prepend(ctx context.Context, doc *Document) error

	// AdvanceStatus moves a document from one status to the next. It fails
	// with ErrInvalidRequest when the document is no longer in from.
	AdvanceStatus(ctx context.Context, id string, from, to Status) error

	// OldestUnparsed returns the oldest document that is not parsed yet, or
	// nil when every document is parsed.
	OldestUnparsed(ctx context.Context) (*Document, error)
}

// DetailsStore holds parsed content keyed by document id.
type DetailsStore interface {
	// Get returns the details for id, or nil when none exist.
	Get(ctx context.Context, documentID string) (*DocumentDetails, error)
}

// Cache defines the interface for caching operations
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	CleanExpired(ctx context.Context) error
}
