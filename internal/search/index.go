// Package search is the secondary full-text index kept eventually
// consistent with the primary store. Every call is best-effort: callers log
// failures and carry on.
package search

import (
	"context"
	"fmt"

	"github.com/oggyb/nameless/internal/config"
)

// Collections and their document fields.
const (
	Users = "users"
	Posts = "posts"

	FieldID       = "id"
	FieldUsername = "username"
	FieldTitle    = "title"
)

// Document is the indexed projection of a record.
type Document map[string]any

// Index is the secondary index contract.
type Index interface {
	// Upsert stores doc under id in collection, replacing any previous version.
	Upsert(ctx context.Context, collection, id string, doc Document) error
	// DeleteByMatch removes every document whose field equals value.
	DeleteByMatch(ctx context.Context, collection, field string, value any) error
	// UpdateByMatch sets the fields in set on every document whose field equals value.
	UpdateByMatch(ctx context.Context, collection, field string, value any, set Document) error
	// Search returns document ids ranked by relevance of field to query.
	Search(ctx context.Context, collection, field, query string, limit int) ([]string, error)
	// EnsureCollections creates missing collections with their mappings.
	EnsureCollections(ctx context.Context) error
}

// New returns the index selected by cfg.Search.Backend.
func New(cfg *config.Config) (Index, error) {
	switch cfg.Search.Backend {
	case "", "elastic":
		return NewElastic(cfg)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported SEARCH_BACKEND %q", cfg.Search.Backend)
	}
}
