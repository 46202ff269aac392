package repository

import (
	"context"
	"encoding/json"
)

// Collection names.
const (
	UsersCollection      = "users"
	StoresCollection     = "stores"
	ProductsCollection   = "products"
	OrdersCollection     = "orders"
	OrderItemsCollection = "order_items"
)

// Filter matches documents whose top-level JSON fields equal the given values.
// An empty filter matches the whole collection.
type Filter map[string]any

// Document is a stored record in its raw JSON form.
type Document struct {
	ID   string
	Body json.RawMessage
}

// DocumentStore is a schema-less store with collection-scoped CRUD.
// It enforces no references between collections and offers no transaction
// spanning more than one call.
type DocumentStore interface {
	// Insert stores doc under id. Returns a domain.ErrConflict error if the id exists.
	Insert(ctx context.Context, collection, id string, doc any) error
	// Get returns the document with id or a domain.ErrNotFound error.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Replace overwrites an existing document or returns a domain.ErrNotFound error.
	Replace(ctx context.Context, collection, id string, doc any) error
	// ReplaceIf overwrites the document only while its stored fields still
	// equal match. A mismatch returns a domain.ErrConflict error.
	ReplaceIf(ctx context.Context, collection, id string, match Filter, doc any) error
	// Delete removes the given ids and returns how many existed. Unknown ids are ignored.
	Delete(ctx context.Context, collection string, ids ...string) (int, error)
	// Find returns matching documents ordered by creation.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
}
