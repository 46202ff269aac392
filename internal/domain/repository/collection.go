package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
)

// Collection is a typed view over one collection of a DocumentStore.
type Collection[T any] struct {
	store DocumentStore
	name  string
}

func NewCollection[T any](store DocumentStore, name string) Collection[T] {
	return Collection[T]{store: store, name: name}
}

func (c Collection[T]) Name() string { return c.name }

func (c Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

func (c Collection[T]) Find(ctx context.Context, filter Filter) ([]T, error) {
	docs, err := c.store.Find(ctx, c.name, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := c.decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (c Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.Find(ctx, nil)
}

func (c Collection[T]) Count(ctx context.Context, filter Filter) (int, error) {
	docs, err := c.store.Find(ctx, c.name, filter)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// IDs returns the document ids matching filter without decoding bodies.
func (c Collection[T]) IDs(ctx context.Context, filter Filter) ([]string, error) {
	docs, err := c.store.Find(ctx, c.name, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (c Collection[T]) Insert(ctx context.Context, id string, v *T) error {
	return c.store.Insert(ctx, c.name, id, v)
}

func (c Collection[T]) Replace(ctx context.Context, id string, v *T) error {
	return c.store.Replace(ctx, c.name, id, v)
}

// ReplaceIf is Replace guarded by match, for read-modify-write updates.
func (c Collection[T]) ReplaceIf(ctx context.Context, id string, match Filter, v *T) error {
	return c.store.ReplaceIf(ctx, c.name, id, match, v)
}

func (c Collection[T]) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return c.store.Delete(ctx, c.name, ids...)
}

func (c Collection[T]) decode(d Document) (*T, error) {
	var v T
	if err := json.Unmarshal(d.Body, &v); err != nil {
		return nil, fmt.Errorf("%w: decode %s/%s: %w", domain.ErrInfrastructure, c.name, d.ID, err)
	}
	return &v, nil
}

// Collections groups the typed collections of the marketplace.
type Collections struct {
	Users      Collection[entity.User]
	Stores     Collection[entity.Store]
	Products   Collection[entity.Product]
	Orders     Collection[entity.Order]
	OrderItems Collection[entity.OrderItem]
}

func NewCollections(store DocumentStore) *Collections {
	return &Collections{
		Users:      NewCollection[entity.User](store, UsersCollection),
		Stores:     NewCollection[entity.Store](store, StoresCollection),
		Products:   NewCollection[entity.Product](store, ProductsCollection),
		Orders:     NewCollection[entity.Order](store, OrdersCollection),
		OrderItems: NewCollection[entity.OrderItem](store, OrderItemsCollection),
	}
}
