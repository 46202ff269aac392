package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
	"github.com/oksasatya/delivery-marketplace/internal/infrastructure/memory"
)

var (
	fixedNow    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	errStoreOut = errors.New("connection reset")
)

func fixedClock() time.Time { return fixedNow }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// flakyStore wraps the memory store and fails chosen operations.
type flakyStore struct {
	*memory.DocumentStore
	failFind   map[string]bool
	failDelete map[string]bool
	// failInsertAfter fails inserts into a collection once n have succeeded
	failInsertAfter map[string]int
	inserted        map[string]int
	// beforeReplaceIf runs once ahead of the next guarded replace
	beforeReplaceIf func()
	mu              sync.Mutex
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		DocumentStore:   memory.NewDocumentStore(),
		failFind:        map[string]bool{},
		failDelete:      map[string]bool{},
		failInsertAfter: map[string]int{},
		inserted:        map[string]int{},
	}
}

func (s *flakyStore) Find(ctx context.Context, collection string, f repo.Filter) ([]repo.Document, error) {
	if s.failFind[collection] {
		return nil, domain.Infra("find "+collection, errStoreOut)
	}
	return s.DocumentStore.Find(ctx, collection, f)
}

func (s *flakyStore) Delete(ctx context.Context, collection string, ids ...string) (int, error) {
	if s.failDelete[collection] {
		return 0, domain.Infra("delete "+collection, errStoreOut)
	}
	return s.DocumentStore.Delete(ctx, collection, ids...)
}

func (s *flakyStore) Insert(ctx context.Context, collection, id string, doc any) error {
	s.mu.Lock()
	limit, ok := s.failInsertAfter[collection]
	if ok && s.inserted[collection] >= limit {
		s.mu.Unlock()
		return domain.Infra("insert "+collection, errStoreOut)
	}
	s.inserted[collection]++
	s.mu.Unlock()
	return s.DocumentStore.Insert(ctx, collection, id, doc)
}

func (s *flakyStore) ReplaceIf(ctx context.Context, collection, id string, match repo.Filter, doc any) error {
	s.mu.Lock()
	hook := s.beforeReplaceIf
	s.beforeReplaceIf = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s.DocumentStore.ReplaceIf(ctx, collection, id, match, doc)
}

type fixture struct {
	t    *testing.T
	ctx  context.Context
	db   *flakyStore
	cols *repo.Collections
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newFlakyStore()
	return &fixture{t: t, ctx: context.Background(), db: s, cols: repo.NewCollections(s)}
}

func (f *fixture) user(id string, role entity.Role, onboarded bool) *entity.User {
	f.t.Helper()
	u := &entity.User{ID: id, Email: id + "@example.com", Name: id, Role: role, Onboarded: onboarded, CreatedAt: fixedNow}
	require.NoError(f.t, f.cols.Users.Insert(f.ctx, id, u))
	return u
}

func (f *fixture) store(id, owner string) *entity.Store {
	f.t.Helper()
	st := &entity.Store{ID: id, UserID: owner, Name: id, IsActive: true, IsApproved: true, CreatedAt: fixedNow}
	require.NoError(f.t, f.cols.Stores.Insert(f.ctx, id, st))
	return st
}

func (f *fixture) product(id, storeID string, price float64, stock int) *entity.Product {
	f.t.Helper()
	p := &entity.Product{ID: id, StoreID: storeID, Name: id, Price: price, Stock: stock, CreatedAt: fixedNow}
	require.NoError(f.t, f.cols.Products.Insert(f.ctx, id, p))
	return p
}

func (f *fixture) order(id, userID, storeID string, status entity.OrderStatus) *entity.Order {
	f.t.Helper()
	o := &entity.Order{ID: id, UserID: userID, StoreID: storeID, Status: status, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(f.t, f.cols.Orders.Insert(f.ctx, id, o))
	return o
}

func (f *fixture) item(id, orderID string) {
	f.t.Helper()
	it := &entity.OrderItem{ID: id, OrderID: orderID, ProductName: "x", Price: 1, Quantity: 1}
	require.NoError(f.t, f.cols.OrderItems.Insert(f.ctx, id, it))
}

func (f *fixture) ids(c interface {
	IDs(context.Context, repo.Filter) ([]string, error)
}) []string {
	f.t.Helper()
	ids, err := c.IDs(f.ctx, nil)
	require.NoError(f.t, err)
	return ids
}

type fakeIndex struct {
	indexed []string
	removed []string
	err     error
}

func (i *fakeIndex) Index(_ context.Context, p *entity.Product) error {
	i.indexed = append(i.indexed, p.ID)
	return i.err
}

func (i *fakeIndex) Remove(_ context.Context, ids ...string) error {
	i.removed = append(i.removed, ids...)
	return i.err
}

func (i *fakeIndex) Search(_ context.Context, q string, _ int) ([]map[string]any, error) {
	if i.err != nil {
		return nil, i.err
	}
	return []map[string]any{{"name": q}}, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, body)
	return p.err
}
