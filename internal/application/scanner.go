package application

import (
	"context"
	"sort"

	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

// ScanReport lists, per entity type, the records whose parent reference does
// not resolve. Ids are sorted.
type ScanReport struct {
	Stores     []string `json:"stores"`
	Products   []string `json:"products"`
	Orders     []string `json:"orders"`
	OrderItems []string `json:"order_items"`
}

func (r *ScanReport) Total() int {
	return len(r.Stores) + len(r.Products) + len(r.Orders) + len(r.OrderItems)
}

func (r *ScanReport) Empty() bool { return r.Total() == 0 }

// Scanner walks Users -> Stores -> Products and Users+Stores -> Orders ->
// OrderItems and classifies dangling records. It never writes.
type Scanner struct {
	Users      repo.Collection[entity.User]
	Stores     repo.Collection[entity.Store]
	Products   repo.Collection[entity.Product]
	Orders     repo.Collection[entity.Order]
	OrderItems repo.Collection[entity.OrderItem]
}

func NewScanner(cols *repo.Collections) *Scanner {
	return &Scanner{
		Users:      cols.Users,
		Stores:     cols.Stores,
		Products:   cols.Products,
		Orders:     cols.Orders,
		OrderItems: cols.OrderItems,
	}
}

// snapshot is one consistent-enough read of all five collections.
type snapshot struct {
	users      []entity.User
	stores     []entity.Store
	products   []entity.Product
	orders     []entity.Order
	orderItems []entity.OrderItem
}

// Scan reads every collection first and only then classifies, so a failed
// read yields an error and no report at all.
func (s *Scanner) Scan(ctx context.Context) (*ScanReport, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.orphans(), nil
}

// Preview returns the flat scan and, from the same read, everything an
// apply run would delete once removals cascade down the hierarchy.
func (s *Scanner) Preview(ctx context.Context) (flat, cascade *ScanReport, err error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap.orphans(), snap.cascade(), nil
}

func (snap *snapshot) orphans() *ScanReport {
	users := userIDs(snap.users)
	stores := storeIDs(snap.stores)
	orders := orderIDs(snap.orders)
	return &ScanReport{
		Stores:     orphanStores(users, snap.stores),
		Products:   orphanProducts(stores, snap.products),
		Orders:     orphanOrders(users, stores, snap.orders),
		OrderItems: orphanOrderItems(orders, snap.orderItems),
	}
}

// cascade follows the apply order: stores, then products and orders of the
// surviving stores, then items of the surviving orders.
func (snap *snapshot) cascade() *ScanReport {
	users := userIDs(snap.users)
	deadStores := orphanStores(users, snap.stores)
	liveStores := storeIDs(snap.stores).without(deadStores)
	deadOrders := orphanOrders(users, liveStores, snap.orders)
	liveOrders := orderIDs(snap.orders).without(deadOrders)
	return &ScanReport{
		Stores:     nonNil(deadStores),
		Products:   nonNil(orphanProducts(liveStores, snap.products)),
		Orders:     nonNil(deadOrders),
		OrderItems: nonNil(orphanOrderItems(liveOrders, snap.orderItems)),
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (s *Scanner) read(ctx context.Context) (*snapshot, error) {
	var (
		snap snapshot
		err  error
	)
	if snap.users, err = s.Users.All(ctx); err != nil {
		return nil, err
	}
	if snap.stores, err = s.Stores.All(ctx); err != nil {
		return nil, err
	}
	if snap.products, err = s.Products.All(ctx); err != nil {
		return nil, err
	}
	if snap.orders, err = s.Orders.All(ctx); err != nil {
		return nil, err
	}
	if snap.orderItems, err = s.OrderItems.All(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// without returns a copy of s minus ids.
func (s idSet) without(ids []string) idSet {
	out := make(idSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, id := range ids {
		delete(out, id)
	}
	return out
}

func userIDs(users []entity.User) idSet {
	set := make(idSet, len(users))
	for _, u := range users {
		set[u.ID] = struct{}{}
	}
	return set
}

func storeIDs(stores []entity.Store) idSet {
	set := make(idSet, len(stores))
	for _, st := range stores {
		set[st.ID] = struct{}{}
	}
	return set
}

func orderIDs(orders []entity.Order) idSet {
	set := make(idSet, len(orders))
	for _, o := range orders {
		set[o.ID] = struct{}{}
	}
	return set
}

func orphanStores(users idSet, stores []entity.Store) []string {
	var out []string
	for _, st := range stores {
		if !users.has(st.UserID) {
			out = append(out, st.ID)
		}
	}
	return sorted(out)
}

func orphanProducts(stores idSet, products []entity.Product) []string {
	var out []string
	for _, p := range products {
		if !stores.has(p.StoreID) {
			out = append(out, p.ID)
		}
	}
	return sorted(out)
}

func orphanOrders(users, stores idSet, orders []entity.Order) []string {
	var out []string
	for _, o := range orders {
		if !users.has(o.UserID) || !stores.has(o.StoreID) {
			out = append(out, o.ID)
		}
	}
	return sorted(out)
}

func orphanOrderItems(orders idSet, items []entity.OrderItem) []string {
	var out []string
	for _, it := range items {
		if !orders.has(it.OrderID) {
			out = append(out, it.ID)
		}
	}
	return sorted(out)
}

// itemsOf returns the ids of items that belong to one of orders.
func itemsOf(orders idSet, items []entity.OrderItem) []string {
	var out []string
	for _, it := range items {
		if orders.has(it.OrderID) {
			out = append(out, it.ID)
		}
	}
	return sorted(out)
}

func sorted(ids []string) []string {
	sort.Strings(ids)
	return ids
}
