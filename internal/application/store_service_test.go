package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
)

func newStoreService(f *fixture, idx ProductIndex) *StoreService {
	s := NewStoreService(f.cols, idx, quietLogger())
	s.Now = fixedClock
	return s
}

func TestStoreCapCountsExistingStores(t *testing.T) {
	f := newFixture(t)
	owner := f.user("o1", entity.RoleOwner, true)
	svc := newStoreService(f, nil)

	var last *entity.Store
	for i := 0; i < entity.MaxStoresPerOwner; i++ {
		st, err := svc.Create(f.ctx, owner, CreateStoreInput{Name: "Shop"})
		require.NoError(t, err)
		assert.True(t, st.IsActive)
		assert.False(t, st.IsApproved)
		last = st
	}
	_, err := svc.Create(f.ctx, owner, CreateStoreInput{Name: "One too many"})
	assert.ErrorIs(t, err, entity.ErrStoreLimitReached)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Delete(f.ctx, owner, last.ID)
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, owner, CreateStoreInput{Name: "Replacement"})
	assert.NoError(t, err, "a deleted store frees its slot")
}

func TestStoreCapHoldsUnderConcurrentCreates(t *testing.T) {
	f := newFixture(t)
	owner := f.user("o1", entity.RoleOwner, true)
	svc := newStoreService(f, nil)
	for i := 0; i < entity.MaxStoresPerOwner-1; i++ {
		_, err := svc.Create(f.ctx, owner, CreateStoreInput{Name: "Shop"})
		require.NoError(t, err)
	}

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(f.ctx, owner, CreateStoreInput{Name: "Racer"})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, entity.ErrStoreLimitReached)
	}
	assert.Equal(t, 1, won)
	n, err := f.cols.Stores.Count(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxStoresPerOwner, n)
}

func TestStoreCreateRequiresManager(t *testing.T) {
	f := newFixture(t)
	svc := newStoreService(f, nil)

	_, err := svc.Create(f.ctx, f.user("c", entity.RoleCustomer, true), CreateStoreInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotStoreManager)
	_, err = svc.Create(f.ctx, f.user("o", entity.RoleOwner, false), CreateStoreInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotStoreManager, "owner must be onboarded")
	_, err = svc.Create(f.ctx, f.user("o2", entity.RoleOwner, true), CreateStoreInput{Name: "  "})
	assert.ErrorIs(t, err, entity.ErrStoreNameRequired)
}

func TestStoreDeleteCascadesProducts(t *testing.T) {
	f := newFixture(t)
	owner := f.user("o1", entity.RoleOwner, true)
	other := f.user("o2", entity.RoleOwner, true)
	f.store("s1", "o1")
	f.store("s2", "o1")
	f.product("p1", "s1", 1, 1)
	f.product("p2", "s1", 1, 1)
	f.product("p3", "s2", 1, 1)
	idx := &fakeIndex{}
	svc := newStoreService(f, idx)

	_, err := svc.Delete(f.ctx, other, "s1")
	assert.ErrorIs(t, err, ErrNotStoreManager)

	removed, err := svc.Delete(f.ctx, owner, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"s2"}, f.ids(f.cols.Stores))
	assert.Equal(t, []string{"p3"}, f.ids(f.cols.Products))
	assert.Equal(t, []string{"p1", "p2"}, idx.removed)

	_, err = svc.Delete(f.ctx, owner, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetApprovalAdminOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.user("o1", entity.RoleOwner, true)
	admin := f.user("a1", entity.RoleAdmin, true)
	st := f.store("s1", "o1")
	svc := newStoreService(f, nil)

	_, err := svc.SetApproval(f.ctx, owner, st.ID, false)
	assert.ErrorIs(t, err, ErrAdminOnly)

	out, err := svc.SetApproval(f.ctx, admin, st.ID, false)
	require.NoError(t, err)
	assert.False(t, out.IsApproved)
	assert.False(t, out.AcceptsOrders())
}

type fakeImages struct{ paths []string }

func (i *fakeImages) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	i.paths = append(i.paths, objectPath)
	return "https://cdn.example.com/" + objectPath, nil
}

func TestProductService(t *testing.T) {
	f := newFixture(t)
	owner := f.user("o1", entity.RoleOwner, true)
	other := f.user("o2", entity.RoleOwner, true)
	admin := f.user("a1", entity.RoleAdmin, true)
	f.store("s1", "o1")
	idx := &fakeIndex{}
	images := &fakeImages{}
	svc := NewProductService(f.cols, idx, images, quietLogger())
	svc.Now = fixedClock

	_, err := svc.Create(f.ctx, other, "s1", CreateProductInput{Name: "Tea", Price: 1})
	assert.ErrorIs(t, err, ErrNotStoreManager)
	_, err = svc.Create(f.ctx, owner, "s1", CreateProductInput{Name: "Tea", Price: 0})
	assert.ErrorIs(t, err, entity.ErrInvalidPrice)

	p, err := svc.Create(f.ctx, owner, "s1", CreateProductInput{Name: " Tea ", Price: 5000, Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "Tea", p.Name)
	assert.Equal(t, []string{p.ID}, idx.indexed)

	list, err := svc.ListByStore(f.ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	up, err := svc.UploadImage(f.ctx, owner, p.ID, bytes.NewReader([]byte("img")), "photo.PNG", "image/png")
	require.NoError(t, err)
	require.Len(t, up.ImageURLs, 1)
	assert.Contains(t, images.paths[0], "products/s1/"+p.ID+"/")
	assert.Contains(t, images.paths[0], ".png")

	hits, err := svc.Search(f.ctx, "tea", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// the store vanishes: only an admin may clean up the product
	_, err = f.cols.Stores.Delete(f.ctx, "s1")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(f.ctx, owner, p.ID), ErrNotStoreManager)
	require.NoError(t, svc.Delete(f.ctx, admin, p.ID))
	assert.Equal(t, []string{p.ID}, idx.removed)
}

func TestProductServiceWithoutBackends(t *testing.T) {
	f := newFixture(t)
	owner := f.user("o1", entity.RoleOwner, true)
	f.store("s1", "o1")
	svc := NewProductService(f.cols, nil, nil, quietLogger())

	p, err := svc.Create(f.ctx, owner, "s1", CreateProductInput{Name: "Tea", Price: 1})
	require.NoError(t, err)

	_, err = svc.UploadImage(f.ctx, owner, p.ID, bytes.NewReader(nil), "a.jpg", "image/jpeg")
	assert.ErrorIs(t, err, domain.ErrInfrastructure)

	hits, err := svc.Search(f.ctx, "tea", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	svc.Index = &fakeIndex{err: errors.New("es down")}
	_, err = svc.Search(f.ctx, "tea", 10)
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
}
