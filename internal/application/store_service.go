package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

var (
	ErrNotStoreManager = fmt.Errorf("%w: not allowed to manage this store", domain.ErrForbidden)
	ErrAdminOnly       = fmt.Errorf("%w: admin only", domain.ErrForbidden)
)

type StoreService struct {
	Stores   repo.Collection[entity.Store]
	Products repo.Collection[entity.Product]
	Index    ProductIndex
	Logger   *logrus.Logger
	Now      Clock
}

func NewStoreService(cols *repo.Collections, index ProductIndex, logger *logrus.Logger) *StoreService {
	return &StoreService{Stores: cols.Stores, Products: cols.Products, Index: index, Logger: logger, Now: systemClock}
}

type CreateStoreInput struct {
	Name        string
	Description string
	Type        string
	Address     entity.StoreAddress
	ImageURL    string
}

// Create opens a new store for actor, enforcing the per-owner cap over the
// stores that currently exist.
func (s *StoreService) Create(ctx context.Context, actor *entity.User, in CreateStoreInput) (*entity.Store, error) {
	if !actor.CanManageStores() {
		return nil, ErrNotStoreManager
	}
	now := s.Now()
	st := &entity.Store{
		ID:          uuid.NewString(),
		UserID:      actor.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Type:        in.Type,
		Address:     in.Address,
		ImageURL:    in.ImageURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	owned, err := s.Stores.Count(ctx, repo.Filter{"user_id": actor.ID})
	if err != nil {
		return nil, err
	}
	if owned >= entity.MaxStoresPerOwner {
		return nil, storeLimitError(owned)
	}
	if err := s.Stores.Insert(ctx, st.ID, st); err != nil {
		return nil, err
	}
	if err := s.yieldIfOverCap(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// yieldIfOverCap re-reads the owner's stores in creation order after an
// insert. Concurrent creates can all pass the count; every insert ranked past
// the cap removes itself, so the earliest ones win.
func (s *StoreService) yieldIfOverCap(ctx context.Context, st *entity.Store) error {
	ids, err := s.Stores.IDs(ctx, repo.Filter{"user_id": st.UserID})
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("store_id", st.ID).Warn("store cap recheck skipped")
		}
		return nil
	}
	for rank, id := range ids {
		if id != st.ID {
			continue
		}
		if rank < entity.MaxStoresPerOwner {
			return nil
		}
		if _, err := s.Stores.Delete(ctx, st.ID); err != nil {
			return err
		}
		return storeLimitError(rank)
	}
	return nil
}

func storeLimitError(owned int) error {
	return fmt.Errorf("%w: %d of %d", entity.ErrStoreLimitReached, owned, entity.MaxStoresPerOwner)
}

func (s *StoreService) Get(ctx context.Context, id string) (*entity.Store, error) {
	return s.Stores.Get(ctx, id)
}

func (s *StoreService) ListByOwner(ctx context.Context, actor *entity.User) ([]entity.Store, error) {
	return s.Stores.Find(ctx, repo.Filter{"user_id": actor.ID})
}

// SetApproval flips the approval flag; admins only.
func (s *StoreService) SetApproval(ctx context.Context, actor *entity.User, id string, approved bool) (*entity.Store, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	st, err := s.Stores.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st.IsApproved = approved
	st.UpdatedAt = s.Now()
	if err := s.Stores.Replace(ctx, st.ID, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Delete removes a store and then its products. The store adapter has no
// cascade, so children go first; a failure part-way leaves orphans the repair
// run will collect.
func (s *StoreService) Delete(ctx context.Context, actor *entity.User, id string) (int, error) {
	st, err := s.Stores.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if !st.ManagedBy(actor) {
		return 0, ErrNotStoreManager
	}
	products, err := s.Products.Find(ctx, repo.Filter{"store_id": st.ID})
	if err != nil {
		return 0, err
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	removed, err := s.Products.Delete(ctx, ids...)
	if err != nil {
		return 0, err
	}
	removeFromIndex(ctx, s.Index, s.Logger, ids)

	if _, err := s.Stores.Delete(ctx, st.ID); err != nil {
		return removed, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"store_id": st.ID, "products": removed}).Info("store deleted")
	}
	return removed, nil
}

// removeFromIndex is best effort: the index is a cache of the document store.
func removeFromIndex(ctx context.Context, index ProductIndex, logger *logrus.Logger, ids []string) {
	if index == nil || len(ids) == 0 {
		return
	}
	if err := index.Remove(ctx, ids...); err != nil && logger != nil {
		logger.WithError(err).WithField("count", len(ids)).Warn("product index removal failed")
	}
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
