package application

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

type ProductService struct {
	Stores   repo.Collection[entity.Store]
	Products repo.Collection[entity.Product]
	Index    ProductIndex
	Images   ImageStorage
	Logger   *logrus.Logger
	Now      Clock
}

func NewProductService(cols *repo.Collections, index ProductIndex, images ImageStorage, logger *logrus.Logger) *ProductService {
	return &ProductService{
		Stores:   cols.Stores,
		Products: cols.Products,
		Index:    index,
		Images:   images,
		Logger:   logger,
		Now:      systemClock,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
}

func (s *ProductService) Create(ctx context.Context, actor *entity.User, storeID string, in CreateProductInput) (*entity.Product, error) {
	if !actor.CanManageStores() {
		return nil, ErrNotStoreManager
	}
	st, err := s.Stores.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !st.ManagedBy(actor) {
		return nil, ErrNotStoreManager
	}
	now := s.Now()
	p := &entity.Product{
		ID:          uuid.NewString(),
		StoreID:     st.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		ImageURLs:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Products.Insert(ctx, p.ID, p); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

func (s *ProductService) ListByStore(ctx context.Context, storeID string) ([]entity.Product, error) {
	return s.Products.Find(ctx, repo.Filter{"store_id": storeID})
}

// Delete removes one product. A product whose store is already gone can only
// be removed by an admin.
func (s *ProductService) Delete(ctx context.Context, actor *entity.User, id string) error {
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, p); err != nil {
		return err
	}
	if _, err := s.Products.Delete(ctx, p.ID); err != nil {
		return err
	}
	removeFromIndex(ctx, s.Index, s.Logger, []string{p.ID})
	return nil
}

// UploadImage stores an image object and appends its URL to the product.
func (s *ProductService) UploadImage(ctx context.Context, actor *entity.User, id string, r io.Reader, filename, contentType string) (*entity.Product, error) {
	if s.Images == nil {
		return nil, domain.Infra("upload image", errImageStorageDisabled)
	}
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, p); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", p.StoreID, p.ID, uuid.NewString()+ext))
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, domain.Infra("upload image", err)
	}
	p.ImageURLs = append(p.ImageURLs, url)
	p.UpdatedAt = s.Now()
	if err := s.Products.Replace(ctx, p.ID, p); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

func (s *ProductService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	res, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, domain.Infra("search products", err)
	}
	return res, nil
}

func (s *ProductService) authorize(ctx context.Context, actor *entity.User, p *entity.Product) error {
	if actor.IsAdmin() {
		return nil
	}
	st, err := s.Stores.Get(ctx, p.StoreID)
	if err != nil {
		if isNotFound(err) {
			return ErrNotStoreManager
		}
		return err
	}
	if !st.ManagedBy(actor) {
		return ErrNotStoreManager
	}
	return nil
}

func (s *ProductService) index(ctx context.Context, p *entity.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("product_id", p.ID).Warn("product index failed")
	}
}
