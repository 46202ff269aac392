package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
)

var (
	ErrProductNameRequired = fmt.Errorf("%w: product name is required", domain.ErrValidation)
	ErrInvalidPrice        = fmt.Errorf("%w: price must be greater than zero", domain.ErrValidation)
	ErrInvalidStock        = fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
)

type Product struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	ImageURLs   []string  `json:"image_urls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProductNameRequired
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
