package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
)

// MaxStoresPerOwner caps how many existing stores one user may own.
const MaxStoresPerOwner = 3

var (
	ErrStoreNameRequired = fmt.Errorf("%w: store name is required", domain.ErrValidation)
	ErrStoreLimitReached = fmt.Errorf("%w: store limit reached", domain.ErrConflict)
	ErrStoreUnavailable  = fmt.Errorf("%w: store is not accepting orders", domain.ErrValidation)
)

type StoreAddress struct {
	Village string `json:"village"`
	Street  string `json:"street"`
	Detail  string `json:"detail"`
}

type Store struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        string       `json:"type"`
	Address     StoreAddress `json:"address"`
	ImageURL    string       `json:"image_url"`
	IsApproved  bool         `json:"is_approved"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (s *Store) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrStoreNameRequired
	}
	return nil
}

// AcceptsOrders reports whether customers can currently order from the store.
func (s *Store) AcceptsOrders() bool { return s.IsActive && s.IsApproved }

// ManagedBy reports whether u may administer the store.
func (s *Store) ManagedBy(u *User) bool {
	return u != nil && (u.IsAdmin() || s.UserID == u.ID)
}
