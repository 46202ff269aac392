package entity

import (
	"strings"
	"time"
)

// User mirrors an identity-provider account.
// ID is the provider's external id and doubles as the document key, so every
// parent reference (Store.UserID, Order.UserID) points at it directly.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	Role      Role      `json:"role"`
	Onboarded bool      `json:"onboarded"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the attribute set the identity provider owns.
type Profile struct {
	ID       string
	Email    string
	Name     string
	ImageURL string
}

// NewUser builds the record created on first sight of an identity.
// Administrator emails start as onboarded admins; everyone else starts as an
// un-onboarded customer.
func NewUser(p Profile, adminEmails []string, now time.Time) *User {
	u := &User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if IsAdminEmail(p.Email, adminEmails) {
		u.Role = RoleAdmin
		u.Onboarded = true
	}
	return u
}

// SyncProfile copies provider-owned attributes and reports whether anything changed.
func (u *User) SyncProfile(p Profile, now time.Time) bool {
	if u.Email == p.Email && u.Name == p.Name && u.ImageURL == p.ImageURL {
		return false
	}
	u.Email = p.Email
	u.Name = p.Name
	u.ImageURL = p.ImageURL
	u.UpdatedAt = now
	return true
}

func IsAdminEmail(email string, adminEmails []string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, a := range adminEmails {
		if strings.EqualFold(strings.TrimSpace(a), email) {
			return true
		}
	}
	return false
}
