package entity

import (
	"fmt"
	"time"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOwner    Role = "OWNER"
	RoleAdmin    Role = "ADMIN"
)

var (
	ErrInvalidRole       = fmt.Errorf("%w: unknown role", domain.ErrValidation)
	ErrRoleNotSelectable = fmt.Errorf("%w: role can not be self-selected", domain.ErrValidation)
	ErrRoleLocked        = fmt.Errorf("%w: role is locked", domain.ErrForbidden)
)

// Landing surfaces per role state.
const (
	LandingOnboarding = "/onboarding"
	LandingAdmin      = "/dashboard/admin"
	LandingOwner      = "/dashboard/owner"
	LandingCustomer   = "/stores"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleOwner, RoleAdmin:
		return r, nil
	}
	return "", ErrInvalidRole
}

// RoleState is the (role, onboarded) pair exposed to clients.
type RoleState struct {
	Role      Role   `json:"role"`
	Onboarded bool   `json:"onboarded"`
	Landing   string `json:"landing"`
}

func (u *User) RoleState() RoleState {
	return RoleState{Role: u.Role, Onboarded: u.Onboarded, Landing: u.Landing()}
}

// Landing picks the surface a user is sent to after sign-in.
func (u *User) Landing() string {
	if !u.Onboarded {
		return LandingOnboarding
	}
	switch u.Role {
	case RoleAdmin:
		return LandingAdmin
	case RoleOwner:
		return LandingOwner
	default:
		return LandingCustomer
	}
}

// SelectRole is the only self-service role transition.
// CUSTOMER and OWNER may be chosen (and re-chosen) freely and mark the user
// onboarded. ADMIN is never selectable, and an ADMIN can not leave the role.
func (u *User) SelectRole(r Role, now time.Time) error {
	if u.Role == RoleAdmin {
		return ErrRoleLocked
	}
	switch r {
	case RoleCustomer, RoleOwner:
	case RoleAdmin:
		return ErrRoleNotSelectable
	default:
		return ErrInvalidRole
	}
	u.Role = r
	u.Onboarded = true
	u.UpdatedAt = now
	return nil
}

// Promote grants ADMIN out of band. It is idempotent.
func (u *User) Promote(now time.Time) bool {
	if u.Role == RoleAdmin && u.Onboarded {
		return false
	}
	u.Role = RoleAdmin
	u.Onboarded = true
	u.UpdatedAt = now
	return true
}

// CanManageStores reports whether the user may create stores and products.
func (u *User) CanManageStores() bool {
	return u.Onboarded && (u.Role == RoleOwner || u.Role == RoleAdmin)
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
