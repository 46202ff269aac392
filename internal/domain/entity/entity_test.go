package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
)

var t0 = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusNew, StatusAccepted, true},
		{StatusAccepted, StatusPreparing, true},
		{StatusPreparing, StatusForDelivery, true},
		{StatusForDelivery, StatusCompleted, true},
		{StatusNew, StatusCancelled, true},
		{StatusForDelivery, StatusDeclined, true},
		{StatusNew, StatusPreparing, false},
		{StatusNew, StatusCompleted, false},
		{StatusAccepted, StatusNew, false},
		{StatusNew, StatusNew, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusNew, false},
		{StatusDeclined, StatusAccepted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderTransition(t *testing.T) {
	o := &Order{Status: StatusNew}
	for _, st := range []OrderStatus{StatusAccepted, StatusPreparing, StatusForDelivery} {
		require.NoError(t, o.Transition(st, t0))
		assert.Nil(t, o.CompletedAt)
	}
	later := t0.Add(time.Hour)
	require.NoError(t, o.Transition(StatusCompleted, later))
	require.NotNil(t, o.CompletedAt)
	assert.Equal(t, later, *o.CompletedAt)

	err := o.Transition(StatusCancelled, later)
	assert.ErrorIs(t, err, ErrOrderTerminal)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, StatusCompleted, o.Status)
}

func TestOrderTransitionRejectedLeavesOrderUntouched(t *testing.T) {
	o := &Order{Status: StatusNew, UpdatedAt: t0}
	err := o.Transition(StatusForDelivery, t0.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusNew, o.Status)
	assert.Equal(t, t0, o.UpdatedAt)
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("for_delivery")
	require.NoError(t, err)
	assert.Equal(t, StatusForDelivery, st)

	_, err = ParseOrderStatus("shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSelectRole(t *testing.T) {
	u := NewUser(Profile{ID: "u1", Email: "a@example.com"}, nil, t0)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.False(t, u.Onboarded)
	assert.Equal(t, LandingOnboarding, u.Landing())

	require.NoError(t, u.SelectRole(RoleOwner, t0))
	assert.True(t, u.Onboarded)
	assert.Equal(t, LandingOwner, u.Landing())
	assert.True(t, u.CanManageStores())

	require.NoError(t, u.SelectRole(RoleCustomer, t0), "re-selection is allowed")
	assert.False(t, u.CanManageStores())

	assert.ErrorIs(t, u.SelectRole(RoleAdmin, t0), ErrRoleNotSelectable)
	assert.ErrorIs(t, u.SelectRole(Role("ROOT"), t0), ErrInvalidRole)
}

func TestAdminRoleIsLocked(t *testing.T) {
	u := NewUser(Profile{ID: "a1", Email: " Admin@Example.com"}, []string{"admin@example.com"}, t0)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.True(t, u.Onboarded)
	assert.Equal(t, LandingAdmin, u.Landing())

	err := u.SelectRole(RoleCustomer, t0)
	assert.ErrorIs(t, err, ErrRoleLocked)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, RoleAdmin, u.Role)

	assert.False(t, u.Promote(t0), "already admin")
}

func TestSyncProfile(t *testing.T) {
	u := NewUser(Profile{ID: "u1", Email: "a@example.com", Name: "A"}, nil, t0)
	assert.False(t, u.SyncProfile(Profile{ID: "u1", Email: "a@example.com", Name: "A"}, t0))
	assert.True(t, u.SyncProfile(Profile{ID: "u1", Email: "b@example.com", Name: "A"}, t0.Add(time.Second)))
	assert.Equal(t, "b@example.com", u.Email)
	assert.Equal(t, RoleCustomer, u.Role)
}

func TestStoreRules(t *testing.T) {
	owner := &User{ID: "o1", Role: RoleOwner, Onboarded: true}
	admin := &User{ID: "a1", Role: RoleAdmin, Onboarded: true}
	other := &User{ID: "x", Role: RoleOwner, Onboarded: true}
	st := &Store{UserID: "o1", Name: " "}

	assert.ErrorIs(t, st.Validate(), ErrStoreNameRequired)
	assert.True(t, st.ManagedBy(owner))
	assert.True(t, st.ManagedBy(admin))
	assert.False(t, st.ManagedBy(other))
	assert.False(t, st.ManagedBy(nil))

	assert.False(t, st.AcceptsOrders())
	st.IsActive, st.IsApproved = true, true
	assert.True(t, st.AcceptsOrders())
}

func TestProductValidate(t *testing.T) {
	assert.ErrorIs(t, (&Product{Price: 1}).Validate(), ErrProductNameRequired)
	assert.ErrorIs(t, (&Product{Name: "x"}).Validate(), ErrInvalidPrice)
	assert.ErrorIs(t, (&Product{Name: "x", Price: 1, Stock: -1}).Validate(), ErrInvalidStock)
	assert.NoError(t, (&Product{Name: "x", Price: 1}).Validate())
	assert.Equal(t, 7.5, OrderItem{Price: 2.5, Quantity: 3}.Subtotal())
}
