package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
)

func newIdentity(f *fixture, admins ...string) *IdentityService {
	s := NewIdentityService(f.cols, admins, quietLogger())
	s.Now = fixedClock
	return s
}

func TestGetOrCreate(t *testing.T) {
	f := newFixture(t)
	svc := newIdentity(f, "boss@example.com")

	u, err := svc.GetOrCreate(f.ctx, entity.Profile{ID: "id_1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, u.Role)
	assert.False(t, u.Onboarded)
	assert.Equal(t, fixedNow, u.CreatedAt)

	again, err := svc.GetOrCreate(f.ctx, entity.Profile{ID: "id_1", Email: "changed@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", again.Email, "existing record is returned as is")

	boss, err := svc.GetOrCreate(f.ctx, entity.Profile{ID: "id_2", Email: "BOSS@example.com"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, boss.Role)
	assert.True(t, boss.Onboarded)

	_, err = svc.GetOrCreate(f.ctx, entity.Profile{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetOrCreateConcurrentFirstAccess(t *testing.T) {
	f := newFixture(t)
	svc := newIdentity(f)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := svc.GetOrCreate(f.ctx, entity.Profile{ID: "same", Email: "s@example.com"})
			if assert.NoError(t, err) {
				assert.Equal(t, "same", u.ID)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"same"}, f.ids(f.cols.Users))
}

func TestIdentityEvents(t *testing.T) {
	f := newFixture(t)
	svc := newIdentity(f)
	p := entity.Profile{ID: "id_1", Email: "a@example.com", Name: "A"}

	out, err := svc.Handle(f.ctx, IdentityEvent{Type: IdentityCreated, Profile: entity.Profile{ID: "no_mail"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out)

	out, err = svc.Handle(f.ctx, IdentityEvent{Type: IdentityUpdated, Profile: p})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out, "update before create is a no-op")

	out, err = svc.Handle(f.ctx, IdentityEvent{Type: IdentityCreated, Profile: p})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)

	out, err = svc.Handle(f.ctx, IdentityEvent{Type: IdentityCreated, Profile: p})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out, "replayed create converges")

	p.Name = "Renamed"
	out, err = svc.Handle(f.ctx, IdentityEvent{Type: IdentityUpdated, Profile: p})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, out)
	u, err := f.cols.Users.Get(f.ctx, "id_1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)

	f.store("s1", "id_1")
	out, err = svc.Handle(f.ctx, IdentityEvent{Type: IdentityDeleted, Profile: entity.Profile{ID: "id_1"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, out)
	assert.Equal(t, []string{"s1"}, f.ids(f.cols.Stores), "deletion does not cascade")

	out, err = svc.Handle(f.ctx, IdentityEvent{Type: IdentityDeleted, Profile: entity.Profile{ID: "id_1"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out)

	_, err = svc.Handle(f.ctx, IdentityEvent{Type: "session.created"})
	assert.ErrorIs(t, err, ErrUnknownIdentityEvent)
}

func TestUpdateKeepsRole(t *testing.T) {
	f := newFixture(t)
	svc := newIdentity(f)
	f.user("id_1", entity.RoleOwner, true)

	_, err := svc.Handle(f.ctx, IdentityEvent{Type: IdentityUpdated, Profile: entity.Profile{ID: "id_1", Email: "new@example.com"}})
	require.NoError(t, err)
	u, err := f.cols.Users.Get(f.ctx, "id_1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOwner, u.Role)
	assert.True(t, u.Onboarded)
}

func TestRoleService(t *testing.T) {
	f := newFixture(t)
	roles := NewRoleService(newIdentity(f, "boss@example.com"), f.cols, quietLogger())
	roles.Now = fixedClock
	p := entity.Profile{ID: "id_1", Email: "a@example.com"}

	st, err := roles.Get(f.ctx, p)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleState{Role: entity.RoleCustomer, Landing: entity.LandingOnboarding}, st)

	st, err = roles.Set(f.ctx, p, entity.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleState{Role: entity.RoleOwner, Onboarded: true, Landing: entity.LandingOwner}, st)

	_, err = roles.Set(f.ctx, p, entity.RoleAdmin)
	assert.ErrorIs(t, err, entity.ErrRoleNotSelectable)
	st, err = roles.Get(f.ctx, p)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOwner, st.Role, "rejected set writes nothing")

	u, err := roles.Promote(f.ctx, "id_1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	for _, r := range []entity.Role{entity.RoleCustomer, entity.RoleOwner} {
		_, err = roles.Set(f.ctx, p, r)
		assert.ErrorIs(t, err, entity.ErrRoleLocked)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	}
	st, err = roles.Get(f.ctx, p)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, st.Role)

	_, err = roles.Promote(f.ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
