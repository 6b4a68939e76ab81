package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/onboarding"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSetup(t *testing.T, ownerEmail string) *onboarding.Setup {
	t.Helper()
	r, err := restaurant.NewRestaurant("Cantina da Nona", "pizzaria", "Rua A, 1", "(11) 3333-4444", "contato@nona.com")
	require.NoError(t, err)
	owner, err := restaurant.NewStaffUser(r.ID, "Nona", ownerEmail, restaurant.RoleOwner, nil)
	require.NoError(t, err)
	require.NoError(t, owner.SetPassword("segredo123"))
	r.AssignOwner(owner.ID)
	r.CompleteOnboarding()

	cat, err := menu.NewCategory(r.ID, "Pizzas", "", 0)
	require.NoError(t, err)
	wa, err := restaurant.NewWhatsAppSettings(r.ID, "(11) 99999-8888")
	require.NoError(t, err)
	require.NoError(t, wa.Update(wa.PhoneNumber, "Olá!", true, restaurant.DefaultBusinessHours(), "", "", true))
	attendant, err := restaurant.NewStaffUser(r.ID, "Lucas", "lucas@nona.com", restaurant.RoleAttendant,
		[]string{restaurant.PermissionOrders})
	require.NoError(t, err)

	return &onboarding.Setup{
		Restaurant: r,
		Owner:      owner,
		Categories: []*menu.Category{cat},
		WhatsApp:   wa,
		Users:      []*restaurant.StaffUser{attendant},
	}
}

func TestGormOnboardingStore_Create(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormOnboardingStore(db)
	restaurants := NewGormRestaurantRepository(db)
	staff := NewGormStaffUserRepository(db)
	whatsapp := NewGormWhatsAppSettingsRepository(db)
	categories := NewGormCategoryRepository(db)
	ctx := context.Background()

	setup := newTestSetup(t, "nona@nona.com")
	require.NoError(t, store.Create(ctx, setup))
	rid := setup.Restaurant.ID

	t.Run("persists every aggregate", func(t *testing.T) {
		r, err := restaurants.FindByID(ctx, rid)
		require.NoError(t, err)
		assert.True(t, r.OnboardingCompleted)
		require.NotNil(t, r.OwnerID)
		assert.Equal(t, setup.Owner.ID, *r.OwnerID)
		assert.Equal(t, "1133334444", r.Phone)

		users, err := staff.FindAllForRestaurant(ctx, rid)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, restaurant.RoleOwner, users[0].Role)
		assert.Equal(t, []string{restaurant.PermissionOrders}, users[1].Permissions)

		owner, err := staff.FindByEmail(ctx, " NONA@nona.com ")
		require.NoError(t, err)
		assert.True(t, owner.VerifyPassword("segredo123"))

		settings, err := whatsapp.FindByRestaurant(ctx, rid)
		require.NoError(t, err)
		assert.Equal(t, "Olá!", settings.WelcomeMessage)
		assert.Equal(t, restaurant.DefaultBusinessHours(), settings.BusinessHours)

		cats, err := categories.FindAll(ctx, rid)
		require.NoError(t, err)
		assert.Len(t, cats, 1)
	})

	t.Run("duplicate email rolls everything back", func(t *testing.T) {
		dup := newTestSetup(t, "outra@nona.com")
		dup.Users[0].Email = "nona@nona.com"

		err := store.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		_, err = restaurants.FindByID(ctx, dup.Restaurant.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		exists, err := staff.ExistsByEmail(ctx, "outra@nona.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormStaffUserRepository(t *testing.T) {
	repo := NewGormStaffUserRepository(setupTestDB(t))
	ctx := context.Background()
	rid := uuid.New()

	u, err := restaurant.NewStaffUser(rid, "Lucas", "lucas@nona.com", restaurant.RoleManager, []string{"menu", "orders"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	exists, err := repo.ExistsByEmail(ctx, "LUCAS@nona.com")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, u.Deactivate())
	require.NoError(t, repo.Save(ctx, u))

	reloaded, err := repo.FindByID(ctx, rid, u.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
	assert.Equal(t, []string{"menu", "orders"}, reloaded.Permissions)

	_, err = repo.FindByID(ctx, uuid.New(), u.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormWhatsAppSettingsRepository_NotFound(t *testing.T) {
	repo := NewGormWhatsAppSettingsRepository(setupTestDB(t))
	_, err := repo.FindByRestaurant(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
