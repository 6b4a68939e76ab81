package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCategoryRepository(t *testing.T) {
	db := setupTestDB(t)
	categories := NewGormCategoryRepository(db)
	items := NewGormItemRepository(db)
	ctx := context.Background()
	rid := uuid.New()

	pizzas, err := menu.NewCategory(rid, "Pizzas", "Forno a lenha", 1)
	require.NoError(t, err)
	drinks, err := menu.NewCategory(rid, "Bebidas", "", 2)
	require.NoError(t, err)
	desserts, err := menu.NewCategory(rid, "Sobremesas", "", 0)
	require.NoError(t, err)
	desserts.Deactivate()
	for _, c := range []*menu.Category{pizzas, drinks, desserts} {
		require.NoError(t, categories.Save(ctx, c))
	}

	t.Run("active categories in display order", func(t *testing.T) {
		list, err := categories.FindActive(ctx, rid)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Pizzas", list[0].Name)
		assert.Equal(t, "Bebidas", list[1].Name)

		all, err := categories.FindAll(ctx, rid)
		require.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Equal(t, "Sobremesas", all[0].Name)
	})

	t.Run("delete keeps items uncategorized", func(t *testing.T) {
		item, err := menu.NewItem(rid, "Pudim", valueobject.NewMoneyFromCents(1200), menu.WithCategory(desserts.ID))
		require.NoError(t, err)
		require.NoError(t, items.Save(ctx, item))

		require.NoError(t, categories.Delete(ctx, rid, desserts.ID))

		_, err = categories.FindByID(ctx, rid, desserts.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		reloaded, err := items.FindByID(ctx, rid, item.ID)
		require.NoError(t, err)
		assert.Nil(t, reloaded.CategoryID)
	})

	t.Run("delete of another restaurant's category", func(t *testing.T) {
		assert.ErrorIs(t, categories.Delete(ctx, uuid.New(), pizzas.ID), shared.ErrNotFound)
	})
}

func TestGormItemRepository(t *testing.T) {
	repo := NewGormItemRepository(setupTestDB(t))
	ctx := context.Background()
	rid := uuid.New()
	categoryID := uuid.New()

	margherita, err := menu.NewItem(rid, "Margherita", valueobject.NewMoneyFromCents(4590),
		menu.WithCategory(categoryID), menu.WithPopular(true), menu.WithDisplayOrder(1))
	require.NoError(t, err)
	calabresa, err := menu.NewItem(rid, "Calabresa", valueobject.NewMoneyFromCents(4290),
		menu.WithCategory(categoryID), menu.WithDisplayOrder(2))
	require.NoError(t, err)
	suco, err := menu.NewItem(rid, "Suco de Laranja", valueobject.NewMoneyFromCents(900),
		menu.WithPreparationTime(5))
	require.NoError(t, err)
	suco.SetAvailability(false)
	for _, i := range []*menu.Item{margherita, calabresa, suco} {
		require.NoError(t, repo.Save(ctx, i))
	}

	t.Run("round trip", func(t *testing.T) {
		item, err := repo.FindByID(ctx, rid, margherita.ID)
		require.NoError(t, err)
		assert.True(t, item.Price.Equal(decimal.RequireFromString("45.90")))
		assert.True(t, item.IsPopular)
		assert.True(t, item.InCategory(categoryID))
		assert.Equal(t, menu.DefaultPreparationTime, item.PreparationTime)
	})

	t.Run("filters", func(t *testing.T) {
		list, err := repo.Find(ctx, rid, menu.ItemFilter{CategoryID: &categoryID})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Margherita", list[0].Name)

		list, err = repo.Find(ctx, rid, menu.ItemFilter{AvailableOnly: true})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = repo.Find(ctx, rid, menu.ItemFilter{PopularOnly: true, Limit: 6})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, margherita.ID, list[0].ID)
	})

	t.Run("find by ids skips other restaurants", func(t *testing.T) {
		other, err := menu.NewItem(uuid.New(), "Esfiha", valueobject.NewMoneyFromCents(800))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, other))

		list, err := repo.FindByIDs(ctx, rid, []uuid.UUID{margherita.ID, suco.ID, other.ID})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		empty, err := repo.FindByIDs(ctx, rid, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, rid, calabresa.ID))
		assert.ErrorIs(t, repo.Delete(ctx, rid, calabresa.ID), shared.ErrNotFound)
	})
}
