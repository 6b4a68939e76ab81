package menu

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	restaurantID := uuid.New()

	t.Run("valid", func(t *testing.T) {
		c, err := NewCategory(restaurantID, "  Pizzas ", "Tradicionais", 1)
		require.NoError(t, err)
		assert.Equal(t, "Pizzas", c.Name)
		assert.True(t, c.IsActive)
		assert.Equal(t, 1, c.DisplayOrder)
		require.Len(t, c.GetDomainEvents(), 1)
		ev := c.GetDomainEvents()[0].(*CategoryChangedEvent)
		assert.Equal(t, ChangeActionCreated, ev.Action)
	})

	t.Run("invalid names", func(t *testing.T) {
		_, err := NewCategory(restaurantID, "", "", 0)
		assert.Error(t, err)
		_, err = NewCategory(restaurantID, strings.Repeat("a", 101), "", 0)
		assert.Error(t, err)
		_, err = NewCategory(uuid.Nil, "Pizzas", "", 0)
		assert.Error(t, err)
	})
}

func TestCategory_Activation(t *testing.T) {
	c, err := NewCategory(uuid.New(), "Bebidas", "", 2)
	require.NoError(t, err)
	c.ClearDomainEvents()

	c.Deactivate()
	assert.False(t, c.IsActive)
	c.Deactivate()
	assert.Len(t, c.GetDomainEvents(), 1)

	c.Activate()
	assert.True(t, c.IsActive)
	assert.Len(t, c.GetDomainEvents(), 2)
}

func TestNewItem(t *testing.T) {
	restaurantID := uuid.New()
	categoryID := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		item, err := NewItem(restaurantID, "Pizza Margherita", valueobject.NewMoneyFromFloat(35.90))
		require.NoError(t, err)
		assert.Equal(t, DefaultPreparationTime, item.PreparationTime)
		assert.True(t, item.IsAvailable)
		assert.False(t, item.IsPopular)
		assert.Nil(t, item.CategoryID)
		assert.Equal(t, "35.90", item.PriceMoney().String())
	})

	t.Run("options", func(t *testing.T) {
		item, err := NewItem(restaurantID, "Calabresa", valueobject.NewMoneyFromFloat(32),
			WithCategory(categoryID), WithDescription("Com cebola"), WithPreparationTime(20),
			WithPopular(true), WithDisplayOrder(3))
		require.NoError(t, err)
		assert.True(t, item.InCategory(categoryID))
		assert.Equal(t, "Com cebola", item.Description)
		assert.Equal(t, 20, item.PreparationTime)
		assert.True(t, item.IsPopular)
		assert.Equal(t, 3, item.DisplayOrder)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			iname string
			price float64
			opts  []ItemOption
		}{
			{"empty name", " ", 10, nil},
			{"long name", strings.Repeat("x", 201), 10, nil},
			{"zero price", "Suco", 0, nil},
			{"negative price", "Suco", -1, nil},
			{"zero prep time", "Suco", 10, []ItemOption{WithPreparationTime(0)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewItem(restaurantID, tt.iname, valueobject.NewMoneyFromFloat(tt.price), tt.opts...)
				assert.Error(t, err)
			})
		}
	})
}

func TestItem_Mutations(t *testing.T) {
	item, err := NewItem(uuid.New(), "Pizza", valueobject.NewMoneyFromFloat(30))
	require.NoError(t, err)
	item.ClearDomainEvents()

	require.NoError(t, item.SetPrice(valueobject.NewMoneyFromFloat(31.5)))
	assert.Equal(t, "31.50", item.PriceMoney().String())
	assert.Error(t, item.SetPrice(valueobject.ZeroMoney()))

	item.SetAvailability(false)
	assert.False(t, item.IsAvailable)
	events := item.GetDomainEvents()
	assert.Equal(t, EventTypeMenuItemAvailabilityChanged, events[len(events)-1].EventType())

	cat := uuid.New()
	item.MoveToCategory(cat)
	assert.True(t, item.InCategory(cat))
	item.MoveToCategory(uuid.Nil)
	assert.Nil(t, item.CategoryID)

	require.NoError(t, item.Update("Pizza Grande", "8 fatias", 40))
	assert.Equal(t, "Pizza Grande", item.Name)
	assert.Error(t, item.Update("Pizza", "", 0))

	item.SetImage("https://cdn.example.com/menu-images/x.jpg")
	assert.Equal(t, "https://cdn.example.com/menu-images/x.jpg", item.ImageURL)
}
