package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("rounds to cents", func(t *testing.T) {
		m := NewMoney(decimal.RequireFromString("10.005"))
		assert.Equal(t, "10.01", m.String())
	})

	t.Run("from cents", func(t *testing.T) {
		m := NewMoneyFromCents(9290)
		assert.Equal(t, "92.90", m.String())
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("35.90")
		require.NoError(t, err)
		assert.Equal(t, 35.9, m.Float64())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("abc")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyFromFloat(35.90)
	b := NewMoneyFromFloat(28.50).MultiplyByInt(2)

	total := a.Add(b)
	assert.Equal(t, "92.90", total.String())

	change := NewMoneyFromFloat(100).Subtract(total)
	assert.Equal(t, "7.10", change.String())
	assert.True(t, NewMoneyFromFloat(100).GreaterThan(total))
	assert.False(t, total.GreaterThan(total))
	assert.True(t, total.Equals(NewMoneyFromCents(9290)))
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroMoney().IsZero())
	assert.True(t, NewMoneyFromFloat(1).IsPositive())
	assert.True(t, NewMoneyFromFloat(-1).IsNegative())
}

func TestMoney_Format(t *testing.T) {
	m := NewMoneyFromFloat(57)
	assert.Contains(t, m.Format(), "57,00")
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(NewMoneyFromFloat(7.1))
	require.NoError(t, err)
	assert.Equal(t, `"7.10"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`12.5`), &m))
	assert.Equal(t, "12.50", m.String())

	require.NoError(t, json.Unmarshal([]byte(`"3.333"`), &m))
	assert.Equal(t, "3.33", m.String())
}

func TestMoney_ValueScan(t *testing.T) {
	v, err := NewMoneyFromFloat(4.2).Value()
	require.NoError(t, err)
	assert.Equal(t, "4.20", v)

	var m Money
	require.NoError(t, m.Scan("19.99"))
	assert.Equal(t, "19.99", m.String())
}
