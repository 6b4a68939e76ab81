package checkout

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() []CartLine {
	return []CartLine{
		{MenuItemID: uuid.New(), Name: "Hambúrguer", Price: decimal.RequireFromString("35.90"), Quantity: 1},
		{MenuItemID: uuid.New(), Name: "Pizza", Price: decimal.RequireFromString("28.50"), Quantity: 2},
	}
}

func validForm() Form {
	return Form{
		CustomerName:  "Maria Silva",
		CEP:           "01310-100",
		Address:       "Av. Paulista",
		Number:        "1000",
		Neighborhood:  "Bela Vista",
		City:          "São Paulo",
		State:         "SP",
		PaymentMethod: "money",
		NeedsChange:   true,
		ChangeAmount:  "10000",
		Phone:         "(11) 99999-8888",
		Items:         sampleCart(),
	}
}

func TestCartTotal(t *testing.T) {
	total := CartTotal(sampleCart())
	assert.Equal(t, "92.90", total.StringFixed(2))
	assert.Equal(t, 3, CartQuantity(sampleCart()))
	assert.True(t, CartTotal(nil).IsZero())
}

func TestChange(t *testing.T) {
	change, err := Change(ParseChangeAmount("100,00"), CartTotal(sampleCart()))
	require.NoError(t, err)
	assert.Equal(t, "7.10", change.StringFixed(2))

	_, err = Change(decimal.RequireFromString("92.90"), decimal.RequireFromString("92.90"))
	require.Error(t, err)
	assert.Equal(t, "value must be greater than total", err.Error())
}

func TestParseChangeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10000", "100.00"},
		{"R$ 100,00", "100.00"},
		{"5", "0.05"},
		{"", "0.00"},
		{"abc", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseChangeAmount(tt.in).StringFixed(2))
		})
	}
}

func TestChangeNote(t *testing.T) {
	note := ChangeNote(decimal.NewFromInt(100))
	assert.Contains(t, note, "Troco para: R$")
	assert.Contains(t, note, "100,00")
}

func TestForm_DeliveryAddress(t *testing.T) {
	f := validForm()
	f.Complement = "Apto 12"
	addr, err := f.DeliveryAddress()
	require.NoError(t, err)
	assert.Equal(t, "Av. Paulista, 1000, Apto 12, Bela Vista, São Paulo/SP, CEP: 01310-100", addr)

	f.Address = ""
	_, err = f.DeliveryAddress()
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, StepAddress, verr.Step)
}

func TestForm_CustomerNotes(t *testing.T) {
	f := validForm()
	f.Notes = "Sem cebola"
	notes := f.CustomerNotes()
	assert.Contains(t, notes, "Sem cebola\nTroco para: R$")

	f.PaymentMethod = "pix"
	assert.Equal(t, "Sem cebola", f.CustomerNotes())
}

func TestForm_Normalize(t *testing.T) {
	f := Form{Phone: "11999998888", CEP: "01310100", State: " sp "}
	f.Normalize()
	assert.Equal(t, "(11) 99999-8888", f.Phone)
	assert.Equal(t, "01310-100", f.CEP)
	assert.Equal(t, "SP", f.State)

	before := f
	f.Normalize()
	assert.Equal(t, before, f)
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name   string
		step   int
		mutate func(*Form)
		want   bool
	}{
		{"name ok", StepName, nil, true},
		{"blank name", StepName, func(f *Form) { f.CustomerName = "   " }, false},
		{"address ok", StepAddress, nil, true},
		{"missing cep", StepAddress, func(f *Form) { f.CEP = "" }, false},
		{"missing address", StepAddress, func(f *Form) { f.Address = "" }, false},
		{"payment money with change", StepPayment, nil, true},
		{"no payment method", StepPayment, func(f *Form) { f.PaymentMethod = "" }, false},
		{"unknown payment method", StepPayment, func(f *Form) { f.PaymentMethod = "cheque" }, false},
		{"pix without timing", StepPayment, func(f *Form) { f.PaymentMethod = "pix" }, false},
		{"pix now", StepPayment, func(f *Form) { f.PaymentMethod = "pix"; f.PixTiming = PixTimingNow }, true},
		{"pix pickup", StepPayment, func(f *Form) { f.PaymentMethod = "pix"; f.PixTiming = PixTimingPickup }, true},
		{"change below total", StepPayment, func(f *Form) { f.ChangeAmount = "5000" }, false},
		{"change equal total", StepPayment, func(f *Form) { f.ChangeAmount = "9290" }, false},
		{"money without change", StepPayment, func(f *Form) { f.NeedsChange = false; f.ChangeAmount = "" }, true},
		{"card", StepPayment, func(f *Form) { f.PaymentMethod = "card" }, true},
		{"phone ok", StepContact, nil, true},
		{"short phone", StepContact, func(f *Form) { f.Phone = "(11) 9999" }, false},
		{"bad email", StepContact, func(f *Form) { f.Email = "nope" }, false},
		{"summary always", StepSummary, func(f *Form) { *f = Form{} }, true},
		{"unknown step", 9, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			if tt.mutate != nil {
				tt.mutate(&f)
			}
			assert.Equal(t, tt.want, CanAdvance(tt.step, f))
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validForm()))

	t.Run("returns first failing step", func(t *testing.T) {
		f := validForm()
		f.Phone = ""
		f.Address = ""
		err := Validate(f)
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, StepAddress, verr.Step)
		assert.Equal(t, "address", verr.Field)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := validForm()
		f.PaymentMethod = "card"
		f.Items = nil
		err := Validate(f)
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, StepSummary, verr.Step)
	})

	t.Run("zero quantity line", func(t *testing.T) {
		f := validForm()
		f.Items[0].Quantity = 0
		err := Validate(f)
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "quantity", verr.Field)
	})
}
