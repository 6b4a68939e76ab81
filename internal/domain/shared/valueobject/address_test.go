package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeliveryAddress(t *testing.T) {
	tests := []struct {
		name        string
		street      string
		cep         string
		state       string
		wantErr     bool
		errContains string
	}{
		{name: "valid address", street: "Rua das Flores", cep: "01310100", state: "sp"},
		{name: "empty street", street: "  ", cep: "01310100", state: "SP", wantErr: true, errContains: "street"},
		{name: "empty cep", street: "Rua A", cep: "", state: "SP", wantErr: true, errContains: "CEP"},
		{name: "long state", street: "Rua A", cep: "01310100", state: "São Paulo", wantErr: true, errContains: "state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewDeliveryAddress(tt.street, "10", "Centro", "São Paulo", tt.state, tt.cep)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SP", a.State())
			assert.Equal(t, "01310-100", a.CEP())
		})
	}
}

func TestDeliveryAddress_String(t *testing.T) {
	t.Run("without complement", func(t *testing.T) {
		a, err := NewDeliveryAddress("Rua das Flores", "123", "Centro", "São Paulo", "SP", "01310-100")
		require.NoError(t, err)
		assert.Equal(t, "Rua das Flores, 123, Centro, São Paulo/SP, CEP: 01310-100", a.String())
	})

	t.Run("with complement", func(t *testing.T) {
		a, err := NewDeliveryAddress("Rua das Flores", "123", "Centro", "São Paulo", "SP", "01310100",
			WithComplement("Apto 42"))
		require.NoError(t, err)
		assert.Equal(t, "Rua das Flores, 123, Apto 42, Centro, São Paulo/SP, CEP: 01310-100", a.String())
		assert.Equal(t, "Apto 42", a.Complement())
	})

	t.Run("zero value is empty", func(t *testing.T) {
		assert.True(t, DeliveryAddress{}.IsEmpty())
	})
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1133334444", "(11) 3333-4444"},
		{"11999998888", "(11) 99999-8888"},
		{"(11) 99999-8888", "(11) 99999-8888"},
		{"+55 11 99999-8888", "(55) 11999-9988"},
		{"119999", "119999"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhone(tt.in))
		})
	}
}

func TestFormatPhone_Idempotent(t *testing.T) {
	for _, in := range []string{"1133334444", "11999998888", "abc123", "119"} {
		once := FormatPhone(in)
		assert.Equal(t, once, FormatPhone(once), "input %q", in)
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("(11) 3333-4444"))
	assert.True(t, IsValidPhone("11999998888"))
	assert.False(t, IsValidPhone("11 9999"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "11999998888", NormalizePhone("(11) 99999-8888"))
	assert.Equal(t, "55119999988", NormalizePhone("+55 11 99999-8888"))
}

func TestFormatCEP(t *testing.T) {
	assert.Equal(t, "01310-100", FormatCEP("01310100"))
	assert.Equal(t, "01310-100", FormatCEP("01310-100"))
	assert.Equal(t, "01310-100", FormatCEP("013101009"))
	assert.Equal(t, "0131", FormatCEP("0131"))
	assert.True(t, IsValidCEP("01310-100"))
	assert.False(t, IsValidCEP("0131"))

	for _, in := range []string{"01310100", "abc", "12345"} {
		once := FormatCEP(in)
		assert.Equal(t, once, FormatCEP(once))
	}
}
