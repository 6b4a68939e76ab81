package valueobject

import (
	"errors"
	"strings"
)

// DeliveryAddress is a Brazilian street address used for deliveries
type DeliveryAddress struct {
	street       string
	number       string
	complement   string
	neighborhood string
	city         string
	state        string
	cep          string
}

// AddressOption configures optional address parts
type AddressOption func(*DeliveryAddress)

// WithComplement sets the apartment/block complement
func WithComplement(complement string) AddressOption {
	return func(a *DeliveryAddress) {
		a.complement = strings.TrimSpace(complement)
	}
}

// NewDeliveryAddress creates a validated address. Street and CEP are required.
func NewDeliveryAddress(street, number, neighborhood, city, state, cep string, opts ...AddressOption) (DeliveryAddress, error) {
	a := DeliveryAddress{
		street:       strings.TrimSpace(street),
		number:       strings.TrimSpace(number),
		neighborhood: strings.TrimSpace(neighborhood),
		city:         strings.TrimSpace(city),
		state:        strings.ToUpper(strings.TrimSpace(state)),
		cep:          FormatCEP(cep),
	}
	for _, opt := range opts {
		opt(&a)
	}

	if a.street == "" {
		return DeliveryAddress{}, errors.New("street cannot be empty")
	}
	if a.cep == "" {
		return DeliveryAddress{}, errors.New("CEP cannot be empty")
	}
	if len(a.state) > 2 {
		return DeliveryAddress{}, errors.New("state must be a two-letter code")
	}
	return a, nil
}

// Street returns the street name
func (a DeliveryAddress) Street() string { return a.street }

// Number returns the house number
func (a DeliveryAddress) Number() string { return a.number }

// Complement returns the optional complement
func (a DeliveryAddress) Complement() string { return a.complement }

// Neighborhood returns the neighborhood (bairro)
func (a DeliveryAddress) Neighborhood() string { return a.neighborhood }

// City returns the city
func (a DeliveryAddress) City() string { return a.city }

// State returns the two-letter state code
func (a DeliveryAddress) State() string { return a.state }

// CEP returns the formatted postal code
func (a DeliveryAddress) CEP() string { return a.cep }

// IsEmpty reports whether the address is the zero value
func (a DeliveryAddress) IsEmpty() bool {
	return a.street == "" && a.cep == ""
}

// String renders the single-line form stored on orders:
// "street, number[, complement], neighborhood, city/state, CEP: cep"
func (a DeliveryAddress) String() string {
	var b strings.Builder
	b.WriteString(a.street)
	b.WriteString(", ")
	b.WriteString(a.number)
	if a.complement != "" {
		b.WriteString(", ")
		b.WriteString(a.complement)
	}
	b.WriteString(", ")
	b.WriteString(a.neighborhood)
	b.WriteString(", ")
	b.WriteString(a.city)
	b.WriteString("/")
	b.WriteString(a.state)
	b.WriteString(", CEP: ")
	b.WriteString(a.cep)
	return b.String()
}
