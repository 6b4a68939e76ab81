// Package printing renders kitchen tickets for orders.
package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TicketLine is one item on the ticket
type TicketLine struct {
	Quantity     int
	Name         string
	Total        string
	Instructions string
}

// TicketData is everything printed on a kitchen ticket
type TicketData struct {
	RestaurantName string
	OrderNumber    string
	CreatedAt      string
	CustomerName   string
	CustomerPhone  string
	Address        string
	Notes          string
	PaymentMethod  string
	Lines          []TicketLine
	Subtotal       string
	DeliveryFee    string
	Tax            string
	HasTax         bool
	Total          string
	PageSize       template.CSS
}

// NewTicketData builds the ticket contents. Times are shown in loc.
func NewTicketData(r *restaurant.Restaurant, o *ordering.Order, loc *time.Location, paperWidthMM float64) TicketData {
	if loc == nil {
		loc = time.UTC
	}
	lines := make([]TicketLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = TicketLine{
			Quantity:     item.Quantity,
			Name:         item.ItemName,
			Total:        money(item.TotalPrice),
			Instructions: item.SpecialInstructions,
		}
	}
	data := TicketData{
		OrderNumber:   o.OrderNumber,
		CreatedAt:     o.CreatedAt.In(loc).Format("02/01/2006 15:04"),
		CustomerName:  o.CustomerName,
		CustomerPhone: valueobject.FormatPhone(o.CustomerPhone),
		Address:       o.DeliveryAddress,
		Notes:         o.CustomerNotes,
		PaymentMethod: o.PaymentMethod.Label(),
		Lines:         lines,
		Subtotal:      money(o.Subtotal),
		DeliveryFee:   money(o.DeliveryFee),
		Tax:           money(o.TaxAmount),
		HasTax:        o.TaxAmount.IsPositive(),
		Total:         money(o.TotalAmount),
		PageSize:      template.CSS(fmt.Sprintf("%gmm auto", paperWidthMM)),
	}
	if r != nil {
		data.RestaurantName = r.Name
	}
	return data
}

func money(d decimal.Decimal) string {
	return valueobject.NewMoney(d).Format()
}

var ticketTemplate = template.Must(template.New("ticket").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<title>{{.OrderNumber}}</title>
<style>
  @page { size: {{.PageSize}}; margin: 3mm; }
  body { font-family: "DejaVu Sans Mono", monospace; font-size: 11px; width: 100%; margin: 0; }
  h1 { font-size: 14px; text-align: center; margin: 0 0 4px; }
  .number { font-size: 18px; font-weight: bold; text-align: center; margin: 4px 0; }
  .muted { color: #444; }
  hr { border: none; border-top: 1px dashed #000; margin: 6px 0; }
  table { width: 100%; border-collapse: collapse; }
  td.qty { width: 2.5em; vertical-align: top; }
  td.price { text-align: right; white-space: nowrap; vertical-align: top; }
  .obs { font-style: italic; padding-left: 2.5em; }
  .total td { font-weight: bold; font-size: 13px; }
</style>
</head>
<body>
  {{if .RestaurantName}}<h1>{{.RestaurantName}}</h1>{{end}}
  <div class="number">{{.OrderNumber}}</div>
  <div class="muted">{{.CreatedAt}}</div>
  <hr>
  <div><strong>{{.CustomerName}}</strong></div>
  {{if .CustomerPhone}}<div>{{.CustomerPhone}}</div>{{end}}
  {{if .Address}}<div>{{.Address}}</div>{{end}}
  <hr>
  <table>
  {{range .Lines}}
    <tr><td class="qty">{{.Quantity}}x</td><td>{{.Name}}</td><td class="price">{{.Total}}</td></tr>
    {{if .Instructions}}<tr><td colspan="3" class="obs">» {{.Instructions}}</td></tr>{{end}}
  {{end}}
  </table>
  {{if .Notes}}<hr><div><strong>Observações:</strong></div><div>{{.Notes}}</div>{{end}}
  <hr>
  <table>
    <tr><td>Subtotal</td><td class="price">{{.Subtotal}}</td></tr>
    <tr><td>Taxa de entrega</td><td class="price">{{.DeliveryFee}}</td></tr>
    {{if .HasTax}}<tr><td>Impostos</td><td class="price">{{.Tax}}</td></tr>{{end}}
    <tr class="total"><td>Total</td><td class="price">{{.Total}}</td></tr>
  </table>
  <div>Pagamento: {{.PaymentMethod}}</div>
</body>
</html>
`))

// RenderTicketHTML renders the ticket document
func RenderTicketHTML(data TicketData) (string, error) {
	var buf bytes.Buffer
	if err := ticketTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render ticket %s: %w", data.OrderNumber, err)
	}
	return buf.String(), nil
}
