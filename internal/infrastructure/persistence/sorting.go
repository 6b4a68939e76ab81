package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list endpoint may order by.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

var (
	orderSort    = newSortColumns("created_at", "updated_at", "order_number", "status", "total_amount")
	customerSort = newSortColumns("created_at", "updated_at", "name", "total_orders", "total_spent", "last_order_at")
)

// Allows reports whether column is sortable.
func (s sortColumns) Allows(column string) bool {
	_, ok := s.allowed[column]
	return ok
}

// OrderBy turns untrusted list parameters into an ORDER BY column. Unknown
// columns fall back to the default; anything other than "asc" sorts descending.
func (s sortColumns) OrderBy(column, direction string) clause.OrderByColumn {
	column = strings.TrimSpace(column)
	if !s.Allows(column) {
		column = s.fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(direction), "asc"),
	}
}
