package catalog

import (
	"github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

// AvailableColors returns the distinct non-empty colors in first-seen order.
func AvailableColors(products []model.Product) []string {
	seen := make(map[string]struct{})
	colors := make([]string, 0)
	for _, p := range products {
		if p.Color == "" {
			continue
		}
		if _, ok := seen[p.Color]; ok {
			continue
		}
		seen[p.Color] = struct{}{}
		colors = append(colors, p.Color)
	}
	return colors
}

// PhonesForType keeps phones of typeID in order. An empty typeID keeps all.
func PhonesForType(phones []model.Phone, typeID string) []model.Phone {
	out := make([]model.Phone, 0, len(phones))
	for _, p := range phones {
		if typeID == "" || p.TypeID == typeID {
			out = append(out, p)
		}
	}
	return out
}

// FilteredProducts keeps products matching every non-empty filter field.
func FilteredProducts(products []model.Product, f dto.ProductFilters) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.TypeID != "" && p.TypeID != f.TypeID {
			continue
		}
		if f.PhoneID != "" && p.PhoneID != f.PhoneID {
			continue
		}
		if f.Color != "" && p.Color != f.Color {
			continue
		}
		out = append(out, p)
	}
	return out
}
