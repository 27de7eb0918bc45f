package cart

import (
	"github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

// Add puts one more unit of p in the cart, never past p's known stock.
// Products without stock are ignored.
func Add(lines []model.CartLine, p model.Product) []model.CartLine {
	if p.Stock <= 0 {
		return lines
	}
	out := make([]model.CartLine, len(lines), len(lines)+1)
	copy(out, lines)
	for i := range out {
		if out[i].ProductID == p.ID {
			out[i].Quantity = min(p.Stock, out[i].Quantity+1)
			return out
		}
	}
	return append(out, model.CartLine{ProductID: p.ID, Quantity: 1})
}

// SetQuantity sets the quantity for productID. A quantity of zero or less
// removes the line; an id not in the cart is left alone.
func SetQuantity(lines []model.CartLine, productID string, qty int) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == productID {
			l.Quantity = qty
		}
		if l.Quantity <= 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Merge folds duplicate product ids into one line, first occurrence first.
func Merge(lines []model.CartLine) []model.CartLine {
	pos := make(map[string]int, len(lines))
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := pos[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		pos[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// Detailed joins each line with its product. Lines whose product is gone
// show as "Unknown" with no stock.
func Detailed(lines []model.CartLine, products []model.Product) []dto.DetailedLine {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]dto.DetailedLine, 0, len(lines))
	for _, l := range lines {
		d := dto.DetailedLine{ProductID: l.ProductID, Quantity: l.Quantity, Name: model.UnknownName}
		if p, ok := byID[l.ProductID]; ok {
			d.Name = p.Name
			d.Color = p.Color
			d.Image = p.Image
			d.Stock = p.Stock
			d.Known = true
		}
		out = append(out, d)
	}
	return out
}
