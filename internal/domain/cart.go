package domain

import "github.com/shopspring/decimal"

// CartItem is a product snapshot taken when it was first added, plus a quantity.
// Price is not refreshed if the catalog price changes later.
type CartItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       *string         `json:"image"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
}

// ItemFromProduct snapshots the cart-relevant fields of p with the given quantity.
func ItemFromProduct(p Product, quantity int) CartItem {
	var image *string
	if p.Image != nil {
		img := *p.Image
		image = &img
	}
	return CartItem{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       image,
		Category:    p.Category,
		Quantity:    quantity,
	}
}

// LineTotal is Price multiplied by Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
