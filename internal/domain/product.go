package domain

import "github.com/shopspring/decimal"

// Product is a catalog item as served by the backend.
type Product struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Category    Category            `json:"category"`
	Price       decimal.NullDecimal `json:"price"`

	// InBasket is view-local state and never leaves the client.
	InBasket bool `json:"-"`
}

// Priced reports whether the product can be bought.
func (p Product) Priced() bool {
	return p.Price.Valid
}

// PriceOrZero returns the price, treating a missing price as zero.
func (p Product) PriceOrZero() decimal.Decimal {
	if !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}

// ProductList is the envelope returned by GET /product.
type ProductList struct {
	Total int       `json:"total"`
	Items []Product `json:"items"`
}
