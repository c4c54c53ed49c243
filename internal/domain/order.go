package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays. The zero value means unset.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// OrderRequest is the body of POST /order.
type OrderRequest struct {
	Payment PaymentMethod   `json:"payment"`
	Address string          `json:"address"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Total   decimal.Decimal `json:"-"`
	Items   []string        `json:"items"`
}

// MarshalJSON writes Total as a JSON number, which the backend expects.
func (r OrderRequest) MarshalJSON() ([]byte, error) {
	type wire OrderRequest
	return json.Marshal(struct {
		wire
		Total json.Number `json:"total"`
	}{
		wire:  wire(r),
		Total: json.Number(r.Total.String()),
	})
}

// OrderResult is the backend's answer to a placed order.
type OrderResult struct {
	ID    string          `json:"id"`
	Total decimal.Decimal `json:"total"`
}
