package receipt

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one purchased product instance from one receipt. Line items are
// created in bulk when a receipt is accepted and never modified afterwards.
type LineItem struct {
	ID            string          `json:"id"`
	Owner         int64           `json:"owner"`
	ProductName   string          `json:"product_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	WeightProduct bool            `json:"weight_product"`
}

// NewLineItem validates the invariants (quantity > 0, total price >= 0) and
// derives the weight flag: a product is weight-sold iff its quantity has a
// non-zero fractional part.
func NewLineItem(owner int64, name string, quantity, totalPrice decimal.Decimal, date time.Time) (LineItem, error) {
	if !quantity.IsPositive() {
		return LineItem{}, fmt.Errorf("quantity must be positive, got %s", quantity)
	}
	if totalPrice.IsNegative() {
		return LineItem{}, fmt.Errorf("total price must not be negative, got %s", totalPrice)
	}
	return LineItem{
		Owner:         owner,
		ProductName:   name,
		Quantity:      quantity,
		TotalPrice:    totalPrice,
		PurchaseDate:  date,
		WeightProduct: !quantity.IsInteger(),
	}, nil
}

// UnitPrice derives the per-unit price. Safe because quantity is validated
// positive at construction.
func (li LineItem) UnitPrice() decimal.Decimal {
	return li.TotalPrice.DivRound(li.Quantity, 2)
}

// PriceObservation is one (owner, product, date, unit price) sample used for
// trend analysis, decoupled from quantity. One observation is recorded per
// line item at ingestion time; append-only.
type PriceObservation struct {
	ID          string          `json:"id"`
	Owner       int64           `json:"owner"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Date        time.Time       `json:"date"`
}
