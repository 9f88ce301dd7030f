package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrendDirection classifies a price movement.
type TrendDirection int

const (
	TrendStable TrendDirection = iota
	TrendUp
	TrendDown
)

func (d TrendDirection) String() string {
	switch d {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "stable"
	}
}

// ProductSummary is one row of the aggregate-by-product report: everything a
// user spent on one product name across all receipts.
type ProductSummary struct {
	ProductName   string
	TotalQuantity decimal.Decimal
	TotalSpent    decimal.Decimal
	WeightProduct bool
}

// Trend describes the unit-price movement between the earliest and latest
// observation of one product.
type Trend struct {
	Direction     TrendDirection
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	ElapsedDays   int
}

// PricePoint is one observation in a product's price history, annotated with
// the percent change relative to the immediately preceding point. HasChange
// is false for the first point and when the preceding price is exactly zero.
type PricePoint struct {
	Date          time.Time
	UnitPrice     decimal.Decimal
	HasChange     bool
	ChangePercent decimal.Decimal
	Direction     TrendDirection
}

// HistoryDisplayLimit caps how many history points a report shows. It is a
// presentation policy only: Detail always computes over the full history.
const HistoryDisplayLimit = 5

// ProductDetail is the single-product statistics report.
type ProductDetail struct {
	ProductName  string
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	AveragePrice decimal.Decimal
	PriceSpread  decimal.Decimal
	Trend        Trend
	Observations int
	FirstDate    time.Time
	LastDate     time.Time
	History      []PricePoint
}

// RecentHistory returns the most recent HistoryDisplayLimit points in
// chronological order.
func (d *ProductDetail) RecentHistory() []PricePoint {
	if len(d.History) <= HistoryDisplayLimit {
		return d.History
	}
	return d.History[len(d.History)-HistoryDisplayLimit:]
}
