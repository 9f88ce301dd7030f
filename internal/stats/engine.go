package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkravets/receipt-stats-bot/internal/receipt"
)

// LineItemSource provides an owner's line items ordered by purchase date,
// then product name.
type LineItemSource interface {
	LineItemsByOwner(owner int64) ([]receipt.LineItem, error)
}

// ObservationSource provides an owner's price observations for one product
// ordered by date.
type ObservationSource interface {
	ObservationsByProduct(owner int64, product string) ([]receipt.PriceObservation, error)
}

// Engine computes purchase statistics from persisted records. All arithmetic
// stays in exact decimals; callers convert to strings or floats only when
// rendering.
type Engine struct {
	items        LineItemSource
	observations ObservationSource
}

// NewEngine creates an Engine.
func NewEngine(items LineItemSource, observations ObservationSource) *Engine {
	return &Engine{
		items:        items,
		observations: observations,
	}
}

// SummarizeAll groups the owner's line items by exact product name and sums
// quantity and spend per group. The result is ordered by total spend
// descending; ties keep the date-then-name order the records arrive in.
// An owner with no history gets an empty list.
func (e *Engine) SummarizeAll(owner int64) ([]ProductSummary, error) {
	items, err := e.items.LineItemsByOwner(owner)
	if err != nil {
		return nil, fmt.Errorf("fetching line items: %w", err)
	}

	summaries := make([]ProductSummary, 0)
	index := make(map[string]int)
	for _, item := range items {
		pos, ok := index[item.ProductName]
		if !ok {
			index[item.ProductName] = len(summaries)
			summaries = append(summaries, ProductSummary{
				ProductName:   item.ProductName,
				TotalQuantity: item.Quantity,
				TotalSpent:    item.TotalPrice,
				WeightProduct: item.WeightProduct,
			})
			continue
		}
		summaries[pos].TotalQuantity = summaries[pos].TotalQuantity.Add(item.Quantity)
		summaries[pos].TotalSpent = summaries[pos].TotalSpent.Add(item.TotalPrice)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalSpent.GreaterThan(summaries[j].TotalSpent)
	})
	return summaries, nil
}

// Detail computes the single-product report. A product with no observations
// returns (nil, nil): not found is a normal outcome, not an error.
func (e *Engine) Detail(owner int64, product string) (*ProductDetail, error) {
	observations, err := e.observations.ObservationsByProduct(owner, product)
	if err != nil {
		return nil, fmt.Errorf("fetching observations: %w", err)
	}
	if len(observations) == 0 {
		return nil, nil
	}

	minPrice := observations[0].UnitPrice
	maxPrice := observations[0].UnitPrice
	sum := decimal.Zero
	for _, obs := range observations {
		if obs.UnitPrice.LessThan(minPrice) {
			minPrice = obs.UnitPrice
		}
		if obs.UnitPrice.GreaterThan(maxPrice) {
			maxPrice = obs.UnitPrice
		}
		sum = sum.Add(obs.UnitPrice)
	}

	detail := &ProductDetail{
		ProductName:  product,
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		AveragePrice: sum.DivRound(decimal.NewFromInt(int64(len(observations))), 2),
		PriceSpread:  maxPrice.Sub(minPrice),
		Trend:        calculateTrend(observations),
		Observations: len(observations),
		FirstDate:    observations[0].Date,
		LastDate:     observations[len(observations)-1].Date,
		History:      buildHistory(observations),
	}
	return detail, nil
}

// calculateTrend compares the earliest and latest observation. Fewer than two
// observations means a stable trend with zero change and zero elapsed days.
func calculateTrend(observations []receipt.PriceObservation) Trend {
	if len(observations) < 2 {
		return Trend{Direction: TrendStable, Change: decimal.Zero, ChangePercent: decimal.Zero}
	}

	first := observations[0]
	last := observations[len(observations)-1]
	change := last.UnitPrice.Sub(first.UnitPrice)

	percent := decimal.Zero
	if !first.UnitPrice.IsZero() {
		percent = change.DivRound(first.UnitPrice, 4).Mul(decimal.NewFromInt(100))
	}

	return Trend{
		Direction:     directionOf(change),
		Change:        change,
		ChangePercent: percent,
		ElapsedDays:   daysBetween(first.Date, last.Date),
	}
}

// buildHistory annotates every observation with the percent change relative
// to its predecessor. The first point and any point following a zero price
// carry no annotation.
func buildHistory(observations []receipt.PriceObservation) []PricePoint {
	history := make([]PricePoint, 0, len(observations))
	for i, obs := range observations {
		point := PricePoint{
			Date:      obs.Date,
			UnitPrice: obs.UnitPrice,
		}
		if i > 0 && !observations[i-1].UnitPrice.IsZero() {
			previous := observations[i-1].UnitPrice
			change := obs.UnitPrice.Sub(previous)
			point.HasChange = true
			point.ChangePercent = change.DivRound(previous, 4).Mul(decimal.NewFromInt(100))
			point.Direction = directionOf(change)
		}
		history = append(history, point)
	}
	return history
}

func directionOf(change decimal.Decimal) TrendDirection {
	switch change.Sign() {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return TrendStable
	}
}

// daysBetween counts whole calendar days between two dates. Observations are
// stored at midnight UTC, so an hour-based difference is exact.
func daysBetween(first, last time.Time) int {
	return int(last.Sub(first).Hours() / 24)
}
