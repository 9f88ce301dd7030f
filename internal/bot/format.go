package bot

import (
	"fmt"
	"strings"

	"github.com/mkravets/receipt-stats-bot/internal/receipt"
	"github.com/mkravets/receipt-stats-bot/internal/stats"
)

const (
	startReply = `Welcome!

Available commands:
/receipt_upload - upload a receipt by its scan code
/stats - spending summary across all products
/product_stats - detailed statistics for one product
/help - full help`

	helpReply = `Commands:

/start - start over
/receipt_upload - upload a receipt by its scan code
/stats - spending summary across all products
/product_stats - detailed statistics for one product
/help - show this help

After a receipt is uploaded its items are saved automatically for the statistics.`

	receiptCodePrompt   = "Send the receipt scan code as text:"
	productNamePrompt   = "Type the product name:"
	unknownCommandReply = "I don't know that command :("
	emptyReceiptReply   = "The receipt contained no items, nothing was saved."
	noPurchasesReply    = "No purchases recorded yet. Upload a few receipts first."

	lookupFailureReply = "Could not reach the receipt service. Please try again later."
	parseFailureReply  = "The receipt service returned an unreadable response, nothing was saved."
	saveFailureReply   = "The receipt could not be saved, nothing from it was kept."
	queryFailureReply  = "Something went wrong while reading your statistics. Please try again."
)

const displayDateLayout = "02-01-2006"

// limitWords truncates a product name for display to at most max words.
func limitWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ")
}

func quantityLabel(weight bool) string {
	if weight {
		return "kg"
	}
	return "pcs"
}

// formatReceipt renders the post-upload confirmation listing each saved item.
func formatReceipt(items []receipt.LineItem) string {
	var sb strings.Builder
	sb.WriteString("Receipt saved.\n\nPurchased items:\n")
	for _, item := range items {
		quantity := item.Quantity.String()
		if item.WeightProduct {
			quantity = item.Quantity.StringFixed(3)
		}
		fmt.Fprintf(&sb, "• %s: %s %s x %s = %s, date %s\n",
			limitWords(item.ProductName, 2),
			quantity,
			quantityLabel(item.WeightProduct),
			item.UnitPrice().StringFixed(2),
			item.TotalPrice.StringFixed(2),
			item.PurchaseDate.Format(displayDateLayout),
		)
	}
	sb.WriteString("\nThe data is stored for your statistics.")
	return sb.String()
}

// formatSummaries renders the ranked all-products spending report.
func formatSummaries(summaries []stats.ProductSummary) string {
	var sb strings.Builder
	sb.WriteString("Spending by product:\n\n")
	for rank, summary := range summaries {
		quantity := summary.TotalQuantity.String()
		if summary.WeightProduct {
			quantity = summary.TotalQuantity.StringFixed(3)
		}
		fmt.Fprintf(&sb, "%d. %s (%s %s)\n   %s\n\n",
			rank+1,
			summary.TotalSpent.StringFixed(2),
			quantity,
			quantityLabel(summary.WeightProduct),
			summary.ProductName,
		)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatDetail renders the single-product statistics report.
func formatDetail(detail *stats.ProductDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Statistics: %s\n\n", strings.ToUpper(detail.ProductName))

	fmt.Fprintf(&sb, "Price range: %s - %s\n", detail.MinPrice.StringFixed(2), detail.MaxPrice.StringFixed(2))
	fmt.Fprintf(&sb, " • Average: %s\n", detail.AveragePrice.StringFixed(2))
	fmt.Fprintf(&sb, " • Spread: %s\n\n", detail.PriceSpread.StringFixed(2))

	sb.WriteString("Trend:\n")
	sb.WriteString(trendLine(detail) + "\n")
	fmt.Fprintf(&sb, " • Observations: %d\n", detail.Observations)
	fmt.Fprintf(&sb, " • Period: %s - %s\n\n",
		detail.FirstDate.Format(displayDateLayout), detail.LastDate.Format(displayDateLayout))

	sb.WriteString("Recent price changes:\n")
	for _, point := range detail.RecentHistory() {
		line := fmt.Sprintf(" • %s: %s", point.Date.Format(displayDateLayout), point.UnitPrice.StringFixed(2))
		if annotation := pointAnnotation(point); annotation != "" {
			line += " " + annotation
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func trendLine(detail *stats.ProductDetail) string {
	if detail.Observations < 2 {
		return " Not enough observations for a trend yet"
	}
	trend := detail.Trend
	switch trend.Direction {
	case stats.TrendUp:
		return fmt.Sprintf(" Rising +%s (+%s%%) over %d days",
			trend.Change.StringFixed(2), trend.ChangePercent.StringFixed(1), trend.ElapsedDays)
	case stats.TrendDown:
		return fmt.Sprintf(" Falling %s (%s%%) over %d days",
			trend.Change.StringFixed(2), trend.ChangePercent.StringFixed(1), trend.ElapsedDays)
	default:
		return " Price is stable"
	}
}

// pointAnnotation renders the per-point change marker: up-arrow for a rise,
// down-arrow for a fall, neutral for exactly zero, empty when the point has
// no usable predecessor.
func pointAnnotation(point stats.PricePoint) string {
	if !point.HasChange {
		return ""
	}
	switch point.Direction {
	case stats.TrendUp:
		return fmt.Sprintf("(↑ +%s%%)", point.ChangePercent.StringFixed(1))
	case stats.TrendDown:
		return fmt.Sprintf("(↓ %s%%)", point.ChangePercent.StringFixed(1))
	default:
		return "(→ 0%)"
	}
}

func productNotFoundReply(product string) string {
	return fmt.Sprintf("Product %q was not found in your purchases.\n\nCheck the spelling - names must match the receipt exactly.", product)
}
