package receipt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// apiDateTimeLayout is the local-datetime format the lookup service uses.
const apiDateTimeLayout = "2006-01-02T15:04:05"

// ParsedReceipt is the structured form of one lookup response: the purchase
// date (time-of-day discarded) and the ordered item list.
type ParsedReceipt struct {
	Date  time.Time
	Items []ParsedItem
}

// ParsedItem is one item line with prices already converted from minor
// currency units to major-unit decimals.
type ParsedItem struct {
	Name       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Pointer fields so that absent keys are distinguishable from zero values.
type lookupResponse struct {
	Data struct {
		JSON *receiptPayload `json:"json"`
	} `json:"data"`
}

type receiptPayload struct {
	DateTime *string       `json:"dateTime"`
	Items    []itemPayload `json:"items"`
}

type itemPayload struct {
	Name     *string          `json:"name"`
	Quantity *decimal.Decimal `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
	Sum      *decimal.Decimal `json:"sum"`
}

// ParseLookupResponse converts a raw lookup-service payload into a
// ParsedReceipt. An empty item list is not an error: it yields an empty Items
// slice and the caller reports it as a distinct "nothing uploaded" outcome.
// Any missing required field, malformed timestamp or non-numeric value fails
// with a *ParseError.
func ParseLookupResponse(raw []byte) (*ParsedReceipt, error) {
	var resp lookupResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ParseError{Reason: "invalid response body", Err: err}
	}

	payload := resp.Data.JSON
	if payload == nil {
		return nil, &ParseError{Reason: "missing data.json object"}
	}
	if payload.DateTime == nil || *payload.DateTime == "" {
		return nil, &ParseError{Reason: "missing dateTime"}
	}

	purchasedAt, err := time.Parse(apiDateTimeLayout, *payload.DateTime)
	if err != nil {
		return nil, &ParseError{Reason: "malformed dateTime", Err: err}
	}
	date := time.Date(purchasedAt.Year(), purchasedAt.Month(), purchasedAt.Day(), 0, 0, 0, 0, time.UTC)

	items := make([]ParsedItem, 0, len(payload.Items))
	for i, item := range payload.Items {
		if item.Name == nil {
			return nil, &ParseError{Reason: itemFieldMissing(i, "name")}
		}
		if item.Quantity == nil {
			return nil, &ParseError{Reason: itemFieldMissing(i, "quantity")}
		}
		if item.Price == nil {
			return nil, &ParseError{Reason: itemFieldMissing(i, "price")}
		}
		if item.Sum == nil {
			return nil, &ParseError{Reason: itemFieldMissing(i, "sum")}
		}
		if !item.Quantity.IsPositive() {
			return nil, &ParseError{Reason: itemField(i, "quantity must be positive")}
		}
		if item.Price.IsNegative() {
			return nil, &ParseError{Reason: itemField(i, "price must not be negative")}
		}
		if item.Sum.IsNegative() {
			return nil, &ParseError{Reason: itemField(i, "sum must not be negative")}
		}

		items = append(items, ParsedItem{
			Name:       *item.Name,
			Quantity:   *item.Quantity,
			UnitPrice:  item.Price.Shift(-2),
			TotalPrice: item.Sum.Shift(-2),
		})
	}

	return &ParsedReceipt{Date: date, Items: items}, nil
}

func itemFieldMissing(index int, field string) string {
	return itemField(index, "missing "+field)
}

func itemField(index int, msg string) string {
	return fmt.Sprintf("item %d: %s", index, msg)
}
