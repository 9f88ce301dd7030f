package receipt

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Service ingests scanned receipts: it fetches the itemized payload for a
// scan code, parses it and persists the resulting records for the owner.
type Service struct {
	lookup Lookup
	store  Store
}

// NewService creates a Service.
func NewService(lookup Lookup, store Store) *Service {
	return &Service{
		lookup: lookup,
		store:  store,
	}
}

// Upload runs the ingestion pipeline for one scan code. It returns the line
// items that were persisted. A structurally valid receipt with no items
// returns an empty slice and persists nothing, so the caller can report the
// outcome explicitly. Failures are typed: *LookupError when the checker
// service fails, *ParseError when the payload is malformed, *PersistenceError
// when the transactional write fails.
func (s *Service) Upload(ctx context.Context, owner int64, code string) ([]LineItem, error) {
	raw, err := s.lookup.Fetch(ctx, code)
	if err != nil {
		slog.Error("receipt lookup failed", "owner", owner, "error", err)
		return nil, &LookupError{Err: err}
	}

	parsed, err := ParseLookupResponse(raw)
	if err != nil {
		slog.Error("receipt payload unparseable", "owner", owner, "error", err)
		return nil, err
	}

	if len(parsed.Items) == 0 {
		slog.Info("receipt contained no items", "owner", owner)
		return []LineItem{}, nil
	}

	items := make([]LineItem, 0, len(parsed.Items))
	observations := make([]PriceObservation, 0, len(parsed.Items))
	for _, parsedItem := range parsed.Items {
		item, err := NewLineItem(owner, parsedItem.Name, parsedItem.Quantity, parsedItem.TotalPrice, parsed.Date)
		if err != nil {
			return nil, &ParseError{Reason: "invalid item", Err: err}
		}
		item.ID = uuid.NewString()
		items = append(items, item)

		observations = append(observations, PriceObservation{
			ID:          uuid.NewString(),
			Owner:       owner,
			ProductName: parsedItem.Name,
			UnitPrice:   parsedItem.UnitPrice,
			Date:        parsed.Date,
		})
	}

	if err := s.store.SaveReceipt(items, observations); err != nil {
		slog.Error("receipt save failed", "owner", owner, "items", len(items), "error", err)
		return nil, &PersistenceError{Err: err}
	}

	slog.Info("receipt ingested", "owner", owner, "items", len(items), "date", parsed.Date.Format("2006-01-02"))
	return items, nil
}
