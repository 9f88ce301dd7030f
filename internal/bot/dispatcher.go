package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mkravets/receipt-stats-bot/internal/receipt"
	"github.com/mkravets/receipt-stats-bot/internal/session"
	"github.com/mkravets/receipt-stats-bot/internal/stats"
)

const (
	cmdStart         = "/start"
	cmdReceiptUpload = "/receipt_upload"
	cmdStats         = "/stats"
	cmdProductStats  = "/product_stats"
	cmdHelp          = "/help"
)

// Ingestor runs the receipt ingestion pipeline for a scan code.
type Ingestor interface {
	Upload(ctx context.Context, owner int64, code string) ([]receipt.LineItem, error)
}

// Statistics answers the two aggregate queries.
type Statistics interface {
	SummarizeAll(owner int64) ([]stats.ProductSummary, error)
	Detail(owner int64, product string) (*stats.ProductDetail, error)
}

// Dispatcher routes a conversation's free-text messages: commands are matched
// directly, and when a conversation is waiting for a receipt code or a
// product name the next message is consumed as that input. It owns no
// business logic.
type Dispatcher struct {
	ingestor Ingestor
	stats    Statistics
	sessions *session.Store
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(ingestor Ingestor, statistics Statistics, sessions *session.Store) *Dispatcher {
	return &Dispatcher{
		ingestor: ingestor,
		stats:    statistics,
		sessions: sessions,
	}
}

// Dispatch handles one inbound message for one owner and returns the reply
// text. Waiting states are cleared before the pending operation runs, so a
// failure inside a handler can never leave a conversation stuck waiting.
func (d *Dispatcher) Dispatch(ctx context.Context, owner int64, text string) string {
	text = strings.TrimSpace(text)

	switch d.sessions.Get(owner) {
	case session.AwaitingReceiptCode:
		d.sessions.Clear(owner)
		return d.processReceiptCode(ctx, owner, text)
	case session.AwaitingProductName:
		d.sessions.Clear(owner)
		return d.processProductQuery(owner, text)
	}

	switch text {
	case cmdStart:
		return startReply
	case cmdReceiptUpload:
		d.sessions.Set(owner, session.AwaitingReceiptCode)
		return receiptCodePrompt
	case cmdStats:
		return d.processSummary(owner)
	case cmdProductStats:
		d.sessions.Set(owner, session.AwaitingProductName)
		return productNamePrompt
	case cmdHelp:
		return helpReply
	default:
		return unknownCommandReply
	}
}

func (d *Dispatcher) processReceiptCode(ctx context.Context, owner int64, code string) string {
	items, err := d.ingestor.Upload(ctx, owner, code)
	if err != nil {
		slog.Error("receipt upload failed", "owner", owner, "error", err)
		return ingestFailureReply(err)
	}
	if len(items) == 0 {
		return emptyReceiptReply
	}
	return formatReceipt(items)
}

func (d *Dispatcher) processProductQuery(owner int64, product string) string {
	detail, err := d.stats.Detail(owner, product)
	if err != nil {
		slog.Error("product query failed", "owner", owner, "product", product, "error", err)
		return queryFailureReply
	}
	if detail == nil {
		return productNotFoundReply(product)
	}
	return formatDetail(detail)
}

func (d *Dispatcher) processSummary(owner int64) string {
	summaries, err := d.stats.SummarizeAll(owner)
	if err != nil {
		slog.Error("summary query failed", "owner", owner, "error", err)
		return queryFailureReply
	}
	if len(summaries) == 0 {
		return noPurchasesReply
	}
	return formatSummaries(summaries)
}

// ingestFailureReply picks a user-facing message for a failed upload.
func ingestFailureReply(err error) string {
	var lookupErr *receipt.LookupError
	if errors.As(err, &lookupErr) {
		return lookupFailureReply
	}
	var parseErr *receipt.ParseError
	if errors.As(err, &parseErr) {
		return parseFailureReply
	}
	return saveFailureReply
}
