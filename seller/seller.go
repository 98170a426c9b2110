// Copyright (c) 2025 BVK Chaitanya

package seller

import (
	"context"
	"log/slog"
	"time"

	"github.com/bvk/broker/ledger"
	"github.com/shopspring/decimal"
)

// MaxReadingAge is how old a trend reading may be, measured from its
// observation timestamp, before the seller discards it unevaluated.
const MaxReadingAge = 5 * time.Minute

// Seller owns one purchase ledger and sells off purchases when the
// trend makes them profitable. The fee and the minimum margin are
// fixed for the seller's lifetime.
type Seller struct {
	acct ledger.Ledger

	fee ledger.Fee

	// minMarginPct is the smallest net margin, as a percentage of a
	// purchase's buying price, required to sell it.
	minMarginPct decimal.Decimal

	// now is replaced in tests.
	now func() time.Time
}

// New creates a seller with an empty ledger.
func New(fee ledger.Fee, minMarginPct decimal.Decimal) *Seller {
	return &Seller{
		fee:          fee,
		minMarginPct: minMarginPct,
		now:          time.Now,
	}
}

// Spawn starts a detached seller goroutine with an empty ledger. The
// goroutine runs until the inbound channel is closed or the context is
// canceled.
func Spawn(ctx context.Context, in <-chan Message, out chan<- *ledger.Offer, fee ledger.Fee, minMarginPct decimal.Decimal) {
	v := New(fee, minMarginPct)
	go func() {
		if err := v.Run(ctx, in, out); err != nil {
			slog.ErrorContext(ctx, "seller has stopped", "err", err)
		}
	}()
}

// Run consumes inbound messages until one of the two terminal
// conditions occurs: the inbound channel is closed, or ctx is canceled
// (which is how a vanished downstream consumer is observed -- a send
// on a plain channel cannot detect that its reader is gone). A stale
// trend reading is logged and skipped; it never stops the seller.
//
// Run blocks only while waiting for the next inbound message and while
// handing off an offer downstream. The out channel may be bounded; a
// full channel applies backpressure.
func (v *Seller) Run(ctx context.Context, in <-chan Message, out chan<- *ledger.Offer) error {
	for {
		var msg Message
		var ok bool
		select {
		case <-ctx.Done():
			slog.ErrorContext(ctx, "seller's offer consumer is gone; stopping", "cause", context.Cause(ctx))
			return context.Cause(ctx)
		case msg, ok = <-in:
			if !ok {
				slog.ErrorContext(ctx, "seller's input channel is closed; stopping")
				return nil
			}
		}

		offer := v.handle(ctx, msg)
		if offer == nil {
			continue
		}

		select {
		case <-ctx.Done():
			slog.ErrorContext(ctx, "seller's offer consumer is gone; stopping", "cause", context.Cause(ctx))
			return context.Cause(ctx)
		case out <- offer:
		}
	}
}

// handle dispatches one inbound message and returns the resulting
// offer, if any.
func (v *Seller) handle(ctx context.Context, msg Message) *ledger.Offer {
	switch m := msg.(type) {
	case TrendReading:
		if age := v.now().Sub(m.ObservedAt); age > MaxReadingAge {
			slog.WarnContext(ctx, "discarding outdated trend reading", "age", age, "trend", m.CurrentTrend)
			return nil
		}
		return Collect(&v.acct, m.CurrentTrend, v.fee, v.minMarginPct)

	case NewPurchase:
		v.acct.Add(m.Purchase)
		return nil

	default:
		// Message is a closed interface; no other variant exists.
		slog.ErrorContext(ctx, "seller received an unknown message type", "message", msg)
		return nil
	}
}
