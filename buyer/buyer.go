// Copyright (c) 2025 BVK Chaitanya

// Package buyer implements the cost-averaging buyer actor. On a fixed
// interval it converts a fixed cash budget into bitcoin at the latest
// observed market price and reports the purchase to the seller, which
// decides when to sell it back.
package buyer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bvk/broker/coinbase"
	"github.com/bvk/broker/ledger"
	"github.com/bvk/broker/seller"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
)

var hundred = decimal.NewFromInt(100)

type Buyer struct {
	// spend is the cash budget for each buy.
	spend decimal.Decimal

	// every is the interval between buys.
	every time.Duration

	// feePct is the buy-side marketplace fee in percentage points. The
	// fee is folded into the purchase's recorded rate, so downstream
	// margin arithmetic never sees it separately.
	feePct decimal.Decimal
}

func New(spend decimal.Decimal, every time.Duration, feePct decimal.Decimal) (*Buyer, error) {
	if spend.IsZero() || spend.IsNegative() {
		return nil, fmt.Errorf("buy budget must be positive")
	}
	if every <= 0 {
		return nil, fmt.Errorf("buy interval must be positive")
	}
	if feePct.IsNegative() {
		return nil, fmt.Errorf("buy fee cannot be negative")
	}
	return &Buyer{spend: spend, every: every, feePct: feePct}, nil
}

// Purchase converts the cash budget into a purchase at the given
// market price, gross of the buy-side fee: the recorded rate is the
// effective $/BTC paid, so Size*Rate equals the budget.
func (v *Buyer) Purchase(price decimal.Decimal) *ledger.Purchase {
	rate := price.Mul(hundred.Add(v.feePct)).Div(hundred)
	size := v.spend.DivRound(rate, 8)
	return ledger.NewPurchase(size, rate)
}

// Run buys on the configured interval until the context is canceled.
// Each buy uses the most recent price from the ticker feed; intervals
// with no price observation are skipped.
func (v *Buyer) Run(ctx context.Context, tickers *topic.Receiver[coinbase.Ticker], out chan<- seller.Message) error {
	tickerCh, err := topic.ReceiveCh(tickers)
	if err != nil {
		return err
	}

	timerCh := time.NewTicker(v.every)
	defer timerCh.Stop()

	var last coinbase.Ticker
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)

		case ticker, ok := <-tickerCh:
			if !ok {
				return nil
			}
			last = ticker

		case <-timerCh.C:
			if last.Price.IsZero() {
				slog.Warn("no market price observed yet; skipping this buy")
				continue
			}
			p := v.Purchase(last.Price)
			slog.Info("made a new purchase", "purchase", p, "price", last.Price)

			select {
			case <-ctx.Done():
				return context.Cause(ctx)
			case out <- seller.NewPurchase{Purchase: p}:
			}
		}
	}
}
