// Copyright (c) 2025 BVK Chaitanya

// Package seller implements the actor that decides when to sell owned
// bitcoins. The seller owns the purchase ledger exclusively and
// consumes an ordered stream of inbound messages; when a fresh trend
// reading makes some purchases profitable enough, it emits an offer
// for the downstream exchange-integration component to execute.
package seller

import (
	"time"

	"github.com/bvk/broker/ledger"
	"github.com/shopspring/decimal"
)

// Message is the closed set of inbound messages a seller consumes.
// Messages are handled in the exact order they arrive, so a
// NewPurchase sent before a TrendReading is always reflected in that
// reading's evaluation.
type Message interface {
	sellerMessage()
}

// TrendReading reports an observation of the current $/BTC exchange
// rate. Readings observed more than MaxReadingAge ago are discarded
// without evaluation.
type TrendReading struct {
	CurrentTrend decimal.Decimal
	ObservedAt   time.Time
}

// NewPurchase reports that the buyer made a purchase the seller should
// now try to sell for a better price.
type NewPurchase struct {
	Purchase *ledger.Purchase
}

func (TrendReading) sellerMessage() {}
func (NewPurchase) sellerMessage()  {}
