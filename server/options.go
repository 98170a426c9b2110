// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Options struct {
	// ProductID holds the exchange product whose trend drives selling,
	// for example, "BTC-USD".
	ProductID string

	// FeePct holds the sell-side fee percentage charged by the exchange.
	FeePct decimal.Decimal

	// MinMarginPct holds the minimum profit margin, as a percentage of a
	// purchase's buying price, required to sell it.
	MinMarginPct decimal.Decimal

	// BuySpend holds the cash budget converted into a purchase on every
	// buy interval. Buying is disabled when zero.
	BuySpend decimal.Decimal

	// BuyInterval holds the time between automatic buys.
	BuyInterval time.Duration

	// MaxRecentOffers holds the number of recent offers retained in
	// memory for the status api.
	MaxRecentOffers int
}

func (v *Options) setDefaults() {
	if v.ProductID == "" {
		v.ProductID = "BTC-USD"
	}
	if v.BuyInterval == 0 {
		v.BuyInterval = 24 * time.Hour
	}
	if v.MaxRecentOffers == 0 {
		v.MaxRecentOffers = 10
	}
}

func (v *Options) Check() error {
	if v.FeePct.IsNegative() || v.FeePct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("fee percentage %s is invalid", v.FeePct)
	}
	if v.MinMarginPct.IsNegative() {
		return fmt.Errorf("minimum margin percentage %s is invalid", v.MinMarginPct)
	}
	if v.BuySpend.IsNegative() {
		return fmt.Errorf("buy spend amount %s is invalid", v.BuySpend)
	}
	return nil
}
