// Copyright (c) 2025 BVK Chaitanya

// Package gobs defines the gob-encoded record types stored in the
// database. Types in this package must stay backward compatible; add
// fields, never repurpose them.
package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord is the journal entry for one executed buy.
type PurchaseRecord struct {
	ID string

	// Size is the bitcoin quantity bought.
	Size decimal.Decimal

	// Rate is the effective $/BTC rate, buy fee included.
	Rate decimal.Decimal

	CreatedAt time.Time
}

// OfferRecord is the journal entry for one emitted sell offer.
type OfferRecord struct {
	ID string

	// Rate is the $/BTC rate the offer was evaluated against.
	Rate decimal.Decimal

	Purchases []*PurchaseRecord

	CreatedAt time.Time
}

// ServerState holds daemon-wide settings saved across restarts.
type ServerState struct {
	// ProductID is the exchange product the broker trades, e.g. BTC-USD.
	ProductID string

	// FeePct is the sell-side marketplace fee in percentage points.
	FeePct decimal.Decimal

	// MinMarginPct is the minimum net margin, as a percentage of a
	// purchase's buying price, required to sell it.
	MinMarginPct decimal.Decimal
}

// TelegramState remembers the notification chat across restarts.
type TelegramState struct {
	ChatID int64
}
