// Copyright (c) 2025 BVK Chaitanya

package ledger

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is a proposal to sell a batch of purchases on the marketplace
// at a given rate. A single offer may cover several purchases because
// profitable purchases are merged into one sale when the rate is good.
//
// Offers are transient: they are handed to the downstream execution
// component the moment they are created and are never stored by the
// core.
type Offer struct {
	// ID is the unique id generated when the offer was created.
	ID uuid.UUID

	// Rate is the $/BTC exchange rate the offer was evaluated against.
	Rate decimal.Decimal

	// Purchases lists the purchases covered by the offer, in ascending
	// buy-rate order (cheapest first).
	Purchases []*Purchase
}

// NewOffer creates an offer with a freshly generated id.
func NewOffer(rate decimal.Decimal, purchases []*Purchase) *Offer {
	return &Offer{
		ID:        uuid.New(),
		Rate:      rate,
		Purchases: purchases,
	}
}

// Size returns the total bitcoin quantity across all purchases in the
// offer.
func (v *Offer) Size() decimal.Decimal {
	var sum decimal.Decimal
	for _, p := range v.Purchases {
		sum = sum.Add(p.Size)
	}
	return sum
}

func (v *Offer) String() string {
	return fmt.Sprintf("offer:%s:%d@%s", v.ID, len(v.Purchases), v.Rate.StringFixed(5))
}

func (v *Offer) LogValue() slog.Value {
	return slog.StringValue(v.String())
}
