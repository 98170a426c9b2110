// Copyright (c) 2025 BVK Chaitanya

// Package ledger implements the purchase ledger -- the record of past
// bitcoin buys ordered by their exchange rate -- along with the fee and
// margin arithmetic used to decide which purchases are worth selling.
package ledger

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase holds the transaction history of one buy request at the
// market. The lower the exchange rate, the better the purchase. A
// purchase never changes after it is created; only its membership in
// the Ledger changes.
type Purchase struct {
	// ID is the unique id generated when the purchase was made.
	ID uuid.UUID

	// Size is how much bitcoin was bought with this purchase.
	Size decimal.Decimal

	// Rate is the $/BTC exchange rate for the purchase. This rate already
	// accounts for the fee paid to buy, so the exact price paid for the
	// purchase is Size*Rate.
	Rate decimal.Decimal
}

// NewPurchase creates a purchase with a freshly generated id. Random
// ids keep purchases unique with overwhelming probability; the Ledger
// itself performs no uniqueness check.
func NewPurchase(size, rate decimal.Decimal) *Purchase {
	return &Purchase{
		ID:   uuid.New(),
		Size: size,
		Rate: rate,
	}
}

func (p *Purchase) String() string {
	return fmt.Sprintf("purchase:%s:%s@%s", p.ID, p.Size, p.Rate.StringFixed(5))
}

func (p *Purchase) LogValue() slog.Value {
	return slog.StringValue(p.String())
}

func (p *Purchase) Check() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("purchase id cannot be empty")
	}
	if p.Size.IsZero() {
		return fmt.Errorf("purchase size cannot be zero")
	}
	if p.Size.IsNegative() {
		return fmt.Errorf("purchase size cannot be negative")
	}
	if p.Rate.IsNegative() {
		return fmt.Errorf("purchase rate cannot be negative")
	}
	return nil
}

// BuyingPrice returns the total amount paid for the purchase,
// including the buy-side fee.
func (p *Purchase) BuyingPrice() decimal.Decimal {
	return p.Size.Mul(p.Rate)
}

// Margin returns the profit made on the purchase if it was sold at the
// given exchange rate, ignoring the sell-side fee.
func (p *Purchase) Margin(trend decimal.Decimal) decimal.Decimal {
	return p.Size.Mul(trend).Sub(p.BuyingPrice())
}

// MarginAfterFee returns the profit made on the purchase if it was
// sold at the given exchange rate, after deducting the marketplace's
// cut.
func (p *Purchase) MarginAfterFee(trend decimal.Decimal, fee Fee) decimal.Decimal {
	return fee.NetMargin(p.Margin(trend))
}
