// Copyright (c) 2025 BVK Chaitanya

package ledger

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Fee is the cut the marketplace takes from a sale. The zero value
// takes no cut.
//
// Only the sell-side fee belongs here. The fee paid to buy the
// bitcoins is already accounted for in the purchase exchange rate.
type Fee struct {
	pct decimal.Decimal
}

// Percentage returns a fee of the given percentage points, e.g.
// Percentage(decimal.NewFromInt(10)) takes a 10% cut.
func Percentage(pct decimal.Decimal) Fee {
	return Fee{pct: pct}
}

// NoFee is the fee policy of a marketplace that takes no cut.
var NoFee = Fee{}

// NetMargin returns the margin left over after the fee is deducted
// from the given gross margin.
func (f Fee) NetMargin(gross decimal.Decimal) decimal.Decimal {
	if f.pct.IsZero() {
		return gross
	}
	return gross.Sub(gross.Div(hundred).Mul(f.pct))
}

func (f Fee) String() string {
	if f.pct.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s%%", f.pct)
}

func (f Fee) LogValue() slog.Value {
	return slog.StringValue(f.String())
}
