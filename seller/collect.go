// Copyright (c) 2025 BVK Chaitanya

package seller

import (
	"github.com/bvk/broker/ledger"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Collect walks the ledger from the best (lowest-rate) purchase
// outward and removes every purchase whose net margin at the given
// rate clears the minimum. The removed purchases are returned as one
// offer, in the order they were popped (ascending buy rate). Returns
// nil when not even the best purchase clears the minimum.
//
// The walk stops at the first purchase that fails the threshold.
// Cheaper purchases are the most likely to be profitable, so a single
// pass from the front is a sound and cheap heuristic; it deliberately
// does not look past a failing purchase for a more profitable one
// sitting behind it in rate order.
func Collect(acct *ledger.Ledger, rate decimal.Decimal, fee ledger.Fee, minMarginPct decimal.Decimal) *ledger.Offer {
	var sells []*ledger.Purchase

	for best := acct.PeekBest(); best != nil; best = acct.PeekBest() {
		margin := best.MarginAfterFee(rate, fee)

		// The flat minimum margin is minMarginPct percent of the money
		// spent on the purchase.
		minimum := best.BuyingPrice().Div(hundred).Mul(minMarginPct)

		if !margin.GreaterThan(minimum) {
			break
		}
		sells = append(sells, acct.PopBest())
	}

	if len(sells) == 0 {
		return nil
	}
	return ledger.NewOffer(rate, sells)
}
