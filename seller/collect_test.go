// Copyright (c) 2025 BVK Chaitanya

package seller

import (
	"testing"

	"github.com/bvk/broker/ledger"
	"github.com/shopspring/decimal"
)

func TestCollectProfitablePurchases(t *testing.T) {
	fee := ledger.Percentage(decimal.NewFromInt(1))

	for1000 := ledger.NewPurchase(decimal.NewFromInt(5), decimal.NewFromInt(1000))
	for900 := ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(900))
	for450 := ledger.NewPurchase(decimal.NewFromInt(5), decimal.NewFromInt(450))

	fill := func() *ledger.Ledger {
		var acct ledger.Ledger
		acct.Add(for1000)
		acct.Add(for450)
		acct.Add(for900)
		return &acct
	}

	// At 20% minimum margin only the rate-450 purchase clears the bar:
	// its net margin is 2722.5 against a 450 minimum. The rate-900
	// purchase nets 99 against a 180 minimum, which stops the walk.
	{
		acct := fill()
		trend := decimal.NewFromInt(1000)
		offer := Collect(acct, trend, fee, decimal.NewFromInt(20))
		if offer == nil {
			t.Fatal("want an offer for the rate-450 purchase, got nil")
		}
		if len(offer.Purchases) != 1 || offer.Purchases[0] != for450 {
			t.Fatalf("want [%v], got %v", for450, offer.Purchases)
		}
		if !offer.Rate.Equal(trend) {
			t.Fatalf("want rate %s, got %s", trend, offer.Rate)
		}
		if acct.Len() != 2 {
			t.Fatalf("want 2 purchases left, got %d", acct.Len())
		}
	}

	// At 5% the rate-900 purchase clears the bar too (99 > 45), but the
	// rate-1000 purchase has zero margin and stops the walk.
	{
		acct := fill()
		offer := Collect(acct, decimal.NewFromInt(1000), fee, decimal.NewFromInt(5))
		if offer == nil {
			t.Fatal("want an offer for two purchases, got nil")
		}
		if len(offer.Purchases) != 2 || offer.Purchases[0] != for450 || offer.Purchases[1] != for900 {
			t.Fatalf("want [%v %v], got %v", for450, for900, offer.Purchases)
		}
	}

	// Below every buy rate even the best purchase loses money, so there
	// is no offer and the ledger is untouched.
	{
		acct := fill()
		if offer := Collect(acct, decimal.NewFromInt(400), fee, decimal.NewFromInt(5)); offer != nil {
			t.Fatalf("want nil, got %v", offer)
		}
		if acct.Len() != 3 {
			t.Fatalf("want 3 purchases left, got %d", acct.Len())
		}
	}
}

// A second collection at the same rate finds nothing because the first
// one already removed every qualifying purchase.
func TestCollectIsIdempotent(t *testing.T) {
	var acct ledger.Ledger
	acct.Add(ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(200)))
	acct.Add(ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(300)))

	trend := decimal.NewFromInt(1000)
	minMargin := decimal.NewFromInt(5)

	first := Collect(&acct, trend, ledger.NoFee, minMargin)
	if first == nil || len(first.Purchases) != 2 {
		t.Fatalf("want an offer for both purchases, got %v", first)
	}
	if second := Collect(&acct, trend, ledger.NoFee, minMargin); second != nil {
		t.Fatalf("want nil, got %v", second)
	}
}

// An exactly-at-threshold margin does not sell; the comparison is
// strictly greater-than.
func TestCollectThresholdIsExclusive(t *testing.T) {
	// Buying price 100, margin at trend 110 is exactly 10, which equals
	// the 10% minimum.
	var acct ledger.Ledger
	acct.Add(ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(100)))

	if offer := Collect(&acct, decimal.NewFromInt(110), ledger.NoFee, decimal.NewFromInt(10)); offer != nil {
		t.Fatalf("want nil, got %v", offer)
	}
	if offer := Collect(&acct, decimal.RequireFromString("110.01"), ledger.NoFee, decimal.NewFromInt(10)); offer == nil {
		t.Fatal("want an offer just above the threshold, got nil")
	}
}
