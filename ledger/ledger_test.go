// Copyright (c) 2025 BVK Chaitanya

package ledger

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBestIsLowestRate(t *testing.T) {
	cheap := NewPurchase(decimal.NewFromInt(2), decimal.NewFromInt(100))
	costly := NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(200))

	var acct Ledger
	acct.Add(costly)
	acct.Add(cheap)

	if p := acct.PeekBest(); p != cheap {
		t.Fatalf("want %v, got %v", cheap, p)
	}
	if p := acct.PopBest(); p != cheap {
		t.Fatalf("want %v, got %v", cheap, p)
	}
	if p := acct.PopBest(); p != costly {
		t.Fatalf("want %v, got %v", costly, p)
	}
	if p := acct.PopBest(); p != nil {
		t.Fatalf("want nil, got %v", p)
	}
}

func TestPopOrderIsNonDecreasing(t *testing.T) {
	var acct Ledger
	for i := 0; i < 1000; i++ {
		rate := decimal.NewFromInt(rand.Int63n(10000))
		acct.Add(NewPurchase(decimal.NewFromInt(1), rate))
	}

	last := acct.PopBest()
	for p := acct.PopBest(); p != nil; p = acct.PopBest() {
		if p.Rate.LessThan(last.Rate) {
			t.Fatalf("rate %s popped after %s", p.Rate, last.Rate)
		}
		last = p
	}
	if acct.Len() != 0 {
		t.Fatalf("want an empty ledger, got %d entries", acct.Len())
	}
}

// Purchase identity is the id, while ordering is on the rate alone, so
// equal-rate purchases must come back in a well-defined order. The
// ledger resolves such ties by insertion order.
func TestEqualRateTieBreak(t *testing.T) {
	rate := decimal.NewFromInt(500)
	first := NewPurchase(decimal.NewFromInt(1), rate)
	second := NewPurchase(decimal.NewFromInt(2), rate)
	third := NewPurchase(decimal.NewFromInt(3), rate)

	var acct Ledger
	acct.Add(first)
	acct.Add(second)
	acct.Add(third)

	for _, want := range []*Purchase{first, second, third} {
		if p := acct.PopBest(); p != want {
			t.Fatalf("want %v, got %v", want, p)
		}
	}
}
