// Copyright (c) 2025 BVK Chaitanya

package seller

import (
	"context"
	"testing"
	"time"

	"github.com/bvk/broker/ledger"
	"github.com/shopspring/decimal"
)

func recvOffer(t *testing.T, ch <-chan *ledger.Offer) *ledger.Offer {
	t.Helper()
	select {
	case offer := <-ch:
		return offer
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an offer")
		return nil
	}
}

// checkNoOffer confirms nothing is pending on the offer channel by
// first forcing the seller through a no-op message. The seller handles
// messages in order, so once the probe is absorbed, any offer from an
// earlier message would already have been emitted.
func checkNoOffer(t *testing.T, in chan<- Message, out <-chan *ledger.Offer) {
	t.Helper()
	probe := ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(1000000))
	in <- NewPurchase{Purchase: probe}
	select {
	case offer := <-out:
		t.Fatalf("want no offer, got %v", offer)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestSellerSellsProfitablePurchases(t *testing.T) {
	ctx := context.Background()

	in := make(chan Message)
	out := make(chan *ledger.Offer)

	v := New(ledger.NoFee, decimal.NewFromInt(10))
	done := make(chan error, 1)
	go func() {
		done <- v.Run(ctx, in, out)
	}()

	for200 := ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(200))
	in <- NewPurchase{Purchase: for200}

	// A reading observed 10 minutes ago must be discarded unevaluated,
	// no matter how profitable the rate is.
	trend500 := decimal.NewFromInt(500)
	in <- TrendReading{CurrentTrend: trend500, ObservedAt: time.Now().Add(-2 * MaxReadingAge)}
	checkNoOffer(t, in, out)

	// A fresh reading at the same rate sells the purchase.
	in <- TrendReading{CurrentTrend: trend500, ObservedAt: time.Now()}
	offer := recvOffer(t, out)
	if len(offer.Purchases) != 1 || offer.Purchases[0] != for200 {
		t.Fatalf("want [%v], got %v", for200, offer.Purchases)
	}
	if !offer.Rate.Equal(trend500) {
		t.Fatalf("want rate %s, got %s", trend500, offer.Rate)
	}

	// The same reading again finds nothing; the purchase is gone.
	in <- TrendReading{CurrentTrend: trend500, ObservedAt: time.Now()}
	checkNoOffer(t, in, out)

	// Closing the input stops the seller without an error.
	close(in)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("want nil, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the seller to stop")
	}
}

// Spawn runs the same actor loop on a detached goroutine.
func TestSpawnDetachedSeller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan Message)
	out := make(chan *ledger.Offer)

	Spawn(ctx, in, out, ledger.NoFee, decimal.NewFromInt(10))
	defer close(in)

	for200 := ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(200))
	in <- NewPurchase{Purchase: for200}
	in <- TrendReading{CurrentTrend: decimal.NewFromInt(500), ObservedAt: time.Now()}

	offer := recvOffer(t, out)
	if len(offer.Purchases) != 1 || offer.Purchases[0] != for200 {
		t.Fatalf("want [%v], got %v", for200, offer.Purchases)
	}
}

// A purchase sent before a trend reading on the same channel must be
// visible to that reading's evaluation.
func TestSellerCausalOrdering(t *testing.T) {
	ctx := context.Background()

	in := make(chan Message)
	out := make(chan *ledger.Offer)

	v := New(ledger.NoFee, decimal.NewFromInt(5))
	go v.Run(ctx, in, out)
	defer close(in)

	for100 := ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(100))
	in <- NewPurchase{Purchase: for100}
	in <- TrendReading{CurrentTrend: decimal.NewFromInt(200), ObservedAt: time.Now()}

	offer := recvOffer(t, out)
	if len(offer.Purchases) != 1 || offer.Purchases[0] != for100 {
		t.Fatalf("want [%v], got %v", for100, offer.Purchases)
	}
}

// Canceling the context while the seller is blocked on the offer
// hand-off is how a vanished downstream consumer is observed.
func TestSellerStopsWhenConsumerIsGone(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())

	in := make(chan Message)
	out := make(chan *ledger.Offer) // never read

	v := New(ledger.NoFee, decimal.NewFromInt(5))
	done := make(chan error, 1)
	go func() {
		done <- v.Run(ctx, in, out)
	}()

	in <- NewPurchase{Purchase: ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(100))}
	in <- TrendReading{CurrentTrend: decimal.NewFromInt(1000), ObservedAt: time.Now()}

	cancel(context.Canceled)
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("want non-nil, got nil")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the seller to stop")
	}
}
