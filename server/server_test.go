// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bvk/broker/api"
	"github.com/bvk/broker/journal"
	"github.com/bvk/broker/ledger"
	"github.com/bvk/broker/seller"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

// faultyDB fails new transactions on demand.
type faultyDB struct {
	kv.Database

	fail bool
}

func (d *faultyDB) NewTransaction(ctx context.Context) (kv.Transaction, error) {
	if d.fail {
		return nil, errors.New("datastore is unavailable")
	}
	return d.Database.NewTransaction(ctx)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := kvmemdb.New()
	return &Server{
		opts:      Options{ProductID: "BTC-USD", MaxRecentOffers: 2},
		db:        db,
		journal:   journal.New(db),
		msgCh:     make(chan seller.Message, 16),
		offerCh:   make(chan *ledger.Offer, 1),
		startTime: time.Now(),
	}
}

func TestOfferHandling(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	var offers []*ledger.Offer
	for i := 1; i <= 3; i++ {
		p := ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(int64(100*i)))
		offers = append(offers, ledger.NewOffer(decimal.NewFromInt(int64(200*i)), []*ledger.Purchase{p}))
	}
	for _, offer := range offers {
		s.handleOffer(ctx, offer)
	}

	status, err := s.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if status.NumOffers != 3 {
		t.Fatalf("status reports %d offers, want 3", status.NumOffers)
	}
	if len(status.RecentOffers) != 2 {
		t.Fatalf("status retains %d offers, want 2", len(status.RecentOffers))
	}
	if got := status.RecentOffers[1].ID; got != offers[2].ID.String() {
		t.Fatalf("latest retained offer is %s, want %s", got, offers[2].ID)
	}

	listed, err := s.doOffersList(ctx, &api.OffersListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(listed.Offers) != 3 {
		t.Fatalf("journal lists %d offers, want 3", len(listed.Offers))
	}

	limited, err := s.doOffersList(ctx, &api.OffersListRequest{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited.Offers) != 1 {
		t.Fatalf("journal lists %d offers, want 1", len(limited.Offers))
	}
	if !limited.Offers[0].Rate.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("limited list returned rate %s, want 600", limited.Offers[0].Rate)
	}
}

// A journaling failure must not stall the offer consumer: the offer's
// purchases go back to the seller from a separate task while the
// consumer stays free to keep draining offers.
func TestOfferJournalFailureReinjects(t *testing.T) {
	ctx := context.Background()
	db := &faultyDB{Database: kvmemdb.New()}
	s := &Server{
		opts:      Options{ProductID: "BTC-USD", MaxRecentOffers: 2},
		db:        db,
		journal:   journal.New(db),
		msgCh:     make(chan seller.Message, 1),
		offerCh:   make(chan *ledger.Offer, 1),
		startTime: time.Now(),
	}
	defer s.cg.Close()

	// Fill msgCh so the re-injection cannot complete inline.
	s.msgCh <- seller.TrendReading{CurrentTrend: decimal.NewFromInt(1), ObservedAt: time.Now()}

	p1 := ledger.NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(100))
	p2 := ledger.NewPurchase(decimal.NewFromInt(2), decimal.NewFromInt(200))
	offer := ledger.NewOffer(decimal.NewFromInt(300), []*ledger.Purchase{p1, p2})

	db.fail = true
	done := make(chan struct{})
	go func() {
		s.handleOffer(ctx, offer)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("offer handling is stuck behind a full message channel")
	}

	<-s.msgCh // drop the filler
	for _, want := range []*ledger.Purchase{p1, p2} {
		select {
		case msg := <-s.msgCh:
			buy, ok := msg.(seller.NewPurchase)
			if !ok || buy.Purchase != want {
				t.Fatalf("want %v back, got %v", want, msg)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for a re-injected purchase")
		}
	}

	if s.numOffers != 0 {
		t.Fatalf("a failed offer must not be counted, got %d", s.numOffers)
	}
}

func TestCheckStateProductMismatch(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	if err := s.checkState(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.checkState(ctx); err != nil {
		t.Fatal(err)
	}

	s.opts.ProductID = "ETH-USD"
	if err := s.checkState(ctx); err == nil {
		t.Fatal("expected an error when the datastore belongs to another product")
	}
}
