// Copyright (c) 2025 BVK Chaitanya

// Package journal keeps an append-only record of executed buys and
// emitted sell offers for accounting. The journal is history only; it
// is never read back into a seller's ledger.
package journal

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/bvk/broker/gobs"
	"github.com/bvk/broker/kvutil"
	"github.com/bvk/broker/ledger"
	"github.com/bvkgo/kv"
)

const OfferKeyspace = "/offers/"
const PurchaseKeyspace = "/purchases/"

type Journal struct {
	db kv.Database

	now func() time.Time
}

func New(db kv.Database) *Journal {
	return &Journal{db: db, now: time.Now}
}

// timeKeyLayout is fixed-width so that lexical key order matches
// chronological order.
const timeKeyLayout = "2006-01-02T15:04:05.000000000Z"

// timeKey builds keys that scan back in chronological order.
func timeKey(keyspace string, at time.Time, id string) string {
	return path.Join(keyspace, fmt.Sprintf("%s-%s", at.UTC().Format(timeKeyLayout), id))
}

// RecordOffer appends an emitted offer and its purchases to the
// journal.
func (j *Journal) RecordOffer(ctx context.Context, offer *ledger.Offer) error {
	at := j.now()
	record := &gobs.OfferRecord{
		ID:        offer.ID.String(),
		Rate:      offer.Rate,
		CreatedAt: at,
	}
	for _, p := range offer.Purchases {
		record.Purchases = append(record.Purchases, &gobs.PurchaseRecord{
			ID:   p.ID.String(),
			Size: p.Size,
			Rate: p.Rate,
		})
	}
	key := timeKey(OfferKeyspace, at, record.ID)
	if err := kvutil.SetDB(ctx, j.db, key, record); err != nil {
		return fmt.Errorf("could not save offer record: %w", err)
	}
	return nil
}

// RecordPurchase appends an executed buy to the journal.
func (j *Journal) RecordPurchase(ctx context.Context, p *ledger.Purchase) error {
	at := j.now()
	record := &gobs.PurchaseRecord{
		ID:        p.ID.String(),
		Size:      p.Size,
		Rate:      p.Rate,
		CreatedAt: at,
	}
	key := timeKey(PurchaseKeyspace, at, record.ID)
	if err := kvutil.SetDB(ctx, j.db, key, record); err != nil {
		return fmt.Errorf("could not save purchase record: %w", err)
	}
	return nil
}

// ScanOffers invokes the callback for every recorded offer in
// chronological order.
func (j *Journal) ScanOffers(ctx context.Context, fn func(context.Context, *gobs.OfferRecord) error) error {
	begin, end := kvutil.PathRange(OfferKeyspace)
	cb := func(ctx context.Context, _ kv.Reader, _ string, v *gobs.OfferRecord) error {
		return fn(ctx, v)
	}
	return kvutil.AscendDB(ctx, j.db, begin, end, cb)
}

// ScanPurchases invokes the callback for every recorded buy in
// chronological order.
func (j *Journal) ScanPurchases(ctx context.Context, fn func(context.Context, *gobs.PurchaseRecord) error) error {
	begin, end := kvutil.PathRange(PurchaseKeyspace)
	cb := func(ctx context.Context, _ kv.Reader, _ string, v *gobs.PurchaseRecord) error {
		return fn(ctx, v)
	}
	return kvutil.AscendDB(ctx, j.db, begin, end, cb)
}
