// Copyright (c) 2025 BVK Chaitanya

// Package server wires the market feed, the buyer and the seller into
// the broker daemon and exposes the http api.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bvk/broker/api"
	"github.com/bvk/broker/buyer"
	"github.com/bvk/broker/coinbase"
	"github.com/bvk/broker/ctxutil"
	"github.com/bvk/broker/gobs"
	"github.com/bvk/broker/journal"
	"github.com/bvk/broker/kvutil"
	"github.com/bvk/broker/ledger"
	"github.com/bvk/broker/seller"
	"github.com/bvk/broker/telegram"
	"github.com/bvkgo/kv"
	"github.com/visvasity/topic"
)

// stateKey holds the server configuration saved in the datastore, used
// to catch restarts against a datastore for a different product.
const stateKey = "/server/state"

type Server struct {
	cg ctxutil.CloseGroup

	opts Options

	db kv.Database

	feed *coinbase.Client

	// notifier is nil when telegram is not configured.
	notifier *telegram.Client

	journal *journal.Journal

	// buyer is nil when automatic buying is disabled.
	buyer *buyer.Buyer

	msgCh   chan seller.Message
	offerCh chan *ledger.Offer

	startTime time.Time

	mutex        sync.Mutex
	lastTick     coinbase.Ticker
	numPurchases int64
	numOffers    int64
	recentOffers []*api.Offer
}

// New creates a broker server and starts its background tasks. The
// returned server is already live; callers mount HandlerMap on a http
// server and Close when done.
func New(ctx context.Context, secrets *Secrets, db kv.Database, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := secrets.Check(); err != nil {
		return nil, fmt.Errorf("invalid secrets: %w", err)
	}

	s := &Server{
		opts:      *opts,
		db:        db,
		journal:   journal.New(db),
		msgCh:     make(chan seller.Message, 1),
		offerCh:   make(chan *ledger.Offer, 1),
		startTime: time.Now(),
	}
	if err := s.checkState(ctx); err != nil {
		return nil, err
	}

	feed, err := coinbase.New(secrets.Coinbase, opts.ProductID, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create coinbase client: %w", err)
	}
	s.feed = feed
	defer func() {
		if status != nil {
			_ = feed.Close()
		}
	}()

	if secrets.Telegram != nil {
		notifier, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.notifier = notifier
		defer func() {
			if status != nil {
				_ = notifier.Close()
			}
		}()
	}

	if opts.BuySpend.IsPositive() {
		b, err := buyer.New(opts.BuySpend, opts.BuyInterval, opts.FeePct)
		if err != nil {
			return nil, fmt.Errorf("could not create buyer: %w", err)
		}
		s.buyer = b
	}

	s.cg.Go(s.goSell)
	s.cg.Go(s.goWatchTrend)
	s.cg.Go(s.goConsumeOffers)
	if s.buyer != nil {
		s.cg.Go(s.goBuy)
	}
	return s, nil
}

// Close stops all background tasks.
func (s *Server) Close() error {
	s.cg.Close()
	if s.notifier != nil {
		_ = s.notifier.Close()
	}
	return s.feed.Close()
}

// checkState refuses to reuse a datastore that was created for a
// different product, then saves the current configuration.
func (s *Server) checkState(ctx context.Context) error {
	state, err := kvutil.GetDB[gobs.ServerState](ctx, s.db, stateKey)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load server state: %w", err)
	}
	if state != nil && state.ProductID != s.opts.ProductID {
		return fmt.Errorf("datastore belongs to product %q: %w", state.ProductID, os.ErrInvalid)
	}
	next := &gobs.ServerState{
		ProductID:    s.opts.ProductID,
		FeePct:       s.opts.FeePct,
		MinMarginPct: s.opts.MinMarginPct,
	}
	if err := kvutil.SetDB(ctx, s.db, stateKey, next); err != nil {
		return fmt.Errorf("could not save server state: %w", err)
	}
	return nil
}

// goSell runs the seller actor over the server's message and offer
// channels.
func (s *Server) goSell(ctx context.Context) {
	v := seller.New(ledger.Percentage(s.opts.FeePct), s.opts.MinMarginPct)
	if err := v.Run(ctx, s.msgCh, s.offerCh); err != nil {
		if ctx.Err() == nil {
			slog.ErrorContext(ctx, "seller has stopped unexpectedly", "error", err)
		}
	}
}

// goWatchTrend forwards ticker prices from the feed to the seller as
// trend readings.
func (s *Server) goWatchTrend(ctx context.Context) {
	recv, err := s.feed.GetTickerUpdates()
	if err != nil {
		slog.ErrorContext(ctx, "could not subscribe for ticker updates", "error", err)
		return
	}
	defer recv.Close()

	ch, err := topic.ReceiveCh(recv)
	if err != nil {
		slog.ErrorContext(ctx, "could not fetch ticker receive channel", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ch:
			if !ok {
				slog.InfoContext(ctx, "ticker topic is closed")
				return
			}

			s.mutex.Lock()
			s.lastTick = tick
			s.mutex.Unlock()

			reading := seller.TrendReading{
				CurrentTrend: tick.Price,
				ObservedAt:   tick.Time,
			}
			select {
			case <-ctx.Done():
				return
			case s.msgCh <- reading:
			}
		}
	}
}

// goBuy runs the cost-averaging buyer and forwards its purchases to
// the seller, recording each buy in the journal.
func (s *Server) goBuy(ctx context.Context) {
	recv, err := s.feed.GetTickerUpdates()
	if err != nil {
		slog.ErrorContext(ctx, "could not subscribe for ticker updates", "error", err)
		return
	}
	defer recv.Close()

	buyCh := make(chan seller.Message, 1)
	s.cg.Go(func(ctx context.Context) {
		if err := s.buyer.Run(ctx, recv, buyCh); err != nil {
			if ctx.Err() == nil {
				slog.ErrorContext(ctx, "buyer has stopped unexpectedly", "error", err)
			}
		}
		close(buyCh)
	})

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-buyCh:
			if !ok {
				return
			}
			if buy, ok := msg.(seller.NewPurchase); ok {
				if err := s.journal.RecordPurchase(ctx, buy.Purchase); err != nil {
					slog.ErrorContext(ctx, "could not journal a purchase (ignored)", "purchase", buy.Purchase, "error", err)
				}
				s.mutex.Lock()
				s.numPurchases++
				s.mutex.Unlock()
			}
			select {
			case <-ctx.Done():
				return
			case s.msgCh <- msg:
			}
		}
	}
}

// goConsumeOffers is the downstream consumer of the seller's offers.
func (s *Server) goConsumeOffers(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case offer := <-s.offerCh:
			s.handleOffer(ctx, offer)
		}
	}
}

func (s *Server) handleOffer(ctx context.Context, offer *ledger.Offer) {
	slog.InfoContext(ctx, "seller has collected an offer", "offer", offer)

	if err := s.journal.RecordOffer(ctx, offer); err != nil {
		// An offer that could not be journaled is treated as unfulfilled;
		// its purchases go back to the seller so they are not lost. The
		// send runs on its own task because the seller may be blocked on
		// offerCh, which this consumer must keep draining.
		slog.ErrorContext(ctx, "could not journal an offer; returning purchases to the seller", "offer", offer, "error", err)
		s.cg.Go(func(ctx context.Context) {
			s.reinject(ctx, offer)
		})
		return
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("sell %s %s at %s (%d purchases)", offer.Size(), s.opts.ProductID, offer.Rate, len(offer.Purchases))
		if err := s.notifier.SendMessage(ctx, time.Now(), "%s", msg); err != nil {
			slog.WarnContext(ctx, "could not send telegram notification (ignored)", "error", err)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.numOffers++
	s.recentOffers = append(s.recentOffers, exportOffer(offer))
	if n := len(s.recentOffers); n > s.opts.MaxRecentOffers {
		s.recentOffers = s.recentOffers[n-s.opts.MaxRecentOffers:]
	}
}

// reinject returns an unfulfilled offer's purchases to the seller.
func (s *Server) reinject(ctx context.Context, offer *ledger.Offer) {
	for _, p := range offer.Purchases {
		select {
		case <-ctx.Done():
			return
		case s.msgCh <- seller.NewPurchase{Purchase: p}:
		}
	}
}

func exportOffer(offer *ledger.Offer) *api.Offer {
	v := &api.Offer{
		ID:        offer.ID.String(),
		Rate:      offer.Rate,
		Size:      offer.Size(),
		CreatedAt: time.Now(),
	}
	for _, p := range offer.Purchases {
		v.Purchases = append(v.Purchases, &api.Purchase{
			ID:   p.ID.String(),
			Size: p.Size,
			Rate: p.Rate,
		})
	}
	return v
}
