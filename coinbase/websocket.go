// Copyright (c) 2025 BVK Chaitanya

package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bvk/broker/ctxutil"
	ws "github.com/gorilla/websocket"
)

type message struct {
	Type string `json:"type"`

	// Message holds a description when Type is "error".
	Message string `json:"message"`

	ProductIDs []string `json:"product_ids"`
	Channel    string   `json:"channel"`
	Timestamp  string   `json:"timestamp"`

	JWT string `json:"jwt"`

	Sequence int64 `json:"sequence_num,number"`

	Events []event `json:"events"`
}

type event struct {
	Type      string         `json:"type"`
	ProductID string         `json:"product_id"`
	Tickers   []*tickerEvent `json:"tickers"`
}

type tickerEvent struct {
	Type      string      `json:"type"`
	ProductID string      `json:"product_id"`
	Price     NullDecimal `json:"price"`
}

func (c *Client) subscribeMsg(channel string, products []string) *message {
	token, err := c.signJWT("")
	if err != nil {
		slog.Error("could not create jwt token for websocket (ignored)", "err", err)
	}
	return &message{
		Type:       "subscribe",
		ProductIDs: products,
		Channel:    channel,
		Timestamp:  fmt.Sprintf("%d", time.Now().Unix()),
		JWT:        token,
	}
}

// goWatchTicker keeps a websocket connection to the ticker channel
// alive until the client is closed, redialing on every failure.
func (c *Client) goWatchTicker(ctx context.Context, productID string) {
	watch := func() error {
		err := c.watchTicker(ctx, productID)
		if err != nil && ctx.Err() == nil {
			slog.Warn("websocket ticker feed has failed (will retry)", "product", productID, "err", err)
		}
		return err
	}
	_ = ctxutil.Retry(ctx, c.opts.WebsocketRetryInterval, watch)
}

func (c *Client) watchTicker(ctx context.Context, productID string) error {
	var dialer ws.Dialer
	conn, _, err := dialer.DialContext(ctx, "wss://"+c.opts.WebsocketHostname, nil)
	if err != nil {
		return fmt.Errorf("could not dial to websocket feed: %w", err)
	}
	defer conn.Close()

	// The heartbeats channel keeps the connection alive through quiet
	// markets.
	if err := conn.WriteJSON(c.subscribeMsg("heartbeats", []string{productID})); err != nil {
		return fmt.Errorf("could not subscribe to heartbeats channel: %w", err)
	}
	if err := conn.WriteJSON(c.subscribeMsg("ticker", []string{productID})); err != nil {
		return fmt.Errorf("could not subscribe to ticker channel: %w", err)
	}

	for ctx.Err() == nil {
		m, err := readMessage(ctx, conn)
		if err != nil {
			return err
		}
		for _, e := range m.Events {
			for _, t := range e.Tickers {
				if t.ProductID != productID || t.Price.Decimal.IsZero() {
					continue
				}
				c.tickerTopic.Send(Ticker{
					Price: t.Price.Decimal,
					Time:  time.Now(),
				})
			}
		}
	}
	return context.Cause(ctx)
}

func readMessage(ctx context.Context, conn *ws.Conn) (*message, error) {
	stopc := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
		close(stopc)
	})

	_, msg, err := conn.ReadMessage()
	if !stop() {
		// The AfterFunc has started. Wait for it to complete and reset
		// the connection's deadline.
		<-stopc
		conn.SetReadDeadline(time.Time{})
		return nil, context.Cause(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read websocket message: %w", err)
	}

	m := new(message)
	if err := json.Unmarshal(msg, m); err != nil {
		return nil, fmt.Errorf("could not unmarshal websocket message: %w", err)
	}
	if m.Type == "error" {
		return nil, fmt.Errorf("websocket error message: %s", m.Message)
	}
	return m, nil
}
