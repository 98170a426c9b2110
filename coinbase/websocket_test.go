// Copyright (c) 2025 BVK Chaitanya

package coinbase

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

var sampleTickerMessage = `{
  "channel": "ticker",
  "timestamp": "2025-03-01T12:00:00.000000Z",
  "sequence_num": 17,
  "events": [
    {
      "type": "update",
      "tickers": [
        {
          "type": "ticker",
          "product_id": "BTC-USD",
          "price": "21400.25",
          "volume_24_h": "",
          "low_24_h": "20990.5"
        }
      ]
    }
  ]
}`

func TestDecodeTickerMessage(t *testing.T) {
	m := new(message)
	if err := json.Unmarshal([]byte(sampleTickerMessage), m); err != nil {
		t.Fatal(err)
	}
	if len(m.Events) != 1 || len(m.Events[0].Tickers) != 1 {
		t.Fatalf("want one ticker event, got %#v", m)
	}
	ticker := m.Events[0].Tickers[0]
	if ticker.ProductID != "BTC-USD" {
		t.Fatalf("want BTC-USD, got %q", ticker.ProductID)
	}
	if want := decimal.RequireFromString("21400.25"); !ticker.Price.Decimal.Equal(want) {
		t.Fatalf("want %s, got %s", want, ticker.Price.Decimal)
	}
}

// Coinbase sends some decimal fields as empty strings.
func TestNullDecimal(t *testing.T) {
	var v struct {
		Empty NullDecimal `json:"empty"`
		Value NullDecimal `json:"value"`
	}
	if err := json.Unmarshal([]byte(`{"empty":"","value":"1.5"}`), &v); err != nil {
		t.Fatal(err)
	}
	if !v.Empty.Decimal.IsZero() {
		t.Fatalf("want zero, got %s", v.Empty.Decimal)
	}
	if want := decimal.RequireFromString("1.5"); !v.Value.Decimal.Equal(want) {
		t.Fatalf("want %s, got %s", want, v.Value.Decimal)
	}
}
