// Copyright (c) 2025 BVK Chaitanya

package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMargin(t *testing.T) {
	p := NewPurchase(decimal.RequireFromString("1.75"), decimal.NewFromInt(8000))
	if v := p.Margin(decimal.NewFromInt(10000)); !v.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("want 3500, got %s", v)
	}

	p = NewPurchase(decimal.NewFromInt(5), decimal.NewFromInt(100))
	if v := p.Margin(decimal.NewFromInt(50)); !v.Equal(decimal.NewFromInt(-250)) {
		t.Fatalf("want -250, got %s", v)
	}
}

func TestMarginAfterFee(t *testing.T) {
	p := NewPurchase(decimal.NewFromInt(2), decimal.NewFromInt(100))
	fee := Percentage(decimal.NewFromInt(10))
	if v := p.MarginAfterFee(decimal.NewFromInt(1000), fee); !v.Equal(decimal.NewFromInt(1620)) {
		t.Fatalf("want 1620, got %s", v)
	}
	if v := p.MarginAfterFee(decimal.NewFromInt(1000), NoFee); !v.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("want 1800, got %s", v)
	}
}

func TestNetMargin(t *testing.T) {
	gross := decimal.NewFromInt(200)
	if v := NoFee.NetMargin(gross); !v.Equal(gross) {
		t.Fatalf("want %s, got %s", gross, v)
	}
	fee := Percentage(decimal.RequireFromString("0.25"))
	want := decimal.RequireFromString("199.5")
	if v := fee.NetMargin(gross); !v.Equal(want) {
		t.Fatalf("want %s, got %s", want, v)
	}
	// Negative margins stay negative after the fee.
	loss := decimal.NewFromInt(-100)
	if v := fee.NetMargin(loss); !v.LessThan(decimal.Zero) {
		t.Fatalf("want a negative net margin, got %s", v)
	}
}

func TestPurchaseCheck(t *testing.T) {
	good := NewPurchase(decimal.NewFromInt(1), decimal.NewFromInt(100))
	if err := good.Check(); err != nil {
		t.Fatal(err)
	}
	zero := NewPurchase(decimal.Zero, decimal.NewFromInt(100))
	if err := zero.Check(); err == nil {
		t.Fatalf("want non-nil, got %v", err)
	}
	negative := NewPurchase(decimal.NewFromInt(-1), decimal.NewFromInt(100))
	if err := negative.Check(); err == nil {
		t.Fatalf("want non-nil, got %v", err)
	}
}
