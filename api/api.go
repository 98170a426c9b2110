// Copyright (c) 2025 BVK Chaitanya

// Package api defines the http api between the broker daemon and the
// command-line client. All apis take a JSON request through POST and return a
// JSON response.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPath     = "/status"
	OffersListPath = "/offers/list"
)

type Purchase struct {
	ID string

	Size decimal.Decimal

	Rate decimal.Decimal
}

type Offer struct {
	ID string

	Rate decimal.Decimal

	Size decimal.Decimal

	Purchases []*Purchase

	CreatedAt time.Time
}

type StatusRequest struct {
}

type StatusResponse struct {
	ProductID string

	StartTime time.Time

	// LastTrendPrice and LastTrendTime hold the most recent market price
	// reading forwarded to the seller.
	LastTrendPrice decimal.Decimal
	LastTrendTime  time.Time

	// NumPurchases and NumOffers count the purchases bought and the offers
	// collected since the daemon has started.
	NumPurchases int64
	NumOffers    int64

	RecentOffers []*Offer
}

type OffersListRequest struct {
	// Limit restricts the number of offers in the response when non-zero,
	// returning the most recent offers.
	Limit int
}

type OffersListResponse struct {
	Offers []*Offer
}
