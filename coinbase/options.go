// Copyright (c) 2025 BVK Chaitanya

package coinbase

import (
	"fmt"
	"time"
)

type Options struct {
	RestHostname      string
	WebsocketHostname string

	HttpClientTimeout time.Duration

	// WebsocketRetryInterval is how long to wait before redialing a
	// broken websocket connection.
	WebsocketRetryInterval time.Duration
}

func (v *Options) setDefaults() {
	if v.RestHostname == "" {
		v.RestHostname = "api.coinbase.com"
	}
	if v.WebsocketHostname == "" {
		v.WebsocketHostname = "advanced-trade-ws.coinbase.com"
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
	if v.WebsocketRetryInterval == 0 {
		v.WebsocketRetryInterval = time.Second
	}
}

// Credentials holds the Coinbase Advanced Trade API key.
type Credentials struct {
	// KID is the API key name, e.g. organizations/{org}/apiKeys/{key}.
	KID string `json:"kid"`

	// PEM is the EC private key in PEM format.
	PEM string `json:"pem"`
}

func (v *Credentials) Check() error {
	if v == nil {
		return fmt.Errorf("coinbase credentials cannot be nil")
	}
	if len(v.KID) == 0 {
		return fmt.Errorf("coinbase key name cannot be empty")
	}
	if len(v.PEM) == 0 {
		return fmt.Errorf("coinbase private key cannot be empty")
	}
	return nil
}
