// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"fmt"
)

// NewByTypename creates an empty value of the named record type, for
// tools that decode database values generically.
func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "PurchaseRecord":
		v = new(PurchaseRecord)
	case "OfferRecord":
		v = new(OfferRecord)
	case "ServerState":
		v = new(ServerState)
	case "TelegramState":
		v = new(TelegramState)
	default:
		return nil, fmt.Errorf("unsupported type name %q", typename)
	}
	return v, nil
}
