// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"fmt"
)

type Secrets struct {
	BotToken string `json:"token"`

	// Owner is the telegram username allowed to talk to the bot and
	// the receiver of all notifications.
	Owner string `json:"owner"`
}

func (v *Secrets) Check() error {
	if v == nil {
		return fmt.Errorf("telegram secrets cannot be nil")
	}
	if len(v.BotToken) == 0 {
		return fmt.Errorf("bot token cannot be empty")
	}
	if len(v.Owner) == 0 {
		return fmt.Errorf("owner cannot be empty")
	}
	return nil
}
