// Copyright (c) 2025 BVK Chaitanya

// Package telegram notifies the broker's owner about emitted offers
// over a telegram bot. The owner's chat id is learned from their first
// message to the bot and saved in the database.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/bvk/broker/gobs"
	"github.com/bvk/broker/kvutil"
	"github.com/bvkgo/kv"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type Client struct {
	db kv.Database

	mu sync.Mutex

	bot *bot.Bot

	self *models.User

	secrets *Secrets

	state *gobs.TelegramState

	cancel context.CancelCauseFunc
	wg     sync.WaitGroup
}

func New(ctx context.Context, db kv.Database, secrets *Secrets) (*Client, error) {
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	c := &Client{
		db:      db,
		secrets: secrets,
	}

	b, err := bot.New(secrets.BotToken, bot.WithDefaultHandler(c.handler))
	if err != nil {
		return nil, err
	}
	c.bot = b

	self, err := b.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	c.self = self

	state, err := kvutil.GetDB[gobs.TelegramState](ctx, db, c.stateKey())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		state = new(gobs.TelegramState)
	}
	c.state = state

	bctx, cancel := context.WithCancelCause(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.bot.Start(bctx)
	}()
	return c, nil
}

func (c *Client) Close() error {
	c.cancel(os.ErrClosed)
	c.wg.Wait()
	return nil
}

func (c *Client) stateKey() string {
	return path.Join("/telegram", c.self.Username, "state")
}

// handler records the owner's chat id; the bot takes no commands.
func (c *Client) handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	sender := update.Message.From.Username
	if sender != c.secrets.Owner {
		slog.Warn("received telegram message from non-owner (ignored)", "sender", sender)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ChatID == update.Message.Chat.ID {
		return
	}
	c.state.ChatID = update.Message.Chat.ID
	slog.Info("learned the owner's telegram chat id", "user", sender, "chat-id", c.state.ChatID)
	if err := kvutil.SetDB(ctx, c.db, c.stateKey(), c.state); err != nil {
		slog.Error("could not save telegram state to the db (ignored)", "err", err)
	}
}

// SendMessage notifies the owner. Messages sent before the owner has
// talked to the bot are dropped with a warning.
func (c *Client) SendMessage(ctx context.Context, at time.Time, format string, args ...interface{}) error {
	c.mu.Lock()
	chatID := c.state.ChatID
	c.mu.Unlock()

	text := at.Format("2006-01-02 15:04:05 MST") + " " + fmt.Sprintf(format, args...)
	if chatID == 0 {
		slog.Warn("owner has no known chat id; notification dropped", "message", text)
		return nil
	}

	m := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if _, err := c.bot.SendMessage(ctx, m); err != nil {
		return fmt.Errorf("could not send telegram message: %w", err)
	}
	return nil
}
