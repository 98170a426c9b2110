// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bvk/broker/coinbase"
	"github.com/bvk/broker/ctxutil"
	"github.com/bvk/broker/server"
	"github.com/bvk/broker/telegram"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/visvasity/cli"
	"golang.org/x/term"
)

type Setup struct {
	dataDir     string
	secretsPath string
	skipTesting bool
}

func (c *Setup) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("setup", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "setup", fset, cli.CmdFunc(c.run)
}

func (c *Setup) Purpose() string {
	return "Setup prints and/or configures the broker daemon"
}

func (c *Setup) Description() string {
	return `

Command "setup" helps users configure Coinbase API keys and the optional
Telegram bot keys. Command prints current config when run without any
arguments.

COINBASE PARAMETERS

Coinbase API keys are required to read the market price feed. They can be
configured as follows:

  $ broker setup coinbase-key=organizations/org-uuid/apiKeys/key-uuid coinbase-pem="-----BEGIN EC PRIVATE ... PRIVATE KEY-----\n"

TELEGRAM PARAMETERS

Telegram keys are optional. They are required to receive sell offer
notifications on the phone. They can be configured as follows:

  $ broker setup telegram-token=1111111:aaaabbbbcccc telegram-owner=username
`
}

func (c *Setup) run(ctx context.Context, args []string) error {
	if len(c.dataDir) == 0 {
		c.dataDir = filepath.Join(os.Getenv("HOME"), ".broker")
	}
	if _, err := os.Stat(c.dataDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("could not stat data directory %q: %w", c.dataDir, err)
		}
		if len(args) == 0 {
			return fmt.Errorf("broker is not configured")
		}
		if err := os.MkdirAll(c.dataDir, 0700); err != nil {
			return fmt.Errorf("could not create data directory %q: %w", c.dataDir, err)
		}
	}
	dataDir, err := filepath.Abs(c.dataDir)
	if err != nil {
		return fmt.Errorf("could not determine data-dir %q absolute path: %w", c.dataDir, err)
	}

	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(dataDir, "secrets.json")
	}
	secrets, err := server.SecretsFromFile(c.secretsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if len(args) == 0 {
			return fmt.Errorf("broker is not configured")
		}
	}

	if len(args) == 0 {
		js, _ := json.MarshalIndent(secrets, "", "  ")
		fmt.Fprintf(cli.Stdout(ctx), "%s\n", js)
		return nil
	}

	if secrets == nil {
		secrets = &server.Secrets{}
	}

	validKeys := []string{"coinbase-key", "coinbase-pem", "telegram-token", "telegram-owner"}
	kvMap := make(map[string]string)
	for _, arg := range args {
		before, after, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("invalid config argument %q", arg)
		}
		if !slices.Contains(validKeys, before) {
			return fmt.Errorf("invalid/unrecognized config item key %q", before)
		}
		if v, ok := kvMap[before]; ok && v != after {
			return fmt.Errorf("config item key %q is found with different values", before)
		}
		kvMap[before] = after
	}

	coinbaseKey := kvMap["coinbase-key"]
	coinbasePem := kvMap["coinbase-pem"]
	if len(coinbaseKey) != 0 || len(coinbasePem) != 0 {
		if len(coinbaseKey) == 0 || len(coinbasePem) == 0 {
			return fmt.Errorf(`both "coinbase-key" and "coinbase-pem" parameters are required`)
		}
		// Replace escaped newline characters with newlines.
		coinbasePem = strings.ReplaceAll(coinbasePem, `\\n`, "\n")
		coinbasePem = strings.ReplaceAll(coinbasePem, `\n`, "\n")
		secrets.Coinbase = &coinbase.Credentials{
			KID: coinbaseKey,
			PEM: coinbasePem,
		}
		if !c.skipTesting {
			// Attempt to fetch the spot price to validate the keys.
			client, err := coinbase.New(secrets.Coinbase, "BTC-USD", nil)
			if err != nil {
				return err
			}
			if _, err := client.GetSpotPrice(ctx, "BTC-USD"); err != nil {
				client.Close()
				return err
			}
			client.Close()
		}
	}

	telegramToken := kvMap["telegram-token"]
	telegramOwner := kvMap["telegram-owner"]
	if len(telegramToken) != 0 || len(telegramOwner) != 0 {
		if len(telegramToken) == 0 || len(telegramOwner) == 0 {
			return fmt.Errorf(`both "telegram-token" and "telegram-owner" parameters are required`)
		}
		secrets.Telegram = &telegram.Secrets{
			BotToken: telegramToken,
			Owner:    telegramOwner,
		}
		if !c.skipTesting {
			func() {
				fmt.Println("Start a chat with the telegram bot and then press any key")
				// switch stdin into 'raw' mode
				oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
				if err != nil {
					log.Fatal(err)
				}
				defer term.Restore(int(os.Stdin.Fd()), oldState)

				b := make([]byte, 1)
				if _, err := os.Stdin.Read(b); err != nil {
					log.Fatal(err)
				}
			}()

			client, err := telegram.New(ctx, kvmemdb.New(), secrets.Telegram)
			if err != nil {
				return err
			}
			ctxutil.Sleep(ctx, time.Second)
			if err := client.SendMessage(ctx, time.Now(), "Test message from broker config setup; please ignore."); err != nil {
				return err
			}
			client.Close()
		}
	}

	if err := secrets.Check(); err != nil {
		return err
	}

	js, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.secretsPath, js, os.FileMode(0600)); err != nil {
		return err
	}
	return nil
}
