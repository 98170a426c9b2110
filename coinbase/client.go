// Copyright (c) 2025 BVK Chaitanya

// Package coinbase implements the market trend feed. It watches the
// Coinbase Advanced Trade websocket ticker for one product and
// publishes timestamped price readings on a topic for the rest of the
// process to consume.
package coinbase

import (
	"context"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"time"

	"log/slog"

	"github.com/bvk/broker/ctxutil"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
	"golang.org/x/time/rate"
	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// Ticker is one observation of the product's market price.
type Ticker struct {
	Price decimal.Decimal

	// Time is when the price was observed, not when it was received.
	Time time.Time
}

type Client struct {
	cg ctxutil.CloseGroup

	opts Options

	kid    string
	signer jose.Signer

	client *http.Client

	limiter *rate.Limiter

	tickerTopic *topic.Topic[Ticker]
}

type nonceSource struct{}

func (n nonceSource) Nonce() (string, error) {
	r, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// New creates a coinbase client and starts the websocket ticker feed
// for the given product.
func New(creds *Credentials, productID string, opts *Options) (*Client, error) {
	if err := creds.Check(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	block, _ := pem.Decode([]byte(creds.PEM))
	if block == nil {
		slog.Error("could not parse the PEM private key")
		return nil, os.ErrInvalid
	}
	priKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		slog.Error("could not parse the EC private key", "err", err)
		return nil, err
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: priKey},
		(&jose.SignerOptions{NonceSource: nonceSource{}}).WithType("JWT").WithHeader("kid", creds.KID),
	)
	if err != nil {
		slog.Error("could not create go-jose.v2 pkg signer", "err", err)
		return nil, err
	}

	c := &Client{
		opts:   *opts,
		kid:    creds.KID,
		signer: signer,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiter:     rate.NewLimiter(25, 1),
		tickerTopic: topic.New[Ticker](),
	}

	c.cg.Go(func(ctx context.Context) {
		c.goWatchTicker(ctx, productID)
	})
	return c, nil
}

// Close shuts down the websocket feed and the topic.
func (c *Client) Close() error {
	c.cg.Close()
	c.tickerTopic.Close()
	return nil
}

// GetTickerUpdates subscribes to price readings. The receiver keeps
// only the most recent unread reading; consumers that fall behind see
// the latest price, not a backlog.
func (c *Client) GetTickerUpdates() (*topic.Receiver[Ticker], error) {
	return topic.Subscribe(c.tickerTopic, 1, true /* includeRecent */)
}

type apiKeyClaims struct {
	*jwt.Claims
	URI string `json:"uri"`
}

func (c *Client) signJWT(uri string) (string, error) {
	cl := &apiKeyClaims{
		Claims: &jwt.Claims{
			Subject:   c.kid,
			Issuer:    "cdp",
			NotBefore: jwt.NewNumericDate(time.Now()),
			Expiry:    jwt.NewNumericDate(time.Now().Add(2 * time.Minute)),
		},
		URI: uri,
	}
	return jwt.Signed(c.signer).Claims(cl).CompactSerialize()
}

func (c *Client) getJSON(ctx context.Context, url *url.URL, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return err
	}
	token, err := c.signJWT(fmt.Sprintf("%s %s%s", req.Method, req.URL.Host, req.URL.Path))
	if err != nil {
		slog.Error("could not create signed jwt token for GET", "url", url, "err", err)
		return err
	}
	req.Header.Add("Authorization", "Bearer "+token)
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http GET %q returned %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("could not decode response to json: %w", err)
	}
	return nil
}

type getProductResponse struct {
	ProductID string      `json:"product_id"`
	Price     NullDecimal `json:"price"`
	Status    string      `json:"status"`
}

// GetSpotPrice fetches the product's current price over the REST api.
// The websocket feed is the primary price source; this is used to
// prime the feed before the first ticker message arrives.
func (c *Client) GetSpotPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	u := &url.URL{
		Scheme: "https",
		Host:   c.opts.RestHostname,
		Path:   "/api/v3/brokerage/products/" + productID,
	}
	resp := new(getProductResponse)
	if err := c.getJSON(ctx, u, resp); err != nil {
		return decimal.Decimal{}, fmt.Errorf("could not fetch product %q: %w", productID, err)
	}
	return resp.Price.Decimal, nil
}
