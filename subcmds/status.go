// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/broker/api"
	"github.com/bvk/broker/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Status struct {
	cmdutil.ClientFlags
}

func (c *Status) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "status", fset, cli.CmdFunc(c.run)
}

func (c *Status) Purpose() string {
	return "Status prints a summary of the running broker daemon"
}

func (c *Status) run(ctx context.Context, args []string) error {
	resp, err := cmdutil.Post[api.StatusResponse](ctx, &c.ClientFlags, api.StatusPath, &api.StatusRequest{})
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "Product: %s\n", resp.ProductID)
	fmt.Fprintf(stdout, "Uptime: %v\n", time.Since(resp.StartTime).Round(time.Second))
	if !resp.LastTrendTime.IsZero() {
		fmt.Fprintf(stdout, "Last Trend: %s at %s\n", resp.LastTrendPrice.StringFixed(2), resp.LastTrendTime.Format(time.RFC3339))
	}
	fmt.Fprintf(stdout, "Num Buys: %d\n", resp.NumPurchases)
	fmt.Fprintf(stdout, "Num Offers: %d\n", resp.NumOffers)

	for _, offer := range resp.RecentOffers {
		fmt.Fprintf(stdout, "Offer %s: sell %s at %s (%d purchases)\n", offer.ID, offer.Size.StringFixed(8), offer.Rate.StringFixed(2), len(offer.Purchases))
	}
	return nil
}
