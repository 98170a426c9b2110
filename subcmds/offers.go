// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bvk/broker/api"
	"github.com/bvk/broker/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Offers struct {
	cmdutil.ClientFlags

	limit int
}

func (c *Offers) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("offers", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.IntVar(&c.limit, "limit", 0, "when non-zero, prints only the given number of most recent offers")
	return "offers", fset, cli.CmdFunc(c.run)
}

func (c *Offers) Purpose() string {
	return "Offers prints sell offers recorded in the journal"
}

func (c *Offers) run(ctx context.Context, args []string) error {
	req := &api.OffersListRequest{Limit: c.limit}
	resp, err := cmdutil.Post[api.OffersListResponse](ctx, &c.ClientFlags, api.OffersListPath, req)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Time\tID\tRate\tSize\tPurchases\t\n")
	for _, offer := range resp.Offers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n", offer.CreatedAt.Format(time.RFC3339), offer.ID, offer.Rate.StringFixed(2), offer.Size.StringFixed(8), len(offer.Purchases))
	}
	return tw.Flush()
}
