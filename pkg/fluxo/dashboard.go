package fluxo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RecentActivityLimit is how many recent transactions the dashboard lists
const RecentActivityLimit = 8

// Dashboard loads one month and aggregates it. The month list and the
// recent activity are fetched concurrently; either failing fails the load.
func (c *Client) Dashboard(ctx context.Context, window MonthWindow) (*Dashboard, error) {
	if window.Location == nil {
		window.Location = c.Location()
	}

	var (
		month  *TransactionList
		recent []*Transaction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := c.Transactions.Monthly(gctx, window)
		if err != nil {
			return err
		}
		month = list
		return nil
	})

	g.Go(func() error {
		txns, err := c.Transactions.RecentActivity(gctx, window.From(), window.To(), RecentActivityLimit)
		if err != nil {
			return err
		}
		recent = txns
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		Window:  window,
		Summary: Aggregate(month.Transactions, window),
		Recent:  recent,
	}, nil
}
