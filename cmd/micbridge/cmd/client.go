package cmd

import (
	"context"
	"fmt"

	"github.com/go-drift/micbridge/pkg/transport"
	"github.com/spf13/cobra"
)

func addClientFlags(c *cobra.Command) {
	c.Flags().String("url", "", "Host WebSocket URL (overrides client.url)")
	c.Flags().Duration("timeout", 0, "How long to wait for the reply (overrides client.timeout)")
}

// dial connects to the host named by --url or client.url. The returned
// context carries the reply timeout.
func dial(c *cobra.Command) (*transport.Client, context.Context, context.CancelFunc, error) {
	url := cfg.Client.URL
	if v, _ := c.Flags().GetString("url"); v != "" {
		url = v
	}
	timeout := cfg.Client.Timeout
	if v, _ := c.Flags().GetDuration("timeout"); v > 0 {
		timeout = v
	}

	ctx, cancel := context.WithTimeout(c.Context(), timeout)
	client, err := transport.Dial(ctx, url, transport.WithClientLogger(logger))
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("connect to %s: %w", url, err)
	}
	return client, ctx, cancel, nil
}
