// Command records scrapes the athletics world records tables, writes them to
// the configured sinks and renders the analysis charts and tables.
//
// Usage:
//
//	records scrape [--offline page.html] [--data-dir data]
//	records report [--data-dir data]
//	records run    [--offline page.html] [--data-dir data]
//	records validate [--data-dir data]
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/athletics-records-etl/cmd/records/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
