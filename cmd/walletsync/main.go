package main

import (
	"context"
	"fmt"
	"os"

	"walletsync/internal/cache"
	"walletsync/internal/cli"
	"walletsync/internal/core"
	"walletsync/internal/merge"
)

// walletsync dumps the offline cache: the merged view per resource plus
// the pending-queue sizes. Useful against a device database copy when
// debugging a sync report.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	kvStore, closeStore := cli.OpenStore(logger, cfg)
	defer closeStore()

	store := cache.New(kvStore)
	ctx := context.Background()

	for _, r := range core.AllResources() {
		merged, err := merge.List(ctx, store, r)
		if err != nil {
			logger.Error("Failed to merge resource", "resource", r, "error", err)
			os.Exit(1)
		}
		counts, err := store.PendingCounts(ctx, r)
		if err != nil {
			logger.Error("Failed to count pending mutations", "resource", r, "error", err)
			os.Exit(1)
		}

		fmt.Printf("%s: %d records (%d pending creates, %d updates, %d deletes)\n",
			r, len(merged), counts.Creates, counts.Updates, counts.Deletes)
		for _, tx := range merged {
			marker := " "
			if tx.IsPending {
				marker = "*"
			}
			label := tx.Category
			if label == "" {
				label = tx.Source
			}
			fmt.Printf("  %s %-28s %10s  %s  %s\n",
				marker, tx.ID, tx.Amount.String(), tx.Date.Format("2006-01-02"), label)
		}
	}
}
