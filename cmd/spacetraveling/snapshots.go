package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

func snapshotsCmd() *cobra.Command {
	var all bool

	c := &cobra.Command{
		Use:   "snapshots",
		Short: "Prune the offline copies of CMS content",
		Long: "Removes snapshots older than SNAPSHOT_RETENTION. With --all every snapshot\n" +
			"is removed, so the site has nothing to fall back on until the CMS answers again.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := spacetraveling.ConfigFromEnv()
			store, err := spacetraveling.NewStore(cfg.SnapshotPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if all {
				if err := store.DeleteSnapshots(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "removed all snapshots")
				return nil
			}
			n, err := store.PruneSnapshots(time.Now().Add(-cfg.SnapshotRetention))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d snapshots\n", n)
			return nil
		},
	}

	c.Flags().BoolVar(&all, "all", false, "remove every snapshot")
	return c
}
