package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and maintain the layout database",
	}
	cmd.AddCommand(newBackupCmd(a), newRestoreCmd(a), newStatsCmd(a))
	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the database to a dated backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.store.Backup(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "output", "o", "", "backup file path (default: dated file in the backup directory)")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the database with a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Restore(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Database restored from %s\n", args[0])
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store and layout statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stats, err := a.store.Statistics(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Healthy:      %t\n", stats.Healthy)
			for collection, count := range stats.Counts {
				fmt.Printf("  %-12s %d\n", collection, count)
			}
			if !stats.LastBackup.IsZero() {
				fmt.Printf("Last backup:  %s\n", stats.LastBackup.Local().Format("2006-01-02 15:04:05"))
			}

			layoutStats, err := a.layouts.Statistics(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Layouts:      %d (%d active, %d with hotkeys)\n",
				layoutStats.TotalCount, layoutStats.ActiveCount, layoutStats.WithHotkeyCount)
			fmt.Printf("Windows:      %d total, %.1f average per layout\n",
				layoutStats.TotalWindowCount, layoutStats.AverageWindows)
			if layoutStats.MostRecentName != "" {
				fmt.Printf("Most recent:  %s\n", layoutStats.MostRecentName)
			}
			return nil
		},
	}
}
