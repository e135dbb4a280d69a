package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapdesk/snapdesk/internal/ipc"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and active-layout status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ipc.NewClient()
			status, err := client.GetStatus()
			if err != nil {
				// No daemon; fall back to store state.
				active, aerr := a.layouts.GetActive(cmd.Context())
				fmt.Println("Daemon:        not running")
				if aerr == nil {
					fmt.Printf("Active layout: %s\n", active.Name)
				} else {
					fmt.Println("Active layout: none")
				}
				return nil
			}

			fmt.Println("Daemon:        running")
			fmt.Printf("Uptime:        %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
			fmt.Printf("Hotkeys:       %d watched\n", status.WatchedHotkeys)
			if status.ActiveLayout != "" {
				fmt.Printf("Active layout: %s\n", status.ActiveLayout)
			} else {
				fmt.Println("Active layout: none")
			}
			return nil
		},
	}
}

func newReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask a running daemon to re-read its key bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ipc.NewClient().Reload(); err != nil {
				return err
			}
			fmt.Println("Bindings reloaded")
			return nil
		},
	}
}
