package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWindowsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "windows",
		Short: "List live application windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			windows, err := a.platform.Windows.ListWindows()
			if err != nil {
				return err
			}
			if len(windows) == 0 {
				fmt.Println("No windows found")
				return nil
			}
			for _, w := range windows {
				fmt.Printf("0x%08X  %-20s %4dx%-4d at (%d,%d) %-9s pid %d  %s\n",
					uint32(w.Handle), w.AppID,
					w.Bounds.Width, w.Bounds.Height, w.Bounds.X, w.Bounds.Y,
					w.State, w.PID, w.Title)
			}
			return nil
		},
	}
}

func newMonitorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "List attached monitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			monitors, err := a.platform.Windows.Monitors()
			if err != nil {
				return err
			}
			for _, m := range monitors {
				primary := ""
				if m.IsPrimary {
					primary = " (primary)"
				}
				fmt.Printf("%d: %-10s %4dx%-4d at (%d,%d)  work %dx%d  %d dpi  %d Hz%s\n",
					m.Index, m.Name,
					m.Bounds.Width, m.Bounds.Height, m.Bounds.X, m.Bounds.Y,
					m.WorkArea.Width, m.WorkArea.Height,
					m.DPI, m.RefreshRate, primary)
			}
			return nil
		},
	}
}
