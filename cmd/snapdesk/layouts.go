package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapdesk/snapdesk/internal/layout"
)

func newCaptureCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "capture <name>",
		Short: "Snapshot the current window arrangement into a named layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.engine.Capture(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Printf("Captured %q with %d windows\n", profile.Name, profile.WindowCount)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "layout description")
	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "apply <name>",
		Aliases: []string{"activate"},
		Short:   "Apply a stored layout and mark it active",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.engine.Apply(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Applied %q: %d positioned", report.Profile.Name, report.Applied)
			if len(report.Missing) > 0 {
				fmt.Printf(", %d not running", len(report.Missing))
			}
			if report.Failed > 0 {
				fmt.Printf(", %d failed", report.Failed)
			}
			fmt.Println()
			for _, m := range report.Missing {
				fmt.Printf("  missing: %s\n", m.AppID)
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		search string
		recent int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				profiles []*layout.Profile
				err      error
			)
			switch {
			case search != "":
				profiles, err = a.layouts.Search(ctx, search)
			case recent > 0:
				profiles, err = a.layouts.GetRecent(ctx, recent)
			default:
				profiles, err = a.layouts.GetAll(ctx)
			}
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Println("No layouts stored")
				return nil
			}
			for _, p := range profiles {
				active := " "
				if p.IsActive {
					active = "*"
				}
				fmt.Printf("%s %-24s %2d windows  updated %s\n",
					active, p.Name, p.WindowCount, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name or description substring")
	cmd.Flags().IntVar(&recent, "recent", 0, "show only the N most recently updated layouts")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one layout in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.layouts.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Name:        %s\n", p.Name)
			if p.Description != "" {
				fmt.Printf("Description: %s\n", p.Description)
			}
			fmt.Printf("Active:      %t\n", p.IsActive)
			fmt.Printf("Created:     %s\n", p.CreatedAt.Local().Format(time.RFC1123))
			fmt.Printf("Updated:     %s\n", p.UpdatedAt.Local().Format(time.RFC1123))
			fmt.Printf("Windows:     %d\n", p.WindowCount)
			for _, placement := range p.Placements {
				fmt.Printf("  %-20s %4dx%-4d at (%d,%d) monitor %d %s\n",
					placement.AppID, placement.Width, placement.Height,
					placement.X, placement.Y, placement.Monitor, placement.State)
			}
			return nil
		},
	}
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := layout.RenameProfile(cmd.Context(), a.layouts, a.bindings, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Renamed %q to %q\n", args[0], args[1])
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := layout.RemoveProfile(cmd.Context(), a.layouts, a.bindings, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %q\n", p.Name)
			return nil
		},
	}
}
