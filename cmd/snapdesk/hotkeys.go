package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapdesk/snapdesk/internal/hotkeys"
	"github.com/snapdesk/snapdesk/internal/layout"
)

func newHotkeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotkey",
		Short: "Bind layouts to global key combinations",
	}
	cmd.AddCommand(newHotkeyBindCmd(a), newHotkeyUnbindCmd(a), newHotkeyListCmd(a))
	return cmd
}

func newHotkeyBindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bind <combo> <layout>",
		Short: "Bind a key combination (e.g. ctrl+alt+1) to a layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mods, key, err := hotkeys.ParseCombo(args[0])
			if err != nil {
				return err
			}
			profile, err := a.layouts.GetByName(ctx, args[1])
			if err != nil {
				return err
			}

			record := &layout.HotkeyRecord{
				Mods:      mods,
				Key:       key,
				Action:    profile.Name,
				IsEnabled: true,
			}
			if err := a.bindings.Create(ctx, record); err != nil {
				return err
			}

			profile.HotkeyID = record.ID
			if err := a.layouts.Update(ctx, profile); err != nil {
				return err
			}
			fmt.Printf("Bound %s to %q\n", args[0], profile.Name)
			fmt.Println("Run `snapdesk watch` to activate global hotkeys")
			return nil
		},
	}
}

func newHotkeyUnbindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unbind <layout>",
		Short: "Remove the key binding of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile, err := a.layouts.GetByName(ctx, args[0])
			if err != nil {
				return err
			}
			if profile.HotkeyID == "" {
				fmt.Printf("Layout %q has no key binding\n", profile.Name)
				return nil
			}
			if err := a.bindings.Delete(ctx, profile.HotkeyID); err != nil {
				return err
			}
			profile.HotkeyID = ""
			if err := a.layouts.Update(ctx, profile); err != nil {
				return err
			}
			fmt.Printf("Unbound %q\n", profile.Name)
			return nil
		},
	}
}

func newHotkeyListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List key bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.bindings.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No key bindings")
				return nil
			}
			for _, r := range records {
				state := "enabled"
				if !r.IsEnabled {
					state = "disabled"
				}
				fmt.Printf("%-20s -> %-24s %s\n", hotkeys.FormatCombo(r.Mods, r.Key), r.Action, state)
			}
			return nil
		},
	}
}
