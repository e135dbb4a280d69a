// Command snapdesk manages named snapshots of desktop window
// arrangements: capture the current arrangement, re-apply it later, and
// bind layouts to global hotkeys.
package main

import (
	"context"
	"fmt"
	"os"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/snapdesk/snapdesk/internal/config"
	"github.com/snapdesk/snapdesk/internal/desk"
	"github.com/snapdesk/snapdesk/internal/layout"
	"github.com/snapdesk/snapdesk/internal/logging"
	"github.com/snapdesk/snapdesk/internal/platform"
	"github.com/snapdesk/snapdesk/internal/store"
)

// app holds the wired subsystems shared by all commands. It is built
// once in the root PersistentPreRunE and torn down after the run.
type app struct {
	cfg      *config.Config
	log      *clog.Logger
	store    *store.Service
	layouts  *layout.Repository
	bindings *layout.HotkeyRepository
	platform *platform.Platform
	engine   *desk.Engine
}

func (a *app) setup(ctx context.Context, configPath, logLevel string) error {
	var err error
	if configPath != "" {
		a.cfg, err = config.LoadFromPath(configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if logLevel != "" {
		a.cfg.Logging.Level = logLevel
	}

	a.log = logging.New(a.cfg.Logging.Level)
	a.store = store.NewService(a.cfg.Database, a.log)
	a.layouts = layout.NewRepository(a.store, a.log)
	a.bindings = layout.NewHotkeyRepository(a.store, a.log)
	a.platform = platform.New()
	a.engine = desk.NewEngine(a.platform.Windows, a.layouts, a.log)

	if !a.platform.Caps.Windows {
		a.log.Warn("no window system available, window operations are disabled")
	}
	return a.store.Initialize(ctx)
}

func (a *app) teardown() {
	if a.platform != nil {
		a.platform.Close()
	}
	if a.store != nil {
		if err := a.store.Disconnect(); err != nil {
			a.log.Warn("store disconnect failed", "err", err)
		}
	}
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "snapdesk:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath, logLevel string

	root := &cobra.Command{
		Use:           "snapdesk",
		Short:         "Save and restore desktop window layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context(), configPath, logLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.snapdesk/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newCaptureCmd(a),
		newApplyCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newWindowsCmd(a),
		newMonitorsCmd(a),
		newDBCmd(a),
		newHotkeyCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
		newReloadCmd(a),
	)
	return root
}
