package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/hotkeys"
	"github.com/snapdesk/snapdesk/internal/ipc"
	"github.com/snapdesk/snapdesk/internal/platform"
)

// watcher owns the runtime hotkey registrations of the watch daemon.
// Runtime ids are transient and reassigned on every (re)load.
type watcher struct {
	a *app

	mu      sync.Mutex
	actions map[int]string
}

// load releases all current registrations and re-registers the enabled
// bindings from the store. Per-binding failures are logged and skipped.
func (w *watcher) load(ctx context.Context) (int, error) {
	records, err := w.a.bindings.GetEnabled(ctx)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.a.platform.Hotkeys.UnregisterAll()
	w.actions = make(map[int]string, len(records))

	nextID := hotkeys.IDMin
	for _, r := range records {
		if err := w.a.platform.Hotkeys.Register(nextID, r.Mods, r.Key); err != nil {
			w.a.log.Warn("cannot register hotkey",
				"keys", hotkeys.FormatCombo(r.Mods, r.Key), "err", err)
			continue
		}
		w.actions[nextID] = r.Action
		w.a.log.Info("watching", "keys", hotkeys.FormatCombo(r.Mods, r.Key), "layout", r.Action)
		nextID++
	}
	return len(w.actions), nil
}

func (w *watcher) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.actions)
}

func (w *watcher) actionFor(id int) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	name, ok := w.actions[id]
	return name, ok
}

func (w *watcher) dispatch(id int) {
	name, ok := w.actionFor(id)
	if !ok {
		return
	}
	report, err := w.a.engine.Apply(context.Background(), name)
	if err != nil {
		w.a.log.Error("hotkey apply failed", "layout", name, "err", err)
		return
	}
	w.a.log.Info("layout applied via hotkey", "layout", name, "applied", report.Applied)
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the daemon: global hotkeys plus a control socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !a.platform.Caps.Hotkeys {
				return fault.New(fault.Unsupported, "global hotkeys are not available on this platform")
			}

			w := &watcher{a: a}
			registered, err := w.load(ctx)
			if err != nil {
				return err
			}
			if registered == 0 {
				fmt.Println("No active key bindings; bind one with `snapdesk hotkey bind`, then `snapdesk reload`")
			}
			defer a.platform.Hotkeys.UnregisterAll()

			dispatcher, ok := a.platform.Hotkeys.(platform.HotkeyDispatcher)
			if !ok {
				return fault.New(fault.Unsupported, "hotkey backend has no event dispatch")
			}
			dispatcher.SetHandler(w.dispatch)

			server, err := ipc.NewServer(a.engine, a.layouts, a.log, w.count, func() error {
				_, err := w.load(context.Background())
				return err
			})
			if err != nil {
				return err
			}
			if err := server.Start(); err != nil {
				return err
			}
			defer server.Stop()

			a.log.Info("daemon running", "hotkeys", registered)
			a.platform.Run()
			return nil
		},
	}
}
