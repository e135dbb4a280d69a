// Package desk orchestrates the capture and apply flows: snapshotting
// the live window arrangement into a layout profile, and re-applying a
// stored profile to whatever windows currently exist.
package desk

import (
	"context"
	"strings"

	clog "github.com/charmbracelet/log"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/layout"
	"github.com/snapdesk/snapdesk/internal/platform"
)

// Engine binds the window backend to the layout repository.
type Engine struct {
	win     platform.WindowAPI
	layouts *layout.Repository
	log     *clog.Logger
}

// NewEngine creates an engine over the given backend and repository.
func NewEngine(win platform.WindowAPI, layouts *layout.Repository, logger *clog.Logger) *Engine {
	return &Engine{
		win:     win,
		layouts: layouts,
		log:     logger.With("component", "desk"),
	}
}

// Capture snapshots the current window arrangement into a new profile.
// Windows without an application id cannot be re-resolved later and are
// skipped. An existing profile with the same name is a Conflict.
func (e *Engine) Capture(ctx context.Context, name, description string) (*layout.Profile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fault.New(fault.InvalidParameter, "layout name must not be empty")
	}

	windows, err := e.win.ListWindows()
	if err != nil {
		return nil, err
	}

	var placements []layout.WindowPlacement
	for _, w := range windows {
		if w.AppID == "" {
			e.log.Debug("skipping window without application id", "handle", w.Handle, "title", w.Title)
			continue
		}
		monitor, err := e.win.MonitorIndex(w.Handle)
		if err != nil {
			monitor = 0
		}
		placements = append(placements, layout.WindowPlacement{
			AppID:     w.AppID,
			TitleHint: w.Title,
			X:         w.Bounds.X,
			Y:         w.Bounds.Y,
			Width:     w.Bounds.Width,
			Height:    w.Bounds.Height,
			Monitor:   monitor,
			State:     w.State,
		})
	}

	profile := &layout.Profile{
		Name:        name,
		Description: description,
		Placements:  placements,
	}
	if err := e.layouts.Create(ctx, profile); err != nil {
		return nil, err
	}
	e.log.Info("layout captured", "name", name, "windows", len(placements))
	return profile, nil
}

// ApplyReport summarizes one apply pass.
type ApplyReport struct {
	Profile *layout.Profile
	// Applied counts placements matched to a live window and positioned.
	Applied int
	// Missing lists placements whose application has no live window.
	Missing []layout.WindowPlacement
	// Failed counts windows that matched but rejected a mutation.
	Failed int
}

// Apply positions live windows per the named profile and marks it
// active. Placements whose application is not running are reported, not
// failed; per-window mutation errors are logged and counted but do not
// abort the pass.
func (e *Engine) Apply(ctx context.Context, name string) (*ApplyReport, error) {
	profile, err := e.layouts.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	windows, err := e.win.ListWindows()
	if err != nil {
		return nil, err
	}
	monitors, err := e.win.Monitors()
	if err != nil {
		monitors = nil
	}

	report := &ApplyReport{Profile: profile}
	claimed := make(map[platform.Handle]bool)

	for _, placement := range profile.Placements {
		target, ok := matchWindow(placement, windows, claimed)
		if !ok {
			report.Missing = append(report.Missing, placement)
			continue
		}
		claimed[target] = true

		if err := e.applyPlacement(target, placement, monitors); err != nil {
			e.log.Warn("placement failed", "app", placement.AppID, "err", err)
			report.Failed++
			continue
		}
		report.Applied++
	}

	if err := e.layouts.SetActive(ctx, profile.ID); err != nil {
		return report, err
	}
	e.log.Info("layout applied", "name", name,
		"applied", report.Applied, "missing", len(report.Missing), "failed", report.Failed)
	return report, nil
}

// applyPlacement restores show state first so geometry lands on a
// normal-state window, then positions it, then re-applies the captured
// state.
func (e *Engine) applyPlacement(h platform.Handle, p layout.WindowPlacement, monitors []platform.MonitorInfo) error {
	if err := e.win.RestoreWindow(h); err != nil {
		return err
	}

	bounds := platform.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
	if p.Monitor >= len(monitors) && len(monitors) > 0 {
		bounds = relocate(bounds, primaryWorkArea(monitors))
	}
	if err := e.win.SetBounds(h, bounds); err != nil {
		return err
	}

	switch p.State {
	case platform.StateMinimized:
		return e.win.Minimize(h)
	case platform.StateMaximized:
		return e.win.Maximize(h)
	}
	return e.win.BringToFront(h)
}

// matchWindow resolves a placement to an unclaimed live window: same
// application id, preferring a title-hint substring match.
func matchWindow(p layout.WindowPlacement, windows []platform.WindowInfo, claimed map[platform.Handle]bool) (platform.Handle, bool) {
	var fallback platform.Handle
	var haveFallback bool
	for _, w := range windows {
		if claimed[w.Handle] || w.AppID != p.AppID {
			continue
		}
		if p.TitleHint != "" && strings.Contains(strings.ToLower(w.Title), strings.ToLower(p.TitleHint)) {
			return w.Handle, true
		}
		if !haveFallback {
			fallback, haveFallback = w.Handle, true
		}
	}
	return fallback, haveFallback
}

// relocate shifts a rectangle captured on a now-absent monitor into the
// given work area, clamping the size to fit.
func relocate(bounds, area platform.Rect) platform.Rect {
	if bounds.Width > area.Width {
		bounds.Width = area.Width
	}
	if bounds.Height > area.Height {
		bounds.Height = area.Height
	}
	bounds.X = area.X + (area.Width-bounds.Width)/2
	bounds.Y = area.Y + (area.Height-bounds.Height)/2
	return bounds
}

func primaryWorkArea(monitors []platform.MonitorInfo) platform.Rect {
	for _, m := range monitors {
		if m.IsPrimary {
			return m.WorkArea
		}
	}
	return monitors[0].WorkArea
}
