// Package layout holds the persisted domain model — layout profiles,
// window placements, hotkey records — and the typed repositories over
// the store service.
package layout

import (
	"time"

	"github.com/snapdesk/snapdesk/internal/hotkeys"
	"github.com/snapdesk/snapdesk/internal/platform"
)

// WindowPlacement is the target position/size/monitor/state for one
// window within a layout. Windows are identified by application id and
// title hint, never by raw OS handles: handles do not survive sessions,
// so restore re-resolves windows against the live window list.
type WindowPlacement struct {
	AppID     string               `json:"appId"`
	TitleHint string               `json:"titleHint,omitempty"`
	X         int                  `json:"x"`
	Y         int                  `json:"y"`
	Width     int                  `json:"width"`
	Height    int                  `json:"height"`
	Monitor   int                  `json:"monitor"`
	State     platform.WindowState `json:"state"`
}

// Profile is a named, persisted snapshot of window placements.
// At most one profile is active at any time.
type Profile struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsActive    bool
	Placements  []WindowPlacement
	HotkeyID    string
	WindowCount int
}

// HotkeyRecord binds a persisted key combination to an action. The key
// combination is unique across all records; the runtime registry id that
// binds a combination to an OS registration is a separate, transient
// identifier.
type HotkeyRecord struct {
	ID        string
	Mods      hotkeys.Modifiers
	Key       int
	Action    string
	IsEnabled bool
}

// Statistics summarizes the layout collection.
type Statistics struct {
	TotalCount       int64
	ActiveCount      int64
	AverageWindows   float64
	MostRecentName   string
	OldestName       string
	CreatedToday     int64
	UpdatedToday     int64
	WithHotkeyCount  int64
	TotalWindowCount int64
}
