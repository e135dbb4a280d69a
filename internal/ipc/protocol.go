// Package ipc implements the newline-delimited JSON protocol between
// the snapdesk CLI and a running watch daemon, over a per-user unix
// socket.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType names one daemon operation.
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListLayouts CommandType = "LIST_LAYOUTS"
	CommandApplyLayout CommandType = "APPLY_LAYOUT"
)

// Request is one client command, a single JSON line.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the daemon's single-line answer.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS.
type StatusData struct {
	ActiveLayout   string `json:"active_layout"`
	WatchedHotkeys int    `json:"watched_hotkeys"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	DaemonRunning  bool   `json:"daemon_running"`
}

// LayoutSummary is one entry in LIST_LAYOUTS output.
type LayoutSummary struct {
	Name        string `json:"name"`
	WindowCount int    `json:"window_count"`
	IsActive    bool   `json:"is_active"`
}

// LayoutsData is returned by LIST_LAYOUTS.
type LayoutsData struct {
	Layouts      []LayoutSummary `json:"layouts"`
	ActiveLayout string          `json:"active_layout"`
}

// ApplyLayoutPayload is the payload of APPLY_LAYOUT.
type ApplyLayoutPayload struct {
	LayoutName string `json:"layout_name"`
}

// ApplyResultData is returned by APPLY_LAYOUT.
type ApplyResultData struct {
	Applied int      `json:"applied"`
	Missing []string `json:"missing,omitempty"`
	Failed  int      `json:"failed"`
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message.
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
