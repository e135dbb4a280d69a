package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/snapdesk/snapdesk/internal/desk"
	"github.com/snapdesk/snapdesk/internal/layout"
	"github.com/snapdesk/snapdesk/internal/runtimepath"
)

// Server answers control requests from CLI clients while the watch
// daemon runs. One goroutine per connection; each connection carries a
// single request/response pair.
type Server struct {
	socketPath string
	listener   net.Listener
	log        *clog.Logger

	engine  *desk.Engine
	layouts *layout.Repository

	// hotkeyCount returns how many hotkeys the daemon currently watches.
	hotkeyCount func() int
	// reload asks the daemon to re-read bindings from the store.
	reload func() error

	startTime time.Time

	shutdownMu   sync.Mutex
	shuttingDown bool
}

// NewServer creates a control server. hotkeyCount and reload hook back
// into the owning daemon.
func NewServer(engine *desk.Engine, layouts *layout.Repository, logger *clog.Logger,
	hotkeyCount func() int, reload func() error) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve control socket path: %w", err)
	}

	// A stale socket from a crashed daemon would block the listen.
	os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		log:         logger.With("component", "ipc"),
		engine:      engine,
		layouts:     layouts,
		hotkeyCount: hotkeyCount,
		reload:      reload,
		startTime:   time.Now(),
	}, nil
}

// Start begins listening for control connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create control socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info("control socket listening", "path", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.log.Warn("accept failed", "err", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Warn("read failed", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.log.Warn("cannot marshal response", "err", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Warn("cannot send response", "err", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandApplyLayout:
		return s.handleApplyLayout(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	s.log.Info("reload requested")
	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to reload bindings: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	ctx, cancel := s.requestContext()
	defer cancel()

	activeName := ""
	if active, err := s.layouts.GetActive(ctx); err == nil {
		activeName = active.Name
	}

	status := StatusData{
		ActiveLayout:   activeName,
		WatchedHotkeys: s.hotkeyCount(),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:  true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListLayouts() *Response {
	ctx, cancel := s.requestContext()
	defer cancel()

	profiles, err := s.layouts.GetAll(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to list layouts: %v", err))
	}

	data := LayoutsData{Layouts: make([]LayoutSummary, 0, len(profiles))}
	for _, p := range profiles {
		data.Layouts = append(data.Layouts, LayoutSummary{
			Name:        p.Name,
			WindowCount: p.WindowCount,
			IsActive:    p.IsActive,
		})
		if p.IsActive {
			data.ActiveLayout = p.Name
		}
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleApplyLayout(payload json.RawMessage) *Response {
	var req ApplyLayoutPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid apply payload: %v", err))
	}
	if req.LayoutName == "" {
		return NewErrorResponse("layout_name is required")
	}

	ctx, cancel := s.requestContext()
	defer cancel()

	report, err := s.engine.Apply(ctx, req.LayoutName)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to apply layout: %v", err))
	}

	result := ApplyResultData{Applied: report.Applied, Failed: report.Failed}
	for _, m := range report.Missing {
		result.Missing = append(result.Missing, m.AppID)
	}

	resp, _ := NewOKResponse(result)
	return resp
}

func (s *Server) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	_, _ = conn.Write(data)
}

// Stop gracefully shuts down the control socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
