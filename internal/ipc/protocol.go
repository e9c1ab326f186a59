package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winsync/internal/window"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload            CommandType = "RELOAD"
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandGetDisplays       CommandType = "GET_DISPLAYS"
	CommandSetWindowMode     CommandType = "SET_WINDOW_MODE"
	CommandSetWindowState    CommandType = "SET_WINDOW_STATE"
	CommandSetWindowSize     CommandType = "SET_WINDOW_SIZE"
	CommandSetWindowPosition CommandType = "SET_WINDOW_POSITION"
	CommandSetWindowTitle    CommandType = "SET_WINDOW_TITLE"
	CommandSetDisplay        CommandType = "SET_DISPLAY"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS and the SET_*
// commands.
type StatusData struct {
	Window        window.Snapshot `json:"window"`
	Backend       string          `json:"backend"`
	Frames        uint64          `json:"frames"`
	FrameFailures uint64          `json:"frame_failures"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	DaemonRunning bool            `json:"daemon_running"`
}

// DisplayInfo represents information about a single display
type DisplayInfo struct {
	ID      uint32   `json:"id"`
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Current bool     `json:"current"`
	Modes   []string `json:"modes,omitempty"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

type ModePayload struct {
	Mode string `json:"mode"`
}

type StatePayload struct {
	State string `json:"state"`
}

// SizePayload sets the windowed size, or the exclusive fullscreen
// resolution when Fullscreen is set.
type SizePayload struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen,omitempty"`
}

type PositionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TitlePayload struct {
	Title string `json:"title"`
}

type DisplayPayload struct {
	Index int `json:"index"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
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

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
