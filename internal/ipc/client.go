package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winsync/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for the daemon listening on
// socketPath.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    10 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) sendStatus(cmd CommandType, payload any) (*StatusData, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() (*StatusData, error) {
	return c.sendStatus(CommandReload, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	return c.sendStatus(CommandGetStatus, nil)
}

// GetDisplays retrieves display information
func (c *Client) GetDisplays() (*DisplaysData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetDisplays})
	if err != nil {
		return nil, err
	}

	var displays DisplaysData
	if err := json.Unmarshal(resp.Data, &displays); err != nil {
		return nil, fmt.Errorf("failed to parse displays data: %w", err)
	}
	return &displays, nil
}

// SetWindowMode requests windowed, borderless or fullscreen mode.
func (c *Client) SetWindowMode(mode string) (*StatusData, error) {
	return c.sendStatus(CommandSetWindowMode, ModePayload{Mode: mode})
}

// SetWindowState requests a window state such as "maximised".
func (c *Client) SetWindowState(state string) (*StatusData, error) {
	return c.sendStatus(CommandSetWindowState, StatePayload{State: state})
}

// SetWindowSize sets the windowed size.
func (c *Client) SetWindowSize(width, height int) (*StatusData, error) {
	return c.sendStatus(CommandSetWindowSize, SizePayload{Width: width, Height: height})
}

// SetFullscreenSize sets the exclusive fullscreen resolution.
func (c *Client) SetFullscreenSize(width, height int) (*StatusData, error) {
	return c.sendStatus(CommandSetWindowSize, SizePayload{Width: width, Height: height, Fullscreen: true})
}

// SetWindowPosition places the window relative to its display.
func (c *Client) SetWindowPosition(x, y float64) (*StatusData, error) {
	return c.sendStatus(CommandSetWindowPosition, PositionPayload{X: x, Y: y})
}

func (c *Client) SetWindowTitle(title string) (*StatusData, error) {
	return c.sendStatus(CommandSetWindowTitle, TitlePayload{Title: title})
}

// SetDisplay moves the window to the display at index.
func (c *Client) SetDisplay(index int) (*StatusData, error) {
	return c.sendStatus(CommandSetDisplay, DisplayPayload{Index: index})
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
