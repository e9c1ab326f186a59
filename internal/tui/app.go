package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/winsync/internal/config"
	"github.com/1broseidon/winsync/internal/ipc"
)

// daemonClient is the part of the IPC client the TUI drives.
type daemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Reload() (*ipc.StatusData, error)
	SetWindowMode(mode string) (*ipc.StatusData, error)
	SetWindowState(state string) (*ipc.StatusData, error)
	SetWindowSize(width, height int) (*ipc.StatusData, error)
	SetWindowPosition(x, y float64) (*ipc.StatusData, error)
	SetWindowTitle(title string) (*ipc.StatusData, error)
	SetDisplay(index int) (*ipc.StatusData, error)
}

const refreshInterval = 2 * time.Second

// tickMsg triggers the periodic daemon refresh.
type tickMsg struct{}

// statusMsg is sent after a daemon action completes.
type statusMsg struct {
	text string
	err  error
}

// editorFinishedMsg is sent when the external $EDITOR exits.
type editorFinishedMsg struct{ err error }

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	client     daemonClient

	activeTab Tab

	windowTab   WindowTab
	displaysTab DisplaysTab

	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// nil while the daemon is unreachable
	status   *ipc.StatusData
	displays []ipc.DisplayInfo

	width  int
	height int
}

func newModel(configPath string, client daemonClient) model {
	m := model{
		configPath: configPath,
		client:     client,
		activeTab:  TabWindow,
	}

	m.loadConfig()
	if m.result != nil {
		m.originalConfig = m.result.Config.Clone()
	}

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
	}
	m.windowTab = NewWindowTab(cfg, client)
	m.displaysTab = NewDisplaysTab(client)
	m.refresh()
	return m
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error

	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}

	if err != nil {
		m.loadErr = err
		return
	}
	m.loadErr = nil
	m.result = res
}

// savePath is where the save overlay writes the config.
func (m model) savePath() string {
	if m.configPath != "" {
		return m.configPath
	}
	if path, err := config.DefaultConfigPath(); err == nil {
		return path
	}
	return ""
}

// refresh polls the daemon and hands the result to the tabs.
func (m *model) refresh() {
	m.status = nil
	m.displays = nil
	if m.client != nil {
		if st, err := m.client.GetStatus(); err == nil {
			m.status = st
			if data, err := m.client.GetDisplays(); err == nil {
				m.displays = data.Displays
			}
		}
	}
	m.windowTab.SetStatus(m.status)
	m.displaysTab.SetDisplays(m.displays, m.status)
}

func (m model) connected() bool { return m.status != nil }

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// Approximate: status bar (1) + tab bar (2 with margin) + help bar (1) = 4 lines
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.windowTab, _ = m.windowTab.Update(sub)
	m.displaysTab, _ = m.displaysTab.Update(sub)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, m.Init()
	case statusMsg:
		// Actions change the window; show the new state with the result.
		m.refresh()
	case editorFinishedMsg:
		m.loadConfig()
		if m.result != nil {
			m.windowTab.cfg = m.result.Config
			m.originalConfig = m.result.Config.Clone()
		}
		text := "config reloaded from disk"
		if msg.err != nil {
			text = ""
		}
		var cmd tea.Cmd
		m.windowTab, cmd = m.windowTab.Update(statusMsg{text: text, err: msg.err})
		return m, cmd
	case clearStatusMsg:
		m.windowTab, _ = m.windowTab.Update(msg)
		m.displaysTab, _ = m.displaysTab.Update(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.result.Config, m.savePath(), m.client, m.connected())
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = m.result.Config.Clone()
				m.refresh()
			}
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+s":
			if m.result != nil && m.result.Config != nil {
				m.saveOverlay.Show(m.originalConfig, m.result.Config)
			}
			return m, nil
		case "ctrl+r":
			m.refresh()
			return m, nil
		case "ctrl+o":
			return m, m.editConfig()
		}
	}

	// The window form consumes keys while editing; only ctrl+c escapes.
	if m.activeTab == TabWindow && m.windowTab.editing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.windowTab, cmd = m.windowTab.Update(msg)
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabWindow
			return m, nil
		case "2":
			m.activeTab = TabDisplays
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabWindow:
		m.windowTab, cmd = m.windowTab.Update(msg)
	case TabDisplays:
		m.displaysTab, cmd = m.displaysTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.loadErr != nil:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(contentHeight).
			Padding(1, 2).
			Foreground(lipgloss.Color("196")).
			Render("Config error: " + m.loadErr.Error())
	case m.activeTab == TabDisplays:
		content = m.displaysTab.View()
	default:
		content = m.windowTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

// editConfig suspends the TUI and opens the config file in $EDITOR.
func (m model) editConfig() tea.Cmd {
	path := m.savePath()
	if path == "" {
		return func() tea.Msg { return editorFinishedMsg{err: fmt.Errorf("no config path")} }
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			err = fmt.Errorf("editor failed: %w", err)
		}
		return editorFinishedMsg{err: err}
	})
}

// Run starts the interactive control panel. configPath may be empty for the
// default location.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(configPath, ipc.NewClient()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
