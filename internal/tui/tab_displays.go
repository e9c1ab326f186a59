package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/native"
)

// displayItem implements list.Item for the display sidebar.
type displayItem struct {
	info ipc.DisplayInfo
}

func (i displayItem) Title() string {
	prefix := "  "
	if i.info.Current {
		prefix = "* "
	}
	return fmt.Sprintf("%s%d %s", prefix, i.info.Index, i.info.Name)
}

func (i displayItem) Description() string { return "" }
func (i displayItem) FilterValue() string { return i.info.Name }

// DisplaysTab lists the connected displays and moves the window between them.
type DisplaysTab struct {
	list   list.Model
	client daemonClient

	displays []ipc.DisplayInfo
	window   *native.Rect

	statusText string

	width  int
	height int
	ready  bool
}

// NewDisplaysTab creates an empty DisplaysTab; SetDisplays fills it.
func NewDisplaysTab(client daemonClient) DisplaysTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Displays"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return DisplaysTab{
		list:   l,
		client: client,
	}
}

// SetDisplays replaces the display list, keeping the selection in range.
func (dt *DisplaysTab) SetDisplays(displays []ipc.DisplayInfo, status *ipc.StatusData) {
	dt.displays = displays
	dt.window = nil
	if status != nil {
		s := status.Window
		dt.window = &native.Rect{X: s.Position.X, Y: s.Position.Y, Width: s.Size.Width, Height: s.Size.Height}
	}

	items := make([]list.Item, 0, len(displays))
	for _, d := range displays {
		items = append(items, displayItem{info: d})
	}
	idx := dt.list.Index()
	dt.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		dt.list.Select(idx)
	}
}

// Init implements tea.Model.
func (dt DisplaysTab) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (dt DisplaysTab) Update(msg tea.Msg) (DisplaysTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dt.width = msg.Width
		dt.height = msg.Height
		dt.updateListSize()
		dt.ready = true
		return dt, nil

	case statusMsg:
		if msg.err != nil {
			dt.statusText = "error: " + msg.err.Error()
		} else {
			dt.statusText = msg.text
		}
		return dt, clearStatusAfter(3 * time.Second)

	case clearStatusMsg:
		dt.statusText = ""
		return dt, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "a":
			return dt.moveToSelected()
		}
	}

	var cmd tea.Cmd
	dt.list, cmd = dt.list.Update(msg)
	return dt, cmd
}

func (dt *DisplaysTab) updateListSize() {
	listHeight := dt.height - 2
	if listHeight < 1 {
		listHeight = 1
	}
	dt.list.SetSize(dt.sidebarWidth(), listHeight)
}

func (dt DisplaysTab) sidebarWidth() int {
	// Sidebar takes ~35% of width, min 20, max 40
	sw := dt.width * 35 / 100
	if sw < 20 {
		sw = 20
	}
	if sw > 40 {
		sw = 40
	}
	return sw
}

func (dt DisplaysTab) selected() (ipc.DisplayInfo, bool) {
	item, ok := dt.list.SelectedItem().(displayItem)
	if !ok {
		return ipc.DisplayInfo{}, false
	}
	return item.info, true
}

func (dt DisplaysTab) moveToSelected() (DisplaysTab, tea.Cmd) {
	d, ok := dt.selected()
	if !ok {
		return dt, nil
	}
	if dt.client == nil {
		dt.statusText = "daemon not connected"
		return dt, clearStatusAfter(3 * time.Second)
	}
	client := dt.client
	return dt, func() tea.Msg {
		if _, err := client.SetDisplay(d.Index); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: fmt.Sprintf("moved to display %d (%s)", d.Index, d.Name)}
	}
}

// View implements tea.Model.
func (dt DisplaysTab) View() string {
	if !dt.ready || dt.width == 0 || dt.height == 0 {
		return ""
	}
	if len(dt.displays) == 0 {
		return lipgloss.NewStyle().
			Width(dt.width).
			Height(dt.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No displays (daemon not running?)")
	}

	sidebarWidth := dt.sidebarWidth()
	previewWidth := dt.width - sidebarWidth - 3 // 3 for separator + padding
	if previewWidth < 10 {
		previewWidth = 10
	}

	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(dt.height - 2).
		Render(dt.list.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", max(dt.height-2, 1)))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, dt.renderPreview(previewWidth))
	return lipgloss.JoinVertical(lipgloss.Left, columns, dt.renderTabStatus())
}

func (dt DisplaysTab) renderPreview(previewWidth int) string {
	d, ok := dt.selected()
	if !ok {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Render(fmt.Sprintf(" %s  [display %d]", d.Name, d.Index))

	summary := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Render(" " + summarizeDisplay(d))

	modes := ""
	if len(d.Modes) > 0 {
		shown := d.Modes
		if len(shown) > 4 {
			shown = shown[:4]
		}
		modes = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render(" modes: " + strings.Join(shown, "  "))
	}

	mapHeight := dt.height - 7 // title + summary + modes + status + padding
	if mapHeight < 5 {
		mapHeight = 5
	}
	mapWidth := previewWidth - 2
	if mapWidth < 5 {
		mapWidth = 5
	}
	lines := renderDisplayMap(dt.displays, dt.window, mapWidth, mapHeight)
	mapBlock := lipgloss.NewStyle().
		Foreground(lipgloss.Color("247")).
		Render(strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, modes, "", mapBlock)
}

func (dt DisplaysTab) renderTabStatus() string {
	left := ""
	if dt.statusText != "" {
		left = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render(dt.statusText)
	}

	right := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("enter/a: move window here  ░ window  * current")

	gap := dt.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(dt.width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
