package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/1broseidon/winsync/internal/editor"
	"github.com/1broseidon/winsync/internal/input"
)

// Clipboard is the system clipboard used by the editor.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

const editorHistoryLimit = 500

var (
	selectionStyle = lipgloss.NewStyle().Reverse(true)
	caretStyle     = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("15"))
	editorTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	editorDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// EditorModel edits a single text buffer through an undoable action history.
type EditorModel struct {
	title   string
	history *editor.History
	clip    Clipboard

	lastKey input.KeyboardKey
	status  string

	saved    bool
	quitting bool

	width  int
	height int
}

// NewEditorModel creates an editor over initial with the caret at the end.
// A nil clip uses the system clipboard.
func NewEditorModel(title, initial string, clip Clipboard) EditorModel {
	if clip == nil {
		clip = systemClipboard{}
	}
	return EditorModel{
		title:   title,
		history: editor.NewHistory(editor.NewState(initial), editorHistoryLimit),
		clip:    clip,
	}
}

// Text returns the current buffer.
func (m EditorModel) Text() string { return m.history.State().Text() }

// Saved reports whether the editor was closed with ctrl+s.
func (m EditorModel) Saved() bool { return m.saved }

// Init implements tea.Model.
func (m EditorModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.history.State()
	m.status = ""

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			m.lastKey = input.KeyFromRune(msg.Runes[0])
			if !m.lastKey.Printable() {
				return m, nil
			}
		}
		m.history.Do(editor.NewAddText(string(msg.Runes)))
	case tea.KeySpace:
		m.lastKey = input.From(input.KeySpace)
		m.history.Do(editor.NewAddText(" "))
	case tea.KeyEnter:
		m.lastKey = input.From(input.KeyEnter)
		m.history.Do(editor.NewAddText("\n"))
	case tea.KeyBackspace:
		m.lastKey = input.From(input.KeyBackspace)
		m.history.Do(editor.NewDeleteBy(-1))
	case tea.KeyDelete:
		m.lastKey = input.From(input.KeyDelete)
		m.history.Do(editor.NewDeleteBy(1))
	case tea.KeyLeft:
		m.lastKey = input.From(input.KeyLeft)
		m.history.Do(editor.NewMoveCursorBy(-1))
	case tea.KeyRight:
		m.lastKey = input.From(input.KeyRight)
		m.history.Do(editor.NewMoveCursorBy(1))
	case tea.KeyShiftLeft:
		m.lastKey = input.From(input.KeyLeft)
		m.history.Do(editor.NewExpandSelectionBy(-1))
	case tea.KeyShiftRight:
		m.lastKey = input.From(input.KeyRight)
		m.history.Do(editor.NewExpandSelectionBy(1))
	case tea.KeyUp, tea.KeyDown, tea.KeyShiftUp, tea.KeyShiftDown:
		m.moveLine(msg.Type)
	case tea.KeyCtrlA:
		m.history.Do(editor.NewSelectAll())
	case tea.KeyHome:
		start, _ := lineBounds([]rune(s.Text()), s.SelectionEnd())
		m.history.Do(editor.NewSetSelection(start, start))
	case tea.KeyEnd:
		_, end := lineBounds([]rune(s.Text()), s.SelectionEnd())
		m.history.Do(editor.NewSetSelection(end, end))
	case tea.KeyCtrlZ:
		if !m.history.Undo() {
			m.status = "nothing to undo"
		}
	case tea.KeyCtrlY:
		if !m.history.Redo() {
			m.status = "nothing to redo"
		}
	case tea.KeyCtrlC:
		m.copySelection()
	case tea.KeyCtrlX:
		if m.copySelection() {
			m.history.Do(editor.NewDeleteBy(0))
		}
	case tea.KeyCtrlV:
		text, err := m.clip.ReadAll()
		if err != nil {
			m.status = fmt.Sprintf("paste: %v", err)
			break
		}
		m.history.Do(editor.NewAddText(text))
	case tea.KeyCtrlS:
		m.saved = true
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *EditorModel) copySelection() bool {
	s := m.history.State()
	if s.HasCaret() {
		m.status = "nothing selected"
		return false
	}
	if err := m.clip.WriteAll(s.SelectedText()); err != nil {
		m.status = fmt.Sprintf("copy: %v", err)
		return false
	}
	m.status = fmt.Sprintf("copied %d characters", s.SelectionLength())
	return true
}

// moveLine moves the selection end to the same display column on the
// previous or next line.
func (m *EditorModel) moveLine(k tea.KeyType) {
	s := m.history.State()
	text := []rune(s.Text())
	pos := s.SelectionEnd()

	up := k == tea.KeyUp || k == tea.KeyShiftUp
	if up {
		m.lastKey = input.From(input.KeyUp)
	} else {
		m.lastKey = input.From(input.KeyDown)
	}

	start, end := lineBounds(text, pos)
	col := runewidth.StringWidth(string(text[start:pos]))

	var target int
	switch {
	case up && start == 0:
		target = 0
	case up:
		prevStart, prevEnd := lineBounds(text, start-1)
		target = columnOffset(text[prevStart:prevEnd], col) + prevStart
	case end == len(text):
		target = len(text)
	default:
		nextStart, nextEnd := lineBounds(text, end+1)
		target = columnOffset(text[nextStart:nextEnd], col) + nextStart
	}

	if k == tea.KeyShiftUp || k == tea.KeyShiftDown {
		m.history.Do(editor.NewSetSelection(s.SelectionStart(), target))
		return
	}
	m.history.Do(editor.NewSetSelection(target, target))
}

// lineBounds returns the rune offsets of the start and end (excluding the
// newline) of the line containing pos.
func lineBounds(text []rune, pos int) (int, int) {
	start := pos
	for start > 0 && text[start-1] != '\n' {
		start--
	}
	end := pos
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return start, end
}

// columnOffset returns the rune offset in line closest to display column col
// without passing it.
func columnOffset(line []rune, col int) int {
	w := 0
	for i, r := range line {
		rw := runewidth.RuneWidth(r)
		if w+rw > col {
			return i
		}
		w += rw
	}
	return len(line)
}

// caretPosition returns the 1-based line and display column of pos.
func caretPosition(text []rune, pos int) (int, int) {
	line := 1 + strings.Count(string(text[:pos]), "\n")
	start, _ := lineBounds(text, pos)
	return line, runewidth.StringWidth(string(text[start:pos])) + 1
}

// View implements tea.Model.
func (m EditorModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.history.State()

	header := editorTitle.Render(m.title) +
		editorDim.Render("  ctrl+s: save  esc: cancel  ctrl+z/y: undo/redo  ctrl+c/x/v: clipboard")

	bodyHeight := m.height - 3
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	lines := m.renderLines(s)
	text := []rune(s.Text())
	caretLine, caretCol := caretPosition(text, s.SelectionEnd())
	top := 0
	if caretLine > bodyHeight {
		top = caretLine - bodyHeight
	}
	end := top + bodyHeight
	if end > len(lines) {
		end = len(lines)
	}
	body := strings.Join(lines[top:end], "\n")

	status := fmt.Sprintf("Ln %d, Col %d", caretLine, caretCol)
	if sel := s.SelectionLength(); sel > 0 {
		status += fmt.Sprintf("  (%d selected)", sel)
	}
	if m.history.CanUndo() {
		status += "  modified"
	}
	if m.lastKey.Key != input.KeyUnknown || m.lastKey.Character != 0 {
		status += "  " + m.lastKey.String()
	}
	if m.status != "" {
		status += "  " + m.status
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, editorDim.Render(status))
}

// renderLines styles the displayed text, highlighting the selection and the
// caret and truncating lines to the terminal width.
func (m EditorModel) renderLines(s *editor.State) []string {
	text := []rune(s.FullText())
	left, right := s.SelectionLeft(), s.SelectionRight()
	caret := -1
	if s.HasCaret() && !s.CompositionActive() {
		caret = s.SelectionEnd()
	}
	maxWidth := m.width
	if maxWidth <= 0 {
		maxWidth = 80
	}

	var lines []string
	var b strings.Builder
	width := 0
	flush := func() {
		lines = append(lines, b.String())
		b.Reset()
		width = 0
	}

	for i := 0; i <= len(text); i++ {
		var r rune
		if i < len(text) {
			r = text[i]
		}
		if i == caret {
			cell := " "
			if r != 0 && r != '\n' {
				cell = string(r)
			}
			if width+runewidth.StringWidth(cell) <= maxWidth {
				b.WriteString(caretStyle.Render(cell))
				width += runewidth.StringWidth(cell)
			}
			if r == '\n' {
				flush()
			}
			continue
		}
		if i == len(text) {
			break
		}
		if r == '\n' {
			flush()
			continue
		}
		rw := runewidth.RuneWidth(r)
		if width+rw > maxWidth {
			continue
		}
		if i >= left && i < right {
			b.WriteString(selectionStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
		width += rw
	}
	flush()
	return lines
}

// RunEditor opens a full-screen editor over initial. It returns the edited
// text and whether the user saved it.
func RunEditor(title, initial string) (string, bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return "", false, fmt.Errorf("editor requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(NewEditorModel(title, initial, nil), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m, ok := final.(EditorModel)
	if !ok {
		return "", false, fmt.Errorf("unexpected editor model %T", final)
	}
	return m.Text(), m.Saved(), nil
}
