package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/bingo/internal/model"
)

// LoadFunc produces the card to play, from disk or from a server.
type LoadFunc func(ctx context.Context) (*model.Game, error)

type Options struct {
	Title     string
	LongPress time.Duration // hold time before a press un-completes a done cell
	Logger    *log.Logger
}

// Result is the state the grid was left in on quit.
type Result struct {
	Game    *model.Game
	Changed bool
}

type phase int

const (
	phaseLoading phase = iota
	phaseReady
	phaseFailed
)

type gameLoadedMsg struct{ game *model.Game }

type loadFailedMsg struct{ err error }

// longPressMsg fires when a hold timer expires. It is dropped unless seq is
// still the armed press, so a canceled timer can never mutate the card.
type longPressMsg struct{ seq, row, col int }

type press struct {
	active    bool
	row, col  int
	armed     bool
	triggered bool
	seq       int
}

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Complete, Uncomplete  key.Binding
	Find, Quit            key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Uncomplete, k.Find, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Left, k.Right}, k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Complete:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/click", "complete")),
		Uncomplete: key.NewBinding(key.WithKeys("u", "backspace"), key.WithHelp("u/hold", "un-complete")),
		Find:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Model struct {
	ctx  context.Context
	load LoadFunc
	opt  Options
	log  *log.Logger

	phase   phase
	err     error
	game    *model.Game
	changed bool

	row, col int
	press    press

	// Inline find
	finding bool
	ti      textinput.Model
	findErr string

	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
}

func New(ctx context.Context, load LoadFunc, opt Options) Model {
	if opt.Title == "" {
		opt.Title = "Bingo"
	}
	if opt.LongPress <= 0 {
		opt.LongPress = 800 * time.Millisecond
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Find item..."
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return Model{
		ctx:     ctx,
		load:    load,
		opt:     opt,
		log:     logger,
		ti:      ti,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeys(),
		width:   80,
	}
}

// Run shows the grid until the user quits. A card that failed to load is
// reported as the returned error after the screen closes.
func Run(ctx context.Context, load LoadFunc, opt Options) (Result, error) {
	p := tea.NewProgram(New(ctx, load, opt), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	fm, ok := finalModel.(Model)
	if !ok {
		return Result{}, nil
	}
	if fm.err != nil {
		return Result{}, fm.err
	}
	return Result{Game: fm.game, Changed: fm.changed}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		g, err := load(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return gameLoadedMsg{game: g}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case gameLoadedMsg:
		m.game, m.phase = msg.game, phaseReady
		m.log.WithField("items", msg.game.Len()).Info("bingo loaded")
		return m, nil
	case loadFailedMsg:
		m.err, m.phase = msg.err, phaseFailed
		m.log.WithError(msg.err).Error("could not load bingo")
		return m, nil
	}

	if m.phase != phaseReady {
		if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.finding {
		return m.updateFind(msg)
	}

	switch msg := msg.(type) {
	case longPressMsg:
		if !m.press.armed || msg.seq != m.press.seq {
			return m, nil
		}
		m.press.armed = false
		m.press.triggered = true
		m.log.Infof("Long press detected - uncompleting cell at (%d, %d)", msg.row, msg.col)
		m.setCompleted(msg.row, msg.col, false)
		return m, nil
	case tea.MouseMsg:
		return m.updateMouse(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1, 0)
		case key.Matches(msg, m.keys.Left):
			m.moveCursor(0, -1)
		case key.Matches(msg, m.keys.Right):
			m.moveCursor(0, 1)
		case key.Matches(msg, m.keys.Complete):
			m.log.Infof("Selected cell at (%d, %d)", m.row, m.col)
			m.setCompleted(m.row, m.col, true)
		case key.Matches(msg, m.keys.Uncomplete):
			m.log.Infof("Uncompleting cell at (%d, %d)", m.row, m.col)
			m.setCompleted(m.row, m.col, false)
		case key.Matches(msg, m.keys.Find):
			m.finding = true
			m.findErr = ""
			m.ti.SetValue("")
			return m, m.ti.Focus()
		}
	}
	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	row, col, onCell := m.cellAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !onCell {
			return m, nil
		}
		m.cancelLongPress()
		m.row, m.col = row, col
		m.press.active, m.press.row, m.press.col = true, row, col
		m.press.triggered = false
		if it, ok := m.game.Item(row, col); ok && it.Done {
			return m, m.armLongPress(row, col)
		}
	case tea.MouseActionMotion:
		if m.press.active && (!onCell || row != m.press.row || col != m.press.col) {
			m.endPress()
		}
	case tea.MouseActionRelease:
		if !m.press.active {
			return m, nil
		}
		sameCell := onCell && row == m.press.row && col == m.press.col
		m.cancelLongPress()
		if sameCell && !m.press.triggered {
			if it, ok := m.game.Item(row, col); ok && !it.Done {
				m.log.Infof("Clicked cell at (%d, %d)", row, col)
				m.setCompleted(row, col, true)
			}
		}
		m.endPress()
	}
	return m, nil
}

func (m Model) updateFind(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			q := strings.ToLower(strings.TrimSpace(m.ti.Value()))
			if q == "" {
				m.findErr = "Type part of an item name"
				return m, nil
			}
			if !m.find(q) {
				m.findErr = "No item matches " + q
				return m, nil
			}
			m.finding = false
			m.ti.Blur()
			return m, nil
		case "esc":
			m.finding = false
			m.ti.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

// find moves the cursor to the next item after it whose name contains q.
func (m *Model) find(q string) bool {
	items := m.game.Items()
	n := len(items)
	start := m.row*m.game.GridSize() + m.col
	for off := 1; off <= n; off++ {
		i := (start + off) % n
		if strings.Contains(strings.ToLower(items[i].Name), q) {
			m.row, m.col = i/m.game.GridSize(), i%m.game.GridSize()
			return true
		}
	}
	return false
}

func (m *Model) armLongPress(row, col int) tea.Cmd {
	m.press.seq++
	m.press.armed = true
	seq := m.press.seq
	return tea.Tick(m.opt.LongPress, func(time.Time) tea.Msg {
		return longPressMsg{seq: seq, row: row, col: col}
	})
}

func (m *Model) cancelLongPress() {
	if m.press.armed {
		m.press.armed = false
		m.press.seq++
	}
}

func (m *Model) endPress() {
	m.cancelLongPress()
	m.press = press{seq: m.press.seq}
}

// setCompleted logs and ignores cells with no item.
func (m *Model) setCompleted(row, col int, done bool) {
	if err := m.game.SetItemCompleted(row, col, done); err != nil {
		m.log.WithError(err).Error("couldn't update item")
		return
	}
	m.changed = true
}

func (m *Model) moveCursor(dr, dc int) {
	n := m.game.GridSize()
	m.row = (m.row + dr + n) % n
	m.col = (m.col + dc + n) % n
}

func (m Model) cellWidth() int {
	n := 8
	if m.game != nil {
		n = m.game.GridSize()
	}
	w := (m.width - 2*gridLeft - (n-1)*cellGap) / n
	if w < 6 {
		w = 6
	}
	if w > 24 {
		w = 24
	}
	return w
}

// cellAt maps a terminal position to a grid coordinate.
func (m Model) cellAt(x, y int) (row, col int, ok bool) {
	if m.game == nil || x < gridLeft || y < gridTop {
		return 0, 0, false
	}
	stride := m.cellWidth() + cellGap
	off := x - gridLeft
	if off%stride >= m.cellWidth() {
		return 0, 0, false
	}
	row, col = y-gridTop, off/stride
	n := m.game.GridSize()
	if row >= n || col >= n {
		return 0, 0, false
	}
	return row, col, true
}

func (m Model) View() string {
	switch m.phase {
	case phaseLoading:
		return panelStyle.Render(m.spinner.View() + " Loading...")
	case phaseFailed:
		return panelStyle.Render(errorStyle.Render("Could not load bingo: "+m.err.Error()) + "\n\n" + mutedStyle.Render("q quit"))
	}

	dn, pn := m.game.Stats()
	header := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render(m.opt.Title),
		successStyle.Render("✔"), dn,
		pendingStyle.Render("•"), pn,
		accentStyle.Render("Total"), m.game.Len(),
	)
	lines := []string{header, mutedStyle.Render(progressBar(dn, m.game.Len(), 28)), ""}

	n, cw := m.game.GridSize(), m.cellWidth()
	for row := 0; row < n; row++ {
		cells := make([]string, 0, n)
		for col := 0; col < n; col++ {
			cells = append(cells, m.renderCell(row, col, cw))
		}
		lines = append(lines, strings.Join(cells, strings.Repeat(" ", cellGap)))
	}
	lines = append(lines, "")
	if it, ok := m.game.Item(m.row, m.col); ok {
		lines = append(lines, accentStyle.Render(fmt.Sprintf("(%d, %d) ", m.row, m.col))+it.Name)
	} else {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("(%d, %d) empty", m.row, m.col)))
	}
	lines = append(lines, m.help.View(m.keys))

	content := strings.Join(lines, "\n")
	if m.finding {
		title := "Find item"
		if m.findErr != "" {
			title += " " + errorStyle.Render(m.findErr)
		}
		content += "\n" + inputStyle.Render(title+"\n"+m.ti.View())
	}
	return panelStyle.Render(content)
}

func (m Model) renderCell(row, col, width int) string {
	it, ok := m.game.Item(row, col)
	if !ok {
		return emptyStyle.Render(cellText("·", width))
	}
	text := cellText(it.Name, width)
	if row == m.row && col == m.col {
		return selectedStyle.Render(text)
	}
	if it.Done {
		return doneCellStyle.Render(text)
	}
	return cellStyle.Render(text)
}
