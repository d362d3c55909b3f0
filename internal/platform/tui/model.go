package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/session"
)

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Model is the Bubble Tea model for playing one session.
// The session must already be started.
type Model struct {
	sess     *session.Session
	screen   *core.Screen
	keys     KeyMap
	help     help.Model
	swipe    core.Swipe
	width    int
	height   int
	status   string
	quitting bool
	logger   *log.Logger
}

// NewModel creates a model drawing into a width x height terminal.
// A nil logger discards output.
func NewModel(sess *session.Session, width, height int, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		sess:   sess,
		screen: core.NewScreen(0, 0),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
		logger: logger,
	}
	m.help.Width = width
	m.fitScreen()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.apply(m.keys.Action(msg))

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	}

	return m, nil
}

// handleMouse turns a left-button drag that starts on the board into a move.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			break
		}
		_, board, ok := boardRect(m.sess.Snapshot().Size, m.screen.Width(), m.screen.Height())
		if ok && board.Contains(msg.X, msg.Y) {
			m.swipe.Begin(msg.X, msg.Y)
		}
	case tea.MouseActionRelease:
		if m.swipe.Active() {
			return m.apply(m.swipe.End(msg.X, msg.Y, core.DefaultSwipeDistance))
		}
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.fitScreen()
	return m, nil
}

func (m Model) apply(action core.Action) (tea.Model, tea.Cmd) {
	switch action {
	case core.ActionNone:
		return m, nil

	case core.ActionQuit:
		m.quitting = true
		if err := m.sess.Close(); err != nil {
			m.logger.Error("cannot save on quit", "error", err)
		}
		return m, tea.Quit

	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		m.fitScreen()
		return m, nil

	case core.ActionNewGame:
		m.status = ""
		if err := m.sess.NewGame(); err != nil {
			m.status = err.Error()
		}
		return m, nil
	}

	dir, ok := action.Direction()
	if !ok {
		return m, nil
	}

	res, err := m.sess.Move(dir)
	switch {
	case err != nil:
		m.logger.Error("move failed", "direction", dir, "error", err)
		m.status = "Could not save: " + err.Error()
	case res.Moved:
		m.status = ""
	}
	if res.GameOver {
		m.logger.Info("game over", "player", m.sess.Player(), "moves", m.sess.Moves())
	}
	return m, nil
}

// fitScreen sizes the board screen to the terminal minus the help footer.
func (m *Model) fitScreen() {
	footer := lipgloss.Height(m.help.View(m.keys))
	m.screen.Resize(max(m.width, 0), max(m.height-footer-1, 0))
}

// Quitting reports whether the player asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var v BoardView
	m.sess.View(func(b *game.Board) {
		v = NewBoardView(b)
	})
	v.Moves = m.sess.Moves()
	v.Player = m.sess.Player()
	v.Status = m.status

	DrawBoard(m.screen, v)
	return RenderScreen(m.screen) + "\n\n" + helpStyle.Render(m.help.View(m.keys))
}

// Run plays sess in the terminal until the player quits. The session is
// closed, and so saved, before Run returns.
func Run(sess *session.Session, width, height int, logger *log.Logger) error {
	model := NewModel(sess, width, height, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	if cerr := sess.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
