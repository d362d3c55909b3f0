package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

// newScoreStore opens a store holding two games for amir and one for zoe.
func newScoreStore(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	games := []struct {
		player string
		score  int
	}{
		{"zoe", 300},
		{"amir", 100},
		{"amir", 200},
	}
	for _, g := range games {
		if _, err := store.SaveScore(g.player, g.score, 64, 40); err != nil {
			t.Fatalf("SaveScore(%s) failed: %v", g.player, err)
		}
	}
	return store
}

func updateScoreboard(t *testing.T, m ScoreboardModel, msg tea.Msg) (ScoreboardModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	nm, ok := next.(ScoreboardModel)
	if !ok {
		t.Fatalf("Update returned %T, want ScoreboardModel", next)
	}
	return nm, cmd
}

func TestScoreboardStartsOnPlayer(t *testing.T) {
	store := newScoreStore(t)

	tests := []struct {
		player string
		want   string
		scores int
	}{
		{"zoe", "zoe", 1},
		{"amir", "amir", 2},
		{"", "", 3},
		{"nobody", "", 3},
	}

	for _, tt := range tests {
		m := NewScoreboardModel(store, tt.player, 100, 30)
		if got := m.selected(); got != tt.want {
			t.Errorf("NewScoreboardModel(%q): got selected %q, want %q", tt.player, got, tt.want)
		}
		if len(m.scores) != tt.scores {
			t.Errorf("NewScoreboardModel(%q): got %d scores, want %d", tt.player, len(m.scores), tt.scores)
		}
	}
}

func TestScoreboardCyclesPlayers(t *testing.T) {
	m := NewScoreboardModel(newScoreStore(t), "zoe", 100, 30)

	steps := []struct {
		msg    tea.KeyMsg
		want   string
		scores int
		best   int
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, "", 3, 300},
		{runeKey('l'), "amir", 2, 200},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "", 3, 300},
		{runeKey('h'), "zoe", 1, 300},
		{tea.KeyMsg{Type: tea.KeyLeft}, "amir", 2, 200},
	}

	for i, step := range steps {
		m, _ = updateScoreboard(t, m, step.msg)

		if got := m.selected(); got != step.want {
			t.Fatalf("step %d: got player %q, want %q", i, got, step.want)
		}
		if len(m.scores) != step.scores {
			t.Errorf("step %d: got %d scores, want %d", i, len(m.scores), step.scores)
		}
		if m.scores[0].Score != step.best {
			t.Errorf("step %d: got top score %d, want %d", i, m.scores[0].Score, step.best)
		}
		for _, s := range m.scores {
			if step.want != "" && s.Player != step.want {
				t.Errorf("step %d: got a %s score in the %s list", i, s.Player, step.want)
			}
		}
	}

	out := m.View()
	for _, want := range []string{"HIGH SCORES - amir", "Games: 2", "Best: 200"} {
		if !strings.Contains(out, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}

func TestScoreboardEmpty(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()

	m := NewScoreboardModel(store, "alice", 100, 30)
	if len(m.players) != 1 {
		t.Errorf("got players %v, want only %q", m.players, allPlayers)
	}

	// Cycling a single entry stays on it.
	m, _ = updateScoreboard(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.selected(); got != "" {
		t.Errorf("got player %q, want everyone", got)
	}

	out := m.View()
	if !strings.Contains(out, "No finished games yet.") {
		t.Errorf("got %q, want the empty message", out)
	}
	if strings.Contains(out, "Games:") {
		t.Error("stats line drawn without any games")
	}
}

func TestScoreboardResize(t *testing.T) {
	m := NewScoreboardModel(newScoreStore(t), "amir", 100, 30)
	if !m.showSidebar {
		t.Fatal("got no sidebar at 100 columns, want one")
	}
	if out := m.View(); !strings.Contains(out, "Players") {
		t.Error("wide view is missing the player list")
	}

	m, _ = updateScoreboard(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if m.showSidebar {
		t.Error("got a sidebar at 60 columns, want none")
	}
	out := m.View()
	if strings.Contains(out, "Players") {
		t.Error("narrow view still shows the player list")
	}
	if !strings.Contains(out, "amir") {
		t.Error("narrow view is missing the selected player")
	}
	if len(m.scores) != 2 {
		t.Errorf("got %d scores after resize, want 2", len(m.scores))
	}
}

func TestScoreboardQuit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m := NewScoreboardModel(newScoreStore(t), "", 100, 30)

		m, cmd := updateScoreboard(t, m, msg)
		if !m.quitting {
			t.Errorf("%s: got quitting false, want true", msg)
		}
		if cmd == nil {
			t.Errorf("%s: got nil command, want tea.Quit", msg)
		}
		if got := m.View(); got != "" {
			t.Errorf("%s: got view %q after quit, want empty", msg, got)
		}
	}
}
