package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/persist"
)

type memStore struct {
	snap    *game.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load() (game.Snapshot, error) {
	if m.loadErr != nil {
		return game.Snapshot{}, m.loadErr
	}
	if m.snap == nil {
		return game.Snapshot{}, game.ErrNoSnapshot
	}
	return *m.snap, nil
}

func (m *memStore) Save(s game.Snapshot) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = &s
	return nil
}

type scoreLog struct {
	entries []int
	err     error
}

func (l *scoreLog) SaveScore(player string, score, maxTile, moves int) (int64, error) {
	l.entries = append(l.entries, score)
	return int64(len(l.entries)), l.err
}

// nearlyStuck becomes terminal after one move right.
var nearlyStuck = game.Snapshot{
	Version: game.SnapshotVersion,
	Size:    4,
	Score:   500,
	Cells: []game.Cell{
		{X: 0, Y: 0, Value: 2}, {X: 1, Y: 0, Value: 4}, {X: 2, Y: 0, Value: 8}, {X: 3, Y: 0, Value: 16},
		{X: 0, Y: 1, Value: 4}, {X: 1, Y: 1, Value: 8}, {X: 2, Y: 1, Value: 16}, {X: 3, Y: 1, Value: 32},
		{X: 0, Y: 2, Value: 8}, {X: 1, Y: 2, Value: 2}, {X: 2, Y: 2, Value: 4}, {X: 3, Y: 2, Value: 8},
		{X: 0, Y: 3, Value: 16}, {X: 1, Y: 3, Value: 32}, {X: 2, Y: 3, Value: 64},
	},
}

func deterministic() Option {
	return WithBoardOptions(game.WithSeed(1), game.WithSpawn4Probability(0))
}

func TestStartWithoutSave(t *testing.T) {
	store := &memStore{}
	s := New(store, deterministic())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Cells) != 2 {
		t.Errorf("new game has %d tiles, want 2", len(snap.Cells))
	}
	if snap.Score != 0 {
		t.Errorf("new game score = %d, want 0", snap.Score)
	}
}

func TestStartResumesSave(t *testing.T) {
	saved := nearlyStuck
	saved.BestScore = 900
	store := &memStore{snap: &saved}
	s := New(store, deterministic())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if got := s.Snapshot(); !got.Equal(saved) {
		t.Errorf("resumed snapshot = %+v, want %+v", got, saved)
	}
}

func TestStartCorruptDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(persist.NewFileStore(path, nil), deterministic())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if n := len(s.Snapshot().Cells); n != 2 {
		t.Errorf("fresh game has %d tiles, want 2", n)
	}

	matches, _ := filepath.Glob(path + ".corrupt-*")
	if len(matches) != 1 {
		t.Errorf("found %d quarantined files, want 1", len(matches))
	}
}

func TestStartCorruptFail(t *testing.T) {
	store := &memStore{loadErr: game.ErrCorruptSnapshot}
	s := New(store, WithCorruptPolicy(PolicyFail))

	err := s.Start()
	if !errors.Is(err, game.ErrCorruptSnapshot) {
		t.Fatalf("Start() = %v, want ErrCorruptSnapshot", err)
	}
}

func TestStartSizeMismatchIsCorrupt(t *testing.T) {
	saved := game.Snapshot{Version: game.SnapshotVersion, Size: 5}
	store := &memStore{snap: &saved}
	s := New(store, WithCorruptPolicy(PolicyFail))

	if err := s.Start(); !errors.Is(err, game.ErrCorruptSnapshot) {
		t.Errorf("Start() = %v, want ErrCorruptSnapshot", err)
	}
}

func TestStartIOError(t *testing.T) {
	store := &memStore{loadErr: errors.New("permission denied")}
	s := New(store)

	err := s.Start()
	if err == nil || errors.Is(err, game.ErrCorruptSnapshot) {
		t.Errorf("Start() = %v, want a plain load error", err)
	}
}

func TestGameOverRecordsOnce(t *testing.T) {
	saved := nearlyStuck
	store := &memStore{snap: &saved}
	scores := &scoreLog{}
	s := New(store, deterministic(), WithScoreRecorder(scores), WithPlayer("alice"))

	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	res, err := s.Move(game.Right)
	if err != nil {
		t.Fatalf("Move() failed: %v", err)
	}
	if !res.GameOver {
		t.Fatal("expected game over")
	}
	if store.saves != 1 {
		t.Errorf("store saved %d times at game over, want 1", store.saves)
	}
	if len(scores.entries) != 1 || scores.entries[0] != 500 {
		t.Errorf("recorded scores = %v, want [500]", scores.entries)
	}

	// Moves on the finished board change nothing and record nothing.
	for _, d := range game.Directions {
		if _, err := s.Move(d); err != nil {
			t.Fatalf("Move() failed: %v", err)
		}
	}
	if len(scores.entries) != 1 {
		t.Errorf("recorded %d scores, want 1", len(scores.entries))
	}
}

func TestRestoredFinishedGameNotRecorded(t *testing.T) {
	store := &memStore{}
	scores := &scoreLog{}

	first := New(store, deterministic(), WithScoreRecorder(scores))
	saved := nearlyStuck
	store.snap = &saved
	if err := first.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := first.Move(game.Right); err != nil {
		t.Fatalf("Move() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second := New(store, deterministic(), WithScoreRecorder(scores))
	if err := second.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	second.View(func(b *game.Board) {
		if !b.IsTerminal() {
			t.Error("restored finished game should be terminal")
		}
	})
	if len(scores.entries) != 1 {
		t.Errorf("recorded %d scores, want 1", len(scores.entries))
	}

	if err := second.NewGame(); err != nil {
		t.Fatalf("NewGame() failed: %v", err)
	}
	second.View(func(b *game.Board) {
		if b.IsTerminal() {
			t.Error("NewGame() should leave the game-over state")
		}
		if b.BestScore() != 500 {
			t.Errorf("best score = %d, want 500", b.BestScore())
		}
	})
}

func TestSaveFailureAtGameOver(t *testing.T) {
	saved := nearlyStuck
	store := &memStore{snap: &saved}
	scores := &scoreLog{}
	s := New(store, deterministic(), WithScoreRecorder(scores))
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	store.saveErr = errors.New("disk full")
	res, err := s.Move(game.Right)
	if err == nil {
		t.Fatal("Move() should report the failed save")
	}
	if !res.GameOver {
		t.Error("game should still be over")
	}
	if len(scores.entries) != 1 {
		t.Errorf("score should be recorded despite the failed save, got %v", scores.entries)
	}
}

func TestCloseSavesOnce(t *testing.T) {
	store := &memStore{}
	s := New(store, deterministic())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := s.Move(game.Left); err != nil {
		t.Fatalf("Move() failed: %v", err)
	}
	want := s.Snapshot()

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saved %d times, want 1", store.saves)
	}
	if !store.snap.Equal(want) {
		t.Errorf("saved %+v, want %+v", *store.snap, want)
	}

	if _, err := s.Move(game.Up); !errors.Is(err, ErrClosed) {
		t.Errorf("Move() after Close() = %v, want ErrClosed", err)
	}
}

func TestCloseBeforeStartDoesNotSave(t *testing.T) {
	store := &memStore{}
	s := New(store)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if store.saves != 0 {
		t.Errorf("saved %d times, want 0", store.saves)
	}
}

func TestEventSink(t *testing.T) {
	var events []Event
	store := &memStore{}
	s := New(store, deterministic(), WithEventSink(func(ev Event) { events = append(events, ev) }))

	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	if counts[EventTileAdded] != 2 {
		t.Errorf("got %d tile_added events, want 2", counts[EventTileAdded])
	}
	last := events[len(events)-1]
	if last.Type != EventRestored || last.Board == nil || len(last.Board.Cells) != 2 {
		t.Errorf("last event = %+v, want restored with the board", last)
	}
}

func TestParseCorruptPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    CorruptPolicy
		wantErr bool
	}{
		{"discard", PolicyDiscard, false},
		{"FAIL", PolicyFail, false},
		{"", PolicyDiscard, false},
		{"ignore", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCorruptPolicy(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCorruptPolicy(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}
