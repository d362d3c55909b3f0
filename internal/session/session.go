// Package session drives one player's game: it loads or starts a board,
// applies moves, records finished games and saves when the player leaves.
package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-2048/internal/game"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session: closed")

// Store loads and saves the player's snapshot.
type Store interface {
	game.Saver
	Load() (game.Snapshot, error)
}

// Quarantiner is implemented by stores that can move a corrupt save aside.
type Quarantiner interface {
	Quarantine() (string, error)
}

// ScoreRecorder receives every finished game. *storage.Store satisfies it.
type ScoreRecorder interface {
	SaveScore(player string, score, maxTile, moves int) (int64, error)
}

// CorruptPolicy decides what Start does with an unusable save.
type CorruptPolicy string

const (
	// PolicyDiscard logs the problem, moves the save aside and starts fresh.
	PolicyDiscard CorruptPolicy = "discard"
	// PolicyFail returns the error from Start.
	PolicyFail CorruptPolicy = "fail"
)

// ParseCorruptPolicy accepts "discard" or "fail".
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch p := CorruptPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyDiscard, PolicyFail:
		return p, nil
	case "":
		return PolicyDiscard, nil
	}
	return "", fmt.Errorf("session: unknown corrupt-save policy %q (want discard or fail)", s)
}

// Session owns a board and everything around it.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	board    *game.Board
	store    Store
	recorder ScoreRecorder
	sink     EventSink
	logger   *log.Logger
	policy   CorruptPolicy
	player   string

	moves    int
	recorded bool
	started  bool
	closed   bool
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	recorder  ScoreRecorder
	sink      EventSink
	logger    *log.Logger
	policy    CorruptPolicy
	player    string
	boardOpts []game.Option
}

// WithPlayer names the player for score records.
func WithPlayer(name string) Option {
	return func(c *sessionConfig) { c.player = name }
}

// WithScoreRecorder records every finished game.
func WithScoreRecorder(r ScoreRecorder) Option {
	return func(c *sessionConfig) { c.recorder = r }
}

// WithEventSink forwards board notifications.
func WithEventSink(sink EventSink) Option {
	return func(c *sessionConfig) { c.sink = sink }
}

// WithLogger sets the logger shared with the board.
func WithLogger(l *log.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithCorruptPolicy sets how Start treats an unusable save.
func WithCorruptPolicy(p CorruptPolicy) Option {
	return func(c *sessionConfig) { c.policy = p }
}

// WithBoardOptions passes options through to game.NewBoard.
func WithBoardOptions(opts ...game.Option) Option {
	return func(c *sessionConfig) { c.boardOpts = append(c.boardOpts, opts...) }
}

// New builds a session around store. The board saves itself through the
// store when a game ends. Call Start before anything else.
func New(store Store, opts ...Option) *Session {
	cfg := sessionConfig{
		policy: PolicyDiscard,
		player: "local",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	boardOpts := append([]game.Option{
		game.WithSaver(store),
		game.WithLogger(cfg.logger),
	}, cfg.boardOpts...)

	s := &Session{
		board:    game.NewBoard(boardOpts...),
		store:    store,
		recorder: cfg.recorder,
		sink:     cfg.sink,
		logger:   cfg.logger,
		policy:   cfg.policy,
		player:   cfg.player,
	}
	if s.sink != nil {
		s.forward()
	}
	return s
}

// Start restores the saved game or begins a new one. A missing save starts
// a new game. A corrupt save is handled according to the corrupt policy.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}

	snap, err := s.store.Load()
	if err == nil {
		err = s.board.Restore(snap)
	}

	switch {
	case err == nil:
		s.recorded = s.board.IsTerminal()
		s.logger.Info("resumed saved game", "player", s.player, "score", s.board.Score(), "best", s.board.BestScore(), "terminal", s.board.IsTerminal())
	case errors.Is(err, game.ErrNoSnapshot):
		s.board.NewGame()
		s.logger.Info("started new game", "player", s.player)
	case errors.Is(err, game.ErrCorruptSnapshot):
		if err := s.discardCorrupt(err); err != nil {
			return err
		}
	default:
		return fmt.Errorf("session: cannot load save: %w", err)
	}

	s.started = true
	s.publish(Event{Type: EventRestored, Board: s.snapshotPtr()})
	return nil
}

func (s *Session) discardCorrupt(cause error) error {
	if s.policy == PolicyFail {
		return fmt.Errorf("session: saved game is unusable: %w", cause)
	}

	s.logger.Warn("discarding unusable save", "player", s.player, "error", cause)
	if q, ok := s.store.(Quarantiner); ok {
		if dest, err := q.Quarantine(); err != nil {
			s.logger.Warn("cannot move unusable save aside", "error", err)
		} else {
			s.logger.Info("moved unusable save aside", "to", dest)
		}
	}
	s.board.NewGame()
	return nil
}

// Move applies one move. When the move ends the game the score is
// recorded once; save and record failures are returned together.
func (s *Session) Move(dir game.Direction) (game.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return game.MoveResult{Direction: dir, Spawned: game.NoPosition}, ErrClosed
	}

	res, err := s.board.Move(dir)
	if res.Moved {
		s.moves++
		s.publish(Event{Type: EventMoved, Direction: dir.String(), Board: s.snapshotPtr()})
	}
	if res.GameOver && !s.recorded {
		s.recorded = true
		if rerr := s.record(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	return res, err
}

func (s *Session) record() error {
	if s.recorder == nil {
		return nil
	}
	if _, err := s.recorder.SaveScore(s.player, s.board.Score(), s.board.MaxTile(), s.moves); err != nil {
		s.logger.Error("cannot record score", "player", s.player, "error", err)
		return fmt.Errorf("session: cannot record score: %w", err)
	}
	s.logger.Debug("recorded score", "player", s.player, "score", s.board.Score(), "moves", s.moves)
	return nil
}

// NewGame abandons the current game and starts another. The best score carries over.
func (s *Session) NewGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.board.NewGame()
	s.moves = 0
	s.recorded = false
	s.started = true
	s.publish(Event{Type: EventNewGame, Board: s.snapshotPtr()})
	return nil
}

// Close saves the board and shuts the session. Further calls are no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if !s.started {
		return nil
	}
	if err := s.store.Save(s.board.Snapshot()); err != nil {
		s.logger.Error("cannot save on exit", "player", s.player, "error", err)
		return fmt.Errorf("session: cannot save on exit: %w", err)
	}
	s.logger.Debug("saved on exit", "player", s.player, "score", s.board.Score())
	return nil
}

// View calls fn with the board while holding the session lock.
// fn must not call back into the session or keep the board.
func (s *Session) View(fn func(b *game.Board)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.board)
}

// Snapshot returns the current board state.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Snapshot()
}

// Moves returns the number of effective moves in the current game.
func (s *Session) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves
}

// Player returns the player name used for score records.
func (s *Session) Player() string {
	return s.player
}

func (s *Session) snapshotPtr() *game.Snapshot {
	snap := s.board.Snapshot()
	return &snap
}
