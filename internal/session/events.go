package session

import "github.com/vovakirdan/tui-2048/internal/game"

// Event types published to an EventSink.
const (
	EventRestored   = "restored"
	EventNewGame    = "new_game"
	EventMoved      = "moved"
	EventTileAdded  = "tile_added"
	EventTileMoved  = "tile_moved"
	EventTileMerged = "tile_merged"
	EventTileGone   = "tile_removed"
	EventScore      = "score"
	EventBestScore  = "best_score"
	EventGameOver   = "game_over"
)

// Event is a JSON-friendly description of one board change.
// Board is set on events that carry the whole state.
type Event struct {
	Type      string         `json:"type"`
	Tile      int            `json:"tile,omitempty"`
	X         int            `json:"x"`
	Y         int            `json:"y"`
	Value     int            `json:"value,omitempty"`
	Direction string         `json:"direction,omitempty"`
	Board     *game.Snapshot `json:"board,omitempty"`
}

// EventSink receives events synchronously while the session lock is held.
// It must not block or call back into the session.
type EventSink func(Event)

func (s *Session) publish(ev Event) {
	if s.sink != nil {
		s.sink(ev)
	}
}

// forward subscribes to every board and tile notification.
func (s *Session) forward() {
	b := s.board

	b.OnTileAdded(func(t *game.Tile) {
		p := t.Position()
		s.publish(Event{Type: EventTileAdded, Tile: t.ID(), X: p.X, Y: p.Y, Value: t.Value()})

		t.OnPositionChange(func(p game.Position) {
			s.publish(Event{Type: EventTileMoved, Tile: t.ID(), X: p.X, Y: p.Y, Value: t.Value()})
		})
		t.OnValueChange(func(v int) {
			p := t.Position()
			s.publish(Event{Type: EventTileMerged, Tile: t.ID(), X: p.X, Y: p.Y, Value: v})
		})
	})
	b.OnTileRemoved(func(t *game.Tile) {
		p := t.Position()
		s.publish(Event{Type: EventTileGone, Tile: t.ID(), X: p.X, Y: p.Y, Value: t.Value()})
	})
	b.OnScoreChange(func(v int) {
		s.publish(Event{Type: EventScore, Value: v})
	})
	b.OnBestScoreChange(func(v int) {
		s.publish(Event{Type: EventBestScore, Value: v})
	})
	b.OnGameOver(func(score int) {
		s.publish(Event{Type: EventGameOver, Value: score, Board: s.snapshotPtr()})
	})
}
