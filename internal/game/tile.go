package game

import "fmt"

// Position is a cell coordinate. X grows to the right, Y grows downward.
type Position struct {
	X, Y int
}

// NoPosition is returned by SpawnTile when the board is full.
var NoPosition = Position{X: -1, Y: -1}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tile is a numbered piece on the board.
// Only the Board mutates a tile; observers subscribe to its changes.
type Tile struct {
	id      int
	value   int
	pos     Position
	removed bool

	valueChanged    signal[int]
	positionChanged signal[Position]
}

func newTile(id int, pos Position, value int) *Tile {
	return &Tile{id: id, pos: pos, value: value}
}

// ID identifies the tile for the lifetime of its board.
func (t *Tile) ID() int {
	return t.id
}

// Value returns the tile's number.
func (t *Tile) Value() int {
	return t.value
}

// Position returns the tile's cell.
func (t *Tile) Position() Position {
	return t.pos
}

// Removed reports whether the tile was merged away or cleared.
func (t *Tile) Removed() bool {
	return t.removed
}

// OnValueChange calls fn with the new value whenever the value changes.
// The returned func cancels the subscription.
func (t *Tile) OnValueChange(fn func(int)) (cancel func()) {
	if t.removed {
		return func() {}
	}
	return t.valueChanged.subscribe(fn)
}

// OnPositionChange calls fn with the new cell whenever the tile moves.
// The returned func cancels the subscription.
func (t *Tile) OnPositionChange(fn func(Position)) (cancel func()) {
	if t.removed {
		return func() {}
	}
	return t.positionChanged.subscribe(fn)
}

func (t *Tile) setValue(v int) {
	if t.value == v {
		return
	}
	t.value = v
	t.valueChanged.emit(v)
}

// setPosition moves the tile and reports whether the cell changed.
func (t *Tile) setPosition(p Position) bool {
	if t.pos == p {
		return false
	}
	t.pos = p
	t.positionChanged.emit(p)
	return true
}

// destroy detaches every listener; a removed tile never notifies again.
func (t *Tile) destroy() {
	t.removed = true
	t.valueChanged.reset()
	t.positionChanged.reset()
}
