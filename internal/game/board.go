package game

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultSize is the classic 4x4 board.
	DefaultSize = 4
	MinSize     = 2
	MaxSize     = 8

	// DefaultSpawn4Probability is the chance a spawned tile is a 4.
	DefaultSpawn4Probability = 0.2

	startTiles = 2
)

// Saver persists a snapshot when the game ends.
type Saver interface {
	Save(Snapshot) error
}

// MoveResult describes what a Move did.
type MoveResult struct {
	Direction   Direction
	Moved       bool     // at least one tile moved or merged
	Merges      int      // number of pairwise merges
	ScoreGained int      // sum of merged values
	Spawned     Position // NoPosition if nothing was spawned
	GameOver    bool     // the move left the board terminal
}

// Board owns the grid of tiles, the score and the terminal flag.
// The grid is the single source of truth; Tiles is derived from it.
type Board struct {
	size     int
	grid     [][]*Tile // grid[y][x]
	score    int
	best     int
	terminal bool
	nextID   int

	spawn4 float64
	rng    *rand.Rand
	saver  Saver
	logger *log.Logger

	tileAdded    signal[*Tile]
	tileRemoved  signal[*Tile]
	scoreChanged signal[int]
	bestChanged  signal[int]
	gameOver     signal[int]
}

// Option configures a Board.
type Option func(*Board)

// WithSize sets the board dimension. Panics outside [MinSize, MaxSize].
func WithSize(size int) Option {
	return func(b *Board) {
		if size < MinSize || size > MaxSize {
			panic(fmt.Sprintf("game: board size %d out of range [%d, %d]", size, MinSize, MaxSize))
		}
		b.size = size
	}
}

// WithSpawn4Probability sets the chance that a spawned tile is a 4.
func WithSpawn4Probability(p float64) Option {
	return func(b *Board) {
		b.spawn4 = min(max(p, 0), 1)
	}
}

// WithRand sets the random source used for spawning.
func WithRand(r *rand.Rand) Option {
	return func(b *Board) {
		b.rng = r
	}
}

// WithSeed seeds the random source. Zero means time-based.
func WithSeed(seed int64) Option {
	return func(b *Board) {
		s := seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		b.rng = rand.New(rand.NewSource(s))
	}
}

// WithSaver sets where the board persists itself at game over.
func WithSaver(s Saver) Option {
	return func(b *Board) {
		b.saver = s
	}
}

// WithLogger sets the board logger.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) {
		b.logger = l
	}
}

// NewBoard creates an empty board. Call NewGame or Restore before playing.
func NewBoard(opts ...Option) *Board {
	b := &Board{
		size:   DefaultSize,
		spawn4: DefaultSpawn4Probability,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}

	b.grid = make([][]*Tile, b.size)
	for y := range b.grid {
		b.grid[y] = make([]*Tile, b.size)
	}
	return b
}

// Size returns the board dimension.
func (b *Board) Size() int {
	return b.size
}

// Score returns the current score.
func (b *Board) Score() int {
	return b.score
}

// BestScore returns the best score seen by this board, including restored ones.
func (b *Board) BestScore() int {
	return b.best
}

// IsTerminal reports whether no further move is possible.
func (b *Board) IsTerminal() bool {
	return b.terminal
}

// TileAt returns the tile at p, or nil for an empty or out-of-range cell.
func (b *Board) TileAt(p Position) *Tile {
	if !b.inside(p) {
		return nil
	}
	return b.grid[p.Y][p.X]
}

// Tiles returns the live tiles in row-major order.
func (b *Board) Tiles() []*Tile {
	var tiles []*Tile
	for y := range b.size {
		for x := range b.size {
			if t := b.grid[y][x]; t != nil {
				tiles = append(tiles, t)
			}
		}
	}
	return tiles
}

// EmptyCells returns every unoccupied cell in row-major order.
func (b *Board) EmptyCells() []Position {
	var cells []Position
	for y := range b.size {
		for x := range b.size {
			if b.grid[y][x] == nil {
				cells = append(cells, Position{X: x, Y: y})
			}
		}
	}
	return cells
}

// MaxTile returns the highest tile value, or 0 on an empty board.
func (b *Board) MaxTile() int {
	best := 0
	for _, t := range b.Tiles() {
		best = max(best, t.value)
	}
	return best
}

// OnTileAdded calls fn for every spawned or restored tile.
func (b *Board) OnTileAdded(fn func(*Tile)) (cancel func()) {
	return b.tileAdded.subscribe(fn)
}

// OnTileRemoved calls fn for every tile merged away or cleared.
func (b *Board) OnTileRemoved(fn func(*Tile)) (cancel func()) {
	return b.tileRemoved.subscribe(fn)
}

// OnScoreChange calls fn with the new score on every change.
func (b *Board) OnScoreChange(fn func(int)) (cancel func()) {
	return b.scoreChanged.subscribe(fn)
}

// OnBestScoreChange calls fn with the new best score on every increase.
func (b *Board) OnBestScoreChange(fn func(int)) (cancel func()) {
	return b.bestChanged.subscribe(fn)
}

// OnGameOver calls fn with the final score when the board becomes terminal.
func (b *Board) OnGameOver(fn func(int)) (cancel func()) {
	return b.gameOver.subscribe(fn)
}

// NewGame clears the board, resets the score and spawns the starting tiles.
// The best score is kept.
func (b *Board) NewGame() {
	b.clear()
	b.terminal = false
	b.setScore(0)
	for range startTiles {
		b.SpawnTile()
	}
	b.logger.Debug("new game", "size", b.size, "best", b.best)
}

// AddScore adds a merge sum to the score and raises the best score.
// Non-positive deltas are ignored; the score never decreases.
func (b *Board) AddScore(delta int) {
	if delta <= 0 {
		return
	}
	b.setScore(b.score + delta)
	b.raiseBest(b.score)
}

// Move slides every row or column toward dir, merging equal neighbours.
// A terminal board ignores moves. When anything moved or merged, one tile
// is spawned and the terminal state is re-evaluated; a failure to save the
// finished game is returned while the board stays terminal.
func (b *Board) Move(dir Direction) (MoveResult, error) {
	res := MoveResult{Direction: dir, Spawned: NoPosition}
	if !dir.Valid() {
		return res, fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}
	if b.terminal {
		return res, nil
	}

	before := b.score
	for i := range b.size {
		moved, merges := b.collapseLine(b.line(dir, i))
		res.Moved = res.Moved || moved || merges > 0
		res.Merges += merges
	}
	res.ScoreGained = b.score - before

	b.logger.Debug("move", "dir", dir, "moved", res.Moved, "merges", res.Merges, "gained", res.ScoreGained)
	if !res.Moved {
		return res, nil
	}

	res.Spawned = b.SpawnTile()
	gameOver, err := b.checkTerminal()
	res.GameOver = gameOver
	return res, err
}

// line returns the cells of row or column i, ordered from the edge that
// tiles slide toward when moving in dir.
func (b *Board) line(dir Direction, i int) []Position {
	cells := make([]Position, b.size)
	for k := range b.size {
		j := k
		if dir.reversed() {
			j = b.size - 1 - k
		}
		if dir.horizontal() {
			cells[k] = Position{X: j, Y: i}
		} else {
			cells[k] = Position{X: i, Y: j}
		}
	}
	return cells
}

// collapseLine collapses one line in place and reports whether any tile
// changed cell and how many merges happened.
func (b *Board) collapseLine(cells []Position) (moved bool, merges int) {
	tiles := make([]*Tile, 0, len(cells))
	for _, p := range cells {
		if t := b.grid[p.Y][p.X]; t != nil {
			tiles = append(tiles, t)
		}
	}

	collapsed, steps := collapse(tiles, (*Tile).Value)
	for _, m := range steps {
		collapsed[m.at].setValue(m.value)
		b.remove(m.consumed)
		b.AddScore(m.value)
	}

	for _, p := range cells {
		b.grid[p.Y][p.X] = nil
	}
	for k, t := range collapsed {
		b.place(t, cells[k])
		if t.setPosition(cells[k]) {
			moved = true
		}
	}
	return moved, len(steps)
}

// SpawnTile puts a 2 (or, with the configured probability, a 4) on a random
// empty cell and returns its position. A full board returns NoPosition and
// is left unchanged.
func (b *Board) SpawnTile() Position {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return NoPosition
	}

	p := empty[b.rng.Intn(len(empty))]
	value := 2
	if b.rng.Float64() < b.spawn4 {
		value = 4
	}
	b.add(p, value)
	return p
}

// checkTerminal marks the board terminal when it is full and no adjacent
// pair is equal. It raises the best score and saves the finished game.
func (b *Board) checkTerminal() (bool, error) {
	if !b.full() || b.hasAdjacentPair() {
		return false, nil
	}

	b.raiseBest(b.score)

	var err error
	if b.saver != nil {
		if serr := b.saver.Save(b.Snapshot()); serr != nil {
			err = fmt.Errorf("game: cannot save finished game: %w", serr)
			b.logger.Error("save at game over failed", "error", serr)
		}
	}

	b.terminal = true
	b.logger.Info("game over", "score", b.score, "best", b.best, "max_tile", b.MaxTile())
	b.gameOver.emit(b.score)
	return true, err
}

// full reports whether every cell holds a tile.
func (b *Board) full() bool {
	for y := range b.size {
		for x := range b.size {
			if b.grid[y][x] == nil {
				return false
			}
		}
	}
	return true
}

// hasAdjacentPair compares each cell with its right and bottom neighbours.
// It must only be called on a full board.
func (b *Board) hasAdjacentPair() bool {
	for y := range b.size {
		for x := range b.size {
			v := b.grid[y][x].value
			if x+1 < b.size && b.grid[y][x+1].value == v {
				return true
			}
			if y+1 < b.size && b.grid[y+1][x].value == v {
				return true
			}
		}
	}
	return false
}

// Snapshot captures the persisted state. Cells are listed row-major.
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Version:   SnapshotVersion,
		Size:      b.size,
		Score:     b.score,
		BestScore: b.best,
	}
	for _, t := range b.Tiles() {
		s.Cells = append(s.Cells, Cell{X: t.pos.X, Y: t.pos.Y, Value: t.value})
	}
	return s
}

// Restore replaces the board contents with a validated snapshot. The best
// score only ever rises. A restored board with no moves left is terminal.
func (b *Board) Restore(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Size != b.size {
		return invalid("SIZE_MISMATCH", "snapshot is %dx%d, board is %dx%d", s.Size, s.Size, b.size, b.size)
	}

	b.clear()
	for _, c := range s.Cells {
		b.add(Position{X: c.X, Y: c.Y}, c.Value)
	}
	b.setScore(s.Score)
	b.raiseBest(max(s.BestScore, s.Score))

	b.terminal = b.full() && !b.hasAdjacentPair()
	if b.terminal {
		b.gameOver.emit(b.score)
	}
	b.logger.Debug("restored", "tiles", len(s.Cells), "score", b.score, "best", b.best, "terminal", b.terminal)
	return nil
}

func (b *Board) inside(p Position) bool {
	return p.X >= 0 && p.X < b.size && p.Y >= 0 && p.Y < b.size
}

// add creates a tile at an empty cell and announces it.
func (b *Board) add(p Position, value int) *Tile {
	b.nextID++
	t := newTile(b.nextID, p, value)
	b.place(t, p)
	b.tileAdded.emit(t)
	return t
}

// place stores t at p. A different tile already in the cell is an
// internal consistency failure.
func (b *Board) place(t *Tile, p Position) {
	if other := b.grid[p.Y][p.X]; other != nil && other != t {
		panic(fmt.Sprintf("game: cell %s already holds tile %d, cannot place tile %d", p, other.id, t.id))
	}
	b.grid[p.Y][p.X] = t
}

// remove takes t off the board, announces it and detaches its listeners.
func (b *Board) remove(t *Tile) {
	if b.grid[t.pos.Y][t.pos.X] == t {
		b.grid[t.pos.Y][t.pos.X] = nil
	}
	b.tileRemoved.emit(t)
	t.destroy()
}

func (b *Board) clear() {
	for _, t := range b.Tiles() {
		b.remove(t)
	}
}

func (b *Board) setScore(v int) {
	if b.score == v {
		return
	}
	b.score = v
	b.scoreChanged.emit(v)
}

func (b *Board) raiseBest(v int) {
	if v <= b.best {
		return
	}
	b.best = v
	b.bestChanged.emit(v)
}
