package game

import "slices"

// SnapshotVersion is the snapshot layout this engine reads and writes.
const SnapshotVersion = 1

// Cell is one occupied cell in a snapshot.
type Cell struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Value int `json:"value"`
}

// Snapshot is the persisted subset of board state.
// Cell order carries no meaning.
type Snapshot struct {
	Version   int    `json:"version"`
	Size      int    `json:"size"`
	Score     int    `json:"score"`
	BestScore int    `json:"bestScore"`
	Cells     []Cell `json:"cells"`
}

// Validate checks that the snapshot describes a legal board of its own size.
// Failures are *ValidationError values matching ErrCorruptSnapshot.
func (s Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return invalid("BAD_VERSION", "unsupported snapshot version %d", s.Version)
	}
	if s.Size < MinSize || s.Size > MaxSize {
		return invalid("BAD_SIZE", "board size %d out of range [%d, %d]", s.Size, MinSize, MaxSize)
	}
	if s.Score < 0 || s.BestScore < 0 {
		return invalid("NEGATIVE_SCORE", "scores must be non-negative (score %d, best %d)", s.Score, s.BestScore)
	}
	if len(s.Cells) > s.Size*s.Size {
		return invalid("TOO_MANY_CELLS", "%d cells on a %dx%d board", len(s.Cells), s.Size, s.Size)
	}

	seen := make(map[Position]bool, len(s.Cells))
	for _, c := range s.Cells {
		p := Position{X: c.X, Y: c.Y}
		if c.X < 0 || c.X >= s.Size || c.Y < 0 || c.Y >= s.Size {
			return invalid("OUT_OF_RANGE", "cell %s outside %dx%d board", p, s.Size, s.Size)
		}
		if seen[p] {
			return invalid("DUPLICATE_CELL", "cell %s listed twice", p)
		}
		if !isTileValue(c.Value) {
			return invalid("BAD_VALUE", "cell %s has value %d", p, c.Value)
		}
		seen[p] = true
	}
	return nil
}

// Equal reports whether two snapshots hold the same scores and the same
// set of cells, ignoring cell order.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Version != o.Version || s.Size != o.Size || s.Score != o.Score || s.BestScore != o.BestScore {
		return false
	}
	if len(s.Cells) != len(o.Cells) {
		return false
	}
	a, b := slices.Clone(s.Cells), slices.Clone(o.Cells)
	slices.SortFunc(a, compareCells)
	slices.SortFunc(b, compareCells)
	return slices.Equal(a, b)
}

func compareCells(a, b Cell) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	if a.X != b.X {
		return a.X - b.X
	}
	return a.Value - b.Value
}

// isTileValue reports whether v is a power of two no smaller than 2.
func isTileValue(v int) bool {
	return v >= 2 && v&(v-1) == 0
}
