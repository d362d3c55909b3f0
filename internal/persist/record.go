package persist

import (
	"fmt"

	"github.com/vovakirdan/tui-2048/internal/game"
)

// FormatTag marks a file as a save of this game.
const FormatTag = "t2048-save"

// record is the on-disk layout shared by every codec.
type record struct {
	Format       string       `json:"format" yaml:"format"`
	Version      int          `json:"version" yaml:"version"`
	Size         int          `json:"size" yaml:"size"`
	CurrentScore int          `json:"currentScore" yaml:"currentScore"`
	BestScore    int          `json:"bestScore" yaml:"bestScore"`
	Cells        []cellRecord `json:"cells" yaml:"cells"`
}

type cellRecord struct {
	X     int `json:"x" yaml:"x"`
	Y     int `json:"y" yaml:"y"`
	Value int `json:"value" yaml:"value"`
}

func newRecord(s game.Snapshot) record {
	r := record{
		Format:       FormatTag,
		Version:      s.Version,
		Size:         s.Size,
		CurrentScore: s.Score,
		BestScore:    s.BestScore,
		Cells:        make([]cellRecord, 0, len(s.Cells)),
	}
	for _, c := range s.Cells {
		r.Cells = append(r.Cells, cellRecord{X: c.X, Y: c.Y, Value: c.Value})
	}
	return r
}

// snapshot checks the format tag and converts the record into a
// validated snapshot.
func (r record) snapshot() (game.Snapshot, error) {
	if r.Format != FormatTag {
		return game.Snapshot{}, &game.ValidationError{
			Code:    "BAD_FORMAT",
			Message: fmt.Sprintf("format tag %q, want %q", r.Format, FormatTag),
		}
	}

	s := game.Snapshot{
		Version:   r.Version,
		Size:      r.Size,
		Score:     r.CurrentScore,
		BestScore: r.BestScore,
	}
	for _, c := range r.Cells {
		s.Cells = append(s.Cells, game.Cell{X: c.X, Y: c.Y, Value: c.Value})
	}
	if err := s.Validate(); err != nil {
		return game.Snapshot{}, err
	}
	return s, nil
}
