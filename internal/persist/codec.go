// Package persist turns board snapshots into self-describing save records
// and stores them on disk or in the sqlite save table.
package persist

import "github.com/vovakirdan/tui-2048/internal/game"

// Codec converts between snapshots and an encoded save record.
// Decode must reject anything that is not a valid, versioned record with
// an error matching game.ErrCorruptSnapshot.
type Codec interface {
	// Name is the registry key, for example "json".
	Name() string

	// Extension is the file extension including the dot.
	Extension() string

	Encode(s game.Snapshot) ([]byte, error)
	Decode(data []byte) (game.Snapshot, error)
}
