package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vovakirdan/tui-2048/internal/game"
)

// FileStore keeps one save in a single file.
type FileStore struct {
	path  string
	codec Codec
}

// NewFileStore stores snapshots at path. A nil codec is chosen from the
// file extension.
func NewFileStore(path string, codec Codec) *FileStore {
	if codec == nil {
		codec = ForPath(path)
	}
	return &FileStore{path: path, codec: codec}
}

// Path returns the save file location.
func (f *FileStore) Path() string {
	return f.path
}

// Codec returns the codec used for reading and writing.
func (f *FileStore) Codec() Codec {
	return f.codec
}

// Save writes the snapshot to a temporary file in the same directory and
// renames it over the save, so a crash never leaves a half-written file.
func (f *FileStore) Save(s game.Snapshot) error {
	data, err := f.codec.Encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: cannot create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("persist: cannot create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: cannot write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: cannot sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: cannot close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("persist: cannot replace %s: %w", f.path, err)
	}
	return nil
}

// Load reads and validates the save. A missing file returns
// game.ErrNoSnapshot. The store's codec is tried first, then every other
// registered codec, so a save keeps loading after the format setting
// changes.
func (f *FileStore) Load() (game.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return game.Snapshot{}, game.ErrNoSnapshot
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("persist: cannot read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return game.Snapshot{}, fmt.Errorf("%w: %s is empty", game.ErrCorruptSnapshot, f.path)
	}

	s, err := decodeAny(data, f.codec)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("persist: %s: %w", f.path, err)
	}
	return s, nil
}

// decodeAny returns the first successful decode. When every codec fails
// the preferred codec's error is returned.
func decodeAny(data []byte, preferred Codec) (game.Snapshot, error) {
	s, firstErr := preferred.Decode(data)
	if firstErr == nil {
		return s, nil
	}
	for _, name := range Formats() {
		if name == preferred.Name() {
			continue
		}
		c, err := Lookup(name)
		if err != nil {
			continue
		}
		if s, err := c.Decode(data); err == nil {
			return s, nil
		}
	}
	return game.Snapshot{}, firstErr
}

// Quarantine renames the save aside so a fresh game can take its place.
// It returns the new location.
func (f *FileStore) Quarantine() (string, error) {
	dest := fmt.Sprintf("%s.corrupt-%s", f.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(f.path, dest); err != nil {
		return "", fmt.Errorf("persist: cannot quarantine %s: %w", f.path, err)
	}
	return dest, nil
}

// Delete removes the save. A missing file is not an error.
func (f *FileStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("persist: cannot delete %s: %w", f.path, err)
	}
	return nil
}
