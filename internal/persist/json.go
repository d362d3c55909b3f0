package persist

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/tui-2048/internal/game"
)

const jsonName = "json"

func init() {
	Register(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Name() string      { return jsonName }
func (jsonCodec) Extension() string { return ".json" }

func (jsonCodec) Encode(s game.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(newRecord(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persist: cannot encode json: %w", err)
	}
	return append(data, '\n'), nil
}

func (jsonCodec) Decode(data []byte) (game.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var r record
	if err := dec.Decode(&r); err != nil {
		return game.Snapshot{}, fmt.Errorf("%w: json: %v", game.ErrCorruptSnapshot, err)
	}
	if dec.More() {
		return game.Snapshot{}, fmt.Errorf("%w: json: trailing data after record", game.ErrCorruptSnapshot)
	}
	return r.snapshot()
}
