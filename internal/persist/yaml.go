package persist

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-2048/internal/game"
)

func init() {
	Register(yamlCodec{})
}

type yamlCodec struct{}

func (yamlCodec) Name() string      { return "yaml" }
func (yamlCodec) Extension() string { return ".yaml" }

func (yamlCodec) Encode(s game.Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(newRecord(s))
	if err != nil {
		return nil, fmt.Errorf("persist: cannot encode yaml: %w", err)
	}
	return data, nil
}

func (yamlCodec) Decode(data []byte) (game.Snapshot, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r record
	if err := dec.Decode(&r); err != nil {
		return game.Snapshot{}, fmt.Errorf("%w: yaml: %v", game.ErrCorruptSnapshot, err)
	}
	return r.snapshot()
}
