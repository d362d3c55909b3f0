package persist

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-2048/internal/game"
)

func sampleSnapshot() game.Snapshot {
	return game.Snapshot{
		Version:   game.SnapshotVersion,
		Size:      4,
		Score:     36,
		BestScore: 120,
		Cells: []game.Cell{
			{X: 0, Y: 0, Value: 16},
			{X: 1, Y: 0, Value: 4},
			{X: 3, Y: 2, Value: 2},
		},
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	for _, name := range Formats() {
		t.Run(name, func(t *testing.T) {
			c, err := Lookup(name)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", name, err)
			}

			data, err := c.Encode(sampleSnapshot())
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			if !strings.Contains(string(data), FormatTag) {
				t.Errorf("encoded record lacks format tag: %s", data)
			}

			got, err := c.Decode(data)
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if !got.Equal(sampleSnapshot()) {
				t.Errorf("Decode(Encode(s)) = %+v, want %+v", got, sampleSnapshot())
			}
		})
	}
}

func TestJSONFieldNames(t *testing.T) {
	c, _ := Lookup("json")
	data, err := c.Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	for _, field := range []string{`"format"`, `"version"`, `"size"`, `"currentScore"`, `"bestScore"`, `"cells"`, `"x"`, `"y"`, `"value"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded json missing field %s", field)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"json garbage", "json", "not a save"},
		{"json empty", "json", ""},
		{"json wrong tag", "json", `{"format":"other","version":1,"size":4,"currentScore":0,"bestScore":0,"cells":[]}`},
		{"json missing tag", "json", `{"version":1,"size":4,"currentScore":0,"bestScore":0,"cells":[]}`},
		{"json unknown field", "json", `{"format":"t2048-save","version":1,"size":4,"currentScore":0,"bestScore":0,"cells":[],"extra":true}`},
		{"json bad version", "json", `{"format":"t2048-save","version":2,"size":4,"currentScore":0,"bestScore":0,"cells":[]}`},
		{"json bad value", "json", `{"format":"t2048-save","version":1,"size":4,"currentScore":0,"bestScore":0,"cells":[{"x":0,"y":0,"value":3}]}`},
		{"json out of range", "json", `{"format":"t2048-save","version":1,"size":4,"currentScore":0,"bestScore":0,"cells":[{"x":4,"y":0,"value":2}]}`},
		{"json duplicate", "json", `{"format":"t2048-save","version":1,"size":4,"currentScore":0,"bestScore":0,"cells":[{"x":1,"y":1,"value":2},{"x":1,"y":1,"value":4}]}`},
		{"json negative score", "json", `{"format":"t2048-save","version":1,"size":4,"currentScore":-2,"bestScore":0,"cells":[]}`},
		{"json trailing", "json", `{"format":"t2048-save","version":1,"size":4,"currentScore":0,"bestScore":0,"cells":[]} {}`},
		{"yaml garbage", "yaml", "- just\n- a list\n"},
		{"yaml empty", "yaml", ""},
		{"yaml unknown field", "yaml", "format: t2048-save\nversion: 1\nsize: 4\ncurrentScore: 0\nbestScore: 0\ncells: []\nlevel: 3\n"},
		{"yaml bad size", "yaml", "format: t2048-save\nversion: 1\nsize: 12\ncurrentScore: 0\nbestScore: 0\ncells: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.format)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", tt.format, err)
			}
			_, err = c.Decode([]byte(tt.data))
			if !errors.Is(err, game.ErrCorruptSnapshot) {
				t.Errorf("Decode() error = %v, want ErrCorruptSnapshot", err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	if got := Formats(); !slices.Equal(got, []string{"json", "yaml"}) {
		t.Errorf("Formats() = %v, want [json yaml]", got)
	}

	if _, err := Lookup("toml"); err == nil {
		t.Error("Lookup(toml) should fail")
	}
	if c, err := Lookup("YAML"); err != nil || c.Name() != "yaml" {
		t.Errorf("Lookup(YAML) = %v, %v; want yaml codec", c, err)
	}

	paths := map[string]string{
		"save.json":     "json",
		"save.yaml":     "yaml",
		"save.YML":      "yaml",
		"save":          "json",
		"dir/save.conf": "json",
	}
	for path, want := range paths {
		if got := ForPath(path).Name(); got != want {
			t.Errorf("ForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() of a duplicate name should panic")
		}
	}()
	Register(jsonCodec{})
}
