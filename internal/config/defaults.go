package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/tui-2048/internal/game"
)

//go:embed defaults/t2048.yaml
var defaultYAML []byte

// Default returns the built-in configuration, used when the embedded
// YAML cannot be parsed.
func Default() Config {
	return Config{
		Board: BoardConfig{
			Size:              game.DefaultSize,
			Spawn4Probability: game.DefaultSpawn4Probability,
		},
		Save: SaveConfig{
			Path:      "~/.t2048/save.json",
			OnCorrupt: "discard",
		},
		Storage: StorageConfig{
			DB: "~/.t2048/t2048.db",
		},
		Server: ServerConfig{
			SSHAddr:     ":2048",
			HostKey:     "~/.t2048/ssh_host_ed25519",
			IdleTimeout: 30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.t2048/t2048.log",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
