// Package config provides YAML-based configuration loading with embedded
// defaults and environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/persist"
	"github.com/vovakirdan/tui-2048/internal/session"
)

// Config is the complete application configuration.
type Config struct {
	Board   BoardConfig   `yaml:"board"`
	Save    SaveConfig    `yaml:"save"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// BoardConfig defines the game rules.
type BoardConfig struct {
	Size              int     `yaml:"size"`
	Spawn4Probability float64 `yaml:"spawn4_probability"`
	Seed              int64   `yaml:"seed"` // 0 = time-based
}

// SaveConfig defines where the local game is saved.
type SaveConfig struct {
	Path      string `yaml:"path"`
	Format    string `yaml:"format"`     // empty = from the file extension
	OnCorrupt string `yaml:"on_corrupt"` // "discard" or "fail"
}

// StorageConfig defines the score and slot database.
type StorageConfig struct {
	DB string `yaml:"db"`
}

// ServerConfig defines the SSH server and the spectator feed.
type ServerConfig struct {
	SSHAddr     string        `yaml:"ssh_addr"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	WSAddr      string        `yaml:"ws_addr"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Validate checks values the YAML decoder cannot.
func (c Config) Validate() error {
	if c.Board.Size < game.MinSize || c.Board.Size > game.MaxSize {
		return fmt.Errorf("config: board.size %d out of range [%d, %d]", c.Board.Size, game.MinSize, game.MaxSize)
	}
	if c.Board.Spawn4Probability < 0 || c.Board.Spawn4Probability > 1 {
		return fmt.Errorf("config: board.spawn4_probability %v out of range [0, 1]", c.Board.Spawn4Probability)
	}
	if c.Save.Path == "" {
		return fmt.Errorf("config: save.path is empty")
	}
	if c.Save.Format != "" {
		if _, err := persist.Lookup(c.Save.Format); err != nil {
			return fmt.Errorf("config: save.format: %w", err)
		}
	}
	if _, err := session.ParseCorruptPolicy(c.Save.OnCorrupt); err != nil {
		return fmt.Errorf("config: save.on_corrupt: %w", err)
	}
	if c.Storage.DB == "" {
		return fmt.Errorf("config: storage.db is empty")
	}
	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("config: server.idle_timeout must not be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// CorruptPolicy returns the parsed save.on_corrupt value.
func (c Config) CorruptPolicy() session.CorruptPolicy {
	p, err := session.ParseCorruptPolicy(c.Save.OnCorrupt)
	if err != nil {
		return session.PolicyDiscard
	}
	return p
}

// LogLevel returns the parsed log level, info when unset or invalid.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// BoardOptions returns the game options described by the board section.
func (c Config) BoardOptions() []game.Option {
	return []game.Option{
		game.WithSize(c.Board.Size),
		game.WithSpawn4Probability(c.Board.Spawn4Probability),
		game.WithSeed(c.Board.Seed),
	}
}
