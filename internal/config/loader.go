package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "T2048_"

// Load reads the configuration.
// Search order: customPath -> ~/.t2048/config.yaml -> ./configs/t2048.yaml -> embedded default.
// Values from a file are layered over the embedded default, then a .env
// file and T2048_* environment variables override them. Paths have ~ expanded.
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	// A missing .env file is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("config: cannot load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	cfg := embedded()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory, then the local configs directory
	for _, path := range []string{userConfigPath("config.yaml"), filepath.Join("configs", "t2048.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		fileCfg := cfg
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			return fileCfg, nil
		}
	}

	return cfg, nil
}

// embedded parses the embedded default YAML.
func embedded() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default() // Fallback to hardcoded if embed fails
	}
	return cfg
}

// applyEnv overrides fields from T2048_* environment variables.
func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SAVE_PATH":       &cfg.Save.Path,
		"SAVE_FORMAT":     &cfg.Save.Format,
		"SAVE_ON_CORRUPT": &cfg.Save.OnCorrupt,
		"DB":              &cfg.Storage.DB,
		"SSH_ADDR":        &cfg.Server.SSHAddr,
		"HOST_KEY":        &cfg.Server.HostKey,
		"WS_ADDR":         &cfg.Server.WSAddr,
		"LOG_LEVEL":       &cfg.Log.Level,
		"LOG_FILE":        &cfg.Log.File,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "BOARD_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sBOARD_SIZE: %w", EnvPrefix, err)
		}
		cfg.Board.Size = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SPAWN4_PROBABILITY"); ok {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %sSPAWN4_PROBABILITY: %w", EnvPrefix, err)
		}
		cfg.Board.Spawn4Probability = p
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sSEED: %w", EnvPrefix, err)
		}
		cfg.Board.Seed = seed
	}
	return nil
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.Save.Path, &c.Storage.DB, &c.Server.HostKey, &c.Log.File} {
		*p = ExpandHome(*p)
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".t2048", filename)
}
