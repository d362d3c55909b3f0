// t2048 is the 2048 sliding-tile puzzle for the terminal.
//
// Usage:
//
//	t2048 play              - Play the saved game, or a new one
//	t2048 new               - Start over, keeping the best score
//	t2048 show              - Print the saved board
//	t2048 scores [player]   - Show finished games
//	t2048 slots             - List the save slots of SSH players
//	t2048 serve             - Start SSH server for remote play
//
// Global flags:
//
//	--config <path> - Config file (default: ~/.t2048/config.yaml)
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--save <path>   - Save file (default: ~/.t2048/save.json)
//	--format <name> - Save format: json or yaml
//	--db <path>     - Set database path (default: ~/.t2048/t2048.db)
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/persist"
	"github.com/vovakirdan/tui-2048/internal/session"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	// Global flags
	flagConfig string
	flagSeed   int64
	flagSave   string
	flagFormat string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "t2048",
	Short: "2048 - slide and merge tiles in your terminal",
	Long: `t2048 is the 2048 sliding-tile puzzle for the terminal.

Slide the tiles with the arrow keys, WASD or a mouse drag. Equal tiles
merge into their sum and the sum is added to your score. The game is saved
when you quit and when it ends.

Available commands:
  play     - Play the saved game, or a new one
  new      - Start over, keeping the best score
  show     - Print the saved board
  scores   - View finished games
  slots    - List SSH save slots
  serve    - Start SSH server for remote play

Examples:
  t2048 play
  t2048 play --seed 42 --save ./practice.yaml
  t2048 scores
  t2048 serve --ssh :2048 --ws :8080`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = from config, random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagSave, "save", "", "Path to the save file")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Save format: "+fmt.Sprint(persist.Formats()))
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the configuration and applies the global flags over it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	if flagSeed != 0 {
		cfg.Board.Seed = flagSeed
	}
	if flagSave != "" {
		cfg.Save.Path = config.ExpandHome(flagSave)
	}
	if flagFormat != "" {
		cfg.Save.Format = flagFormat
	}
	if flagDBPath != "" {
		cfg.Storage.DB = config.ExpandHome(flagDBPath)
	}

	return cfg, cfg.Validate()
}

// saveStore opens the local save file in the configured format.
func saveStore(cfg config.Config) (*persist.FileStore, error) {
	if cfg.Save.Format == "" {
		return persist.NewFileStore(cfg.Save.Path, nil), nil
	}
	codec, err := persist.Lookup(cfg.Save.Format)
	if err != nil {
		return nil, err
	}
	return persist.NewFileStore(cfg.Save.Path, codec), nil
}

// newLogger creates a logger writing to w at the configured level.
func newLogger(cfg config.Config, w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "t2048",
		Level:           cfg.LogLevel(),
	})
}

// fileLogger logs to the configured log file so the alternate screen is
// left alone. It falls back to discarding output.
func fileLogger(cfg config.Config) (*log.Logger, func()) {
	if cfg.Log.File == "" {
		return log.New(io.Discard), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	return newLogger(cfg, f), func() { f.Close() }
}

// localSession builds the session for the local save file. store may be
// nil, in which case scores are not recorded.
func localSession(cfg config.Config, store *storage.Store, player string, logger *log.Logger) (*session.Session, error) {
	saves, err := saveStore(cfg)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithPlayer(player),
		session.WithLogger(logger),
		session.WithCorruptPolicy(cfg.CorruptPolicy()),
		session.WithBoardOptions(cfg.BoardOptions()...),
	}
	if store != nil {
		opts = append(opts, session.WithScoreRecorder(store))
	}
	return session.New(saves, opts...), nil
}

// defaultPlayer names local score records after the OS user.
func defaultPlayer() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
