package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/platform/tui"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var flagPlayer string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the saved game, or a new one",
	Long: `Resume the saved game, or start a new one when there is none.

Controls:
  Arrows/WASD/hjkl - Slide tiles
  Mouse drag       - Slide tiles in the drag direction
  N/R              - New game
  ?                - Show all keys
  Q/Esc/Ctrl+C     - Save and quit

An unreadable save file is moved aside and a new game starts, unless
save.on_corrupt is set to "fail" in the config.

Examples:
  t2048 play
  t2048 play --player alice
  t2048 play --save ./practice.yaml --seed 7`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayer, "player", defaultPlayer(), "Name recorded with finished games")
}

func runPlay(_ *cobra.Command, _ []string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		exitf("play needs an interactive terminal")
	}

	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}

	logger, closeLog := fileLogger(cfg)
	defer closeLog()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Open score storage
	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("playing without score history", "error", err)
		// Continue without storage - game still works
		store = nil
	}

	sess, err := localSession(cfg, store, flagPlayer, logger)
	if err == nil {
		err = sess.Start()
	}
	if err != nil {
		if store != nil {
			store.Close()
		}
		exitf("%v", err)
	}

	runErr := tui.Run(sess, width, height, logger)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		exitf("%v", runErr)
	}
}
