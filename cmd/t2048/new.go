package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/config"
)

var flagWipe bool

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start over, keeping the best score",
	Long: `Replace the saved game with a fresh board. The best score is kept
unless --wipe is given, which deletes the save file instead.

Examples:
  t2048 new
  t2048 new --wipe`,
	Args: cobra.NoArgs,
	Run:  runNew,
}

func init() {
	newCmd.Flags().BoolVar(&flagWipe, "wipe", false, "Delete the save, best score included")
}

func runNew(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}

	if flagWipe {
		saves, err := saveStore(cfg)
		if err != nil {
			exitf("%v", err)
		}
		if err := saves.Delete(); err != nil {
			exitf("%v", err)
		}
		fmt.Printf("Deleted %s\n", saves.Path())
		return
	}

	best, err := startOver(cfg)
	if err != nil {
		exitf("%v", err)
	}
	fmt.Printf("New game saved to %s (best score %d)\n", cfg.Save.Path, best)
}

// startOver saves a fresh board over the current one and returns the kept best score.
func startOver(cfg config.Config) (int, error) {
	sess, err := localSession(cfg, nil, defaultPlayer(), newLogger(cfg, os.Stderr))
	if err != nil {
		return 0, err
	}
	if err := sess.Start(); err != nil {
		return 0, err
	}
	if err := sess.NewGame(); err != nil {
		return 0, err
	}
	best := sess.Snapshot().BestScore
	return best, sess.Close()
}
