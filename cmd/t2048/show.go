package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/persist"
	"github.com/vovakirdan/tui-2048/internal/platform/tui"
)

var flagRaw bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved board",
	Long: `Print the saved board without starting a game.

With --raw the save record is printed in the chosen --format instead,
which also converts a save between formats:

  t2048 show --raw --format yaml > save.yaml`,
	Args: cobra.NoArgs,
	Run:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&flagRaw, "raw", false, "Print the save record instead of the board")
}

func runShow(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}

	snap, err := loadSaved(cfg)
	if errors.Is(err, game.ErrNoSnapshot) {
		fmt.Printf("No saved game at %s\n", cfg.Save.Path)
		fmt.Println("Run 't2048 play' to start one.")
		return
	}
	if err != nil {
		exitf("%v", err)
	}

	// --format only picks the output encoding.
	if flagRaw {
		codec := persist.ForPath(cfg.Save.Path)
		if cfg.Save.Format != "" {
			if codec, err = persist.Lookup(cfg.Save.Format); err != nil {
				exitf("%v", err)
			}
		}
		data, err := codec.Encode(snap)
		if err != nil {
			exitf("%v", err)
		}
		os.Stdout.Write(data)
		return
	}

	board := game.NewBoard(game.WithSize(snap.Size))
	if err := board.Restore(snap); err != nil {
		exitf("%v", err)
	}

	view := tui.NewBoardView(board)
	screen := core.NewScreen(max(snap.Size*8+1, 40), 3+snap.Size*4+2)
	tui.DrawBoard(screen, view)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(tui.RenderScreen(screen))
	} else {
		fmt.Println(screen.String())
	}
}

// loadSaved reads the local save whatever format it was written in.
func loadSaved(cfg config.Config) (game.Snapshot, error) {
	saves, err := saveStore(cfg)
	if err != nil {
		return game.Snapshot{}, err
	}
	return saves.Load()
}
