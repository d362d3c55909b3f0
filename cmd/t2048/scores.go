package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/platform/tui"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	flagLimit       int
	flagClear       bool
	flagInteractive bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [player]",
	Short: "Show finished games",
	Long: `Display the best finished games, for one player or for everyone.

Examples:
  t2048 scores
  t2048 scores alice --limit 20
  t2048 scores -i
  t2048 scores alice --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of games to list")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the listed scores")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse scores in a full-screen table")
}

func runScores(_ *cobra.Command, args []string) {
	player := ""
	if len(args) == 1 {
		player = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}

	// Open score storage
	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearScores(player); err != nil {
			exitf("%v", err)
		}
		fmt.Println("Scores cleared.")

	case flagInteractive:
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(store, player, width, height); err != nil {
			exitf("%v", err)
		}

	default:
		if err := printScores(store, player, flagLimit); err != nil {
			exitf("%v", err)
		}
	}
}

func printScores(store *storage.Store, player string, limit int) error {
	scores, err := store.TopScores(player, limit)
	if err != nil {
		return err
	}

	title := "everyone"
	if player != "" {
		title = player
	}
	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No finished games yet.")
		fmt.Println()
		fmt.Println("Play 't2048 play' to set the first high score!")
		return nil
	}

	// Print header
	fmt.Printf("  %-4s  %-12s  %-8s  %-6s  %-6s  %s\n", "Rank", "Player", "Score", "Tile", "Moves", "Date")
	fmt.Printf("  %-4s  %-12s  %-8s  %-6s  %-6s  %s\n", "----", "------", "-----", "----", "-----", "----")

	for i, e := range scores {
		fmt.Printf("  %-4d  %-12s  %-8d  %-6d  %-6d  %s\n",
			i+1, e.Player, e.Score, e.MaxTile, e.Moves, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats(player)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Best: %d  Games: %d  Average: %.0f  Best tile: %d\n",
		stats.HighScore, stats.GamesCount, stats.AvgScore, stats.BestTile)
	return nil
}
