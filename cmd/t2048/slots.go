package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

var flagDeleteSlot string

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List the save slots of SSH players",
	Long: `List the games that SSH players left in the database, or delete one.

Examples:
  t2048 slots
  t2048 slots --delete guest-brave-otter`,
	Args: cobra.NoArgs,
	Run:  runSlots,
}

func init() {
	slotsCmd.Flags().StringVar(&flagDeleteSlot, "delete", "", "Delete the named slot")
}

func runSlots(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}

	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		exitf("opening database: %v", err)
	}
	defer store.Close()

	if flagDeleteSlot != "" {
		if err := store.DeleteSave(flagDeleteSlot); err != nil {
			exitf("%v", err)
		}
		fmt.Printf("Deleted slot %s\n", flagDeleteSlot)
		return
	}

	saves, err := store.ListSaves()
	if err != nil {
		exitf("%v", err)
	}
	if len(saves) == 0 {
		fmt.Println("No saved slots.")
		return
	}

	fmt.Printf("  %-24s  %-6s  %s\n", "Slot", "Format", "Updated")
	fmt.Printf("  %-24s  %-6s  %s\n", "----", "------", "-------")
	for _, s := range saves {
		fmt.Printf("  %-24s  %-6s  %s\n", s.Slot, s.Format, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
}
