package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled events in arrival order",
		Run:   runList,
	}
	cmd.Flags().Bool("details", false, "Show the full detail block per event")
	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	details, _ := cmd.Flags().GetBool("details")

	cfg := loadConfig()
	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	defer store.Close()

	events := store.Events()
	if len(events) == 0 {
		fmt.Println("No events")
		return
	}
	for _, e := range events {
		if details {
			fmt.Println(e.Details())
		} else {
			fmt.Println(e.Summary())
		}
		fmt.Println()
	}
}
