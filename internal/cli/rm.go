package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete the event at an arrival time",
		Run:   runRm,
	}
	cmd.Flags().String("arrive", "", "Arrival time of the event, MM/DD/YYYY HH:MM (required)")
	cmd.MarkFlagRequired("arrive")
	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	arriveStr, _ := cmd.Flags().GetString("arrive")
	arrival, err := parseArrival(arriveStr)
	if err != nil {
		exitErr("rm", fmt.Errorf("invalid arrival time %q, want MM/DD/YYYY HH:MM", arriveStr))
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	defer store.Close()

	event := store.EventAt(arrival)
	if event == nil {
		exitErr("rm", fmt.Errorf("no event at %s", arriveStr))
	}
	store.Remove(event)
	saveStore(store, logger)
	fmt.Printf("Deleted %s\n", event.ArrivalString())
}
