package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Shift an event's ready time and alarm by a delta",
		Long:  "Adds the delta to the recommended ready minutes and moves the alarm earlier by the same amount. The delta is not bounds-checked; a negative ready time reads as \"after the event\".",
		Run:   runAdjust,
	}
	cmd.Flags().String("arrive", "", "Arrival time of the event, MM/DD/YYYY HH:MM (required)")
	cmd.Flags().Int("delta", 0, "Minutes to add to the ready time (may be negative)")
	cmd.MarkFlagRequired("arrive")
	cmd.MarkFlagRequired("delta")
	RootCmd.AddCommand(cmd)
}

func runAdjust(cmd *cobra.Command, args []string) {
	arriveStr, _ := cmd.Flags().GetString("arrive")
	delta, _ := cmd.Flags().GetInt("delta")

	arrival, err := parseArrival(arriveStr)
	if err != nil {
		exitErr("adjust", fmt.Errorf("invalid arrival time %q, want MM/DD/YYYY HH:MM", arriveStr))
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	defer store.Close()

	event := store.EventAt(arrival)
	if event == nil {
		exitErr("adjust", fmt.Errorf("no event at %s", arriveStr))
	}
	store.Edit(event, delta)
	saveStore(store, logger)

	updated := store.EventAt(arrival)
	fmt.Printf("Alarm at: %s\n", updated.AlarmString())
}
