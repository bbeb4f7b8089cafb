package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wakecal/pkg/calendar"
	"wakecal/pkg/transport"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule an event and compute its alarm",
		Run:   runAdd,
	}

	cmd.Flags().String("from", "", "Origin address (required)")
	cmd.Flags().String("to", "", "Destination address (required)")
	cmd.Flags().String("name", "", "Event name")
	cmd.Flags().String("origin", "", "Origin display name (defaults to --from)")
	cmd.Flags().String("dest", "", "Destination display name (defaults to --to)")
	cmd.Flags().String("arrive", "", "Arrival deadline, MM/DD/YYYY HH:MM (required)")
	cmd.Flags().String("mode", transport.DrivingType, "Transport: DRIVING, TRANSIT, BICYCLING or WALKING")
	cmd.Flags().Int("duration", 0, "Travel duration in seconds")
	cmd.Flags().Float64("importance", 3, "Importance scale, 1-5")
	cmd.Flags().Float64("rating", 0, "Place rating; > 0 marks the event as enriched")

	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("arrive")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	name, _ := cmd.Flags().GetString("name")
	origin, _ := cmd.Flags().GetString("origin")
	dest, _ := cmd.Flags().GetString("dest")
	arriveStr, _ := cmd.Flags().GetString("arrive")
	modeStr, _ := cmd.Flags().GetString("mode")
	durationSec, _ := cmd.Flags().GetInt("duration")
	importance, _ := cmd.Flags().GetFloat64("importance")
	rating, _ := cmd.Flags().GetFloat64("rating")

	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		exitErr("add", fmt.Errorf("addresses can't be empty"))
	}
	arrival, err := parseArrival(arriveStr)
	if err != nil {
		exitErr("add", fmt.Errorf("invalid arrival time %q, want MM/DD/YYYY HH:MM", arriveStr))
	}
	if arrival.Before(time.Now()) {
		exitErr("add", fmt.Errorf("arrival time is in the past"))
	}
	mode, err := transport.ParseMode(modeStr)
	if err != nil {
		exitErr("add", fmt.Errorf("unknown transport %q", modeStr))
	}
	if origin == "" {
		origin = from
	}
	if dest == "" {
		dest = to
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	defer store.Close()

	if store.IsTimeOccupied(arrival) {
		exitErr("add", fmt.Errorf("the time is already occupied, try a different time"))
	}

	var place *calendar.PlaceInfo
	if rating > 0 {
		place = &calendar.PlaceInfo{Rating: rating}
	}
	event := calendar.NewEvent(calendar.EventParams{
		AddressFrom:     from,
		AddressTo:       to,
		EventName:       name,
		OriginName:      origin,
		DestName:        dest,
		Arrival:         arrival,
		Transport:       transport.Transportation{Mode: mode, DurationSec: float64(durationSec)},
		ImportanceScale: importance,
	}, place)

	if err := store.Add(event); err != nil {
		exitErr("add", err)
	}
	saveStore(store, logger)
	fmt.Println(event.Summary())
}
