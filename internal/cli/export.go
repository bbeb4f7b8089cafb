package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wakecal/pkg/calendar"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schedule as an ICS file with wake alarms",
		Run:   runExport,
	}
	cmd.Flags().StringP("out", "o", "schedule.ics", "Output file, or - for stdout")
	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	cfg := loadConfig()
	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	defer store.Close()

	events := store.Events()
	if len(events) == 0 {
		exitErr("export", fmt.Errorf("no events to export"))
	}

	w := os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			exitErr("export", err)
		}
		defer f.Close()
		w = f
	}
	if err := calendar.WriteICS(w, events); err != nil {
		exitErr("export", err)
	}
	if out != "-" {
		fmt.Printf("Wrote %d events to %s\n", len(events), out)
	}
}
