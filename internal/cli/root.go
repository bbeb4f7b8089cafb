// Package cli implements the wakecal commands. The commands are thin
// adapters over the engine: capture and validation here, scheduling and
// alarm math in pkg/calendar.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wakecal/internal/config"
	"wakecal/pkg/calendar"
)

// arrivalLayout is the input format for arrival deadlines: MM/DD/YYYY HH:MM.
const arrivalLayout = "01/02/2006 15:04"

var configPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "wakecal",
	Short: "Schedule events that need travel and compute their wake alarms",
	Long:  "wakecal schedules calendar events with an arrival deadline and derives the alarm time from travel mode, travel duration and event importance.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: per-user config dir)")
}

// Execute runs the CLI.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func openStore(cfg *config.Config, logger zerolog.Logger) *calendar.Store {
	s := calendar.NewStore(cfg.StorePath(), logger)
	s.SetTrainingLog(cfg.TrainingLogPath())
	return s
}

func parseArrival(s string) (time.Time, error) {
	return time.ParseInLocation(arrivalLayout, s, time.Local)
}

func saveStore(s *calendar.Store, logger zerolog.Logger) {
	if err := s.Save(); err != nil {
		// Best effort: the on-disk state stays stale, callers may retry.
		logger.Error().Err(err).Msg("Failed to save event store")
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
