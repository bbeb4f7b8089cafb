package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"wakecal/pkg/calendar"
	"wakecal/pkg/places"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run the producer/consumer pipeline over stdin",
		Long:  "Reads JSON raw requests from stdin (one per line), queues them, and resolves them asynchronously through the places API into stored events. Saves on a cron schedule and on shutdown.",
		Run:   runIngest,
	}
	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	// API keys live in the environment; a .env file is optional.
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	defer store.Close()

	var enricher calendar.Enricher
	if cfg.Places.BaseURL != "" {
		apiKey := os.Getenv(cfg.Places.APIKeyEnv)
		enricher = places.NewClient(cfg.Places.BaseURL, apiKey,
			time.Duration(cfg.Places.TimeoutSec)*time.Second, logger)
	} else {
		logger.Info().Msg("No places endpoint configured, events stay unenriched")
	}

	// Mirror every store change into the log, the way the list view
	// observed the model.
	store.Subscribe(calendar.ListenerFunc(func(c calendar.Change) {
		logger.Info().
			Str("change", string(c.Kind)).
			Time("arrival", c.Event.Arrival).
			Time("alarm", c.Event.Alarm).
			Msg("Store changed")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Single consumer: resolves queued requests into events.
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		store.Run(ctx, enricher)
	}()

	// Producer: one JSON raw request per stdin line.
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var req calendar.RawRequest
			if err := json.Unmarshal(line, &req); err != nil {
				logger.Error().Err(err).Msg("Skipping malformed request line")
				continue
			}
			if req.ID == "" {
				req.ID = uuid.New().String()
			}
			store.EnqueueRequest(req)
		}
		if err := scanner.Err(); err != nil {
			logger.Error().Err(err).Msg("Stdin read failed")
		}
	}()

	// Periodic autosave while the pipeline runs.
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.AutosaveCron, func() { saveStore(store, logger) }); err != nil {
		logger.Error().Err(err).Str("cron", cfg.AutosaveCron).Msg("Invalid autosave schedule, autosave disabled")
	} else {
		sched.Start()
		defer sched.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Msg("Ingest pipeline running")
	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	case <-producerDone:
		// Input exhausted: give the consumer a chance to drain the queue.
		for store.PendingRequests() > 0 {
			time.Sleep(50 * time.Millisecond)
		}
		logger.Info().Msg("Input drained, shutting down")
	}

	cancel()
	<-consumerDone
	saveStore(store, logger)
}
