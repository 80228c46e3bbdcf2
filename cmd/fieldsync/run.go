package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdrrmo/fieldsync/pkg/cache"
	"github.com/mdrrmo/fieldsync/pkg/client"
	"github.com/mdrrmo/fieldsync/pkg/config"
	"github.com/mdrrmo/fieldsync/pkg/engine"
	"github.com/mdrrmo/fieldsync/pkg/feed"
	"github.com/mdrrmo/fieldsync/pkg/health"
	"github.com/mdrrmo/fieldsync/pkg/log"
	"github.com/mdrrmo/fieldsync/pkg/metrics"
	"github.com/mdrrmo/fieldsync/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the synchronization agent",
	Long: `Run the synchronization agent for the configured team.

The agent connects to the backend change feed, keeps the assigned-incident
list reconciled, and serves /metrics and /health on the listen address.

Examples:
  # Run with a config file
  fieldsync run -c /etc/fieldsync/config.yaml`,
	RunE: runAgent,
}

func init() {
	runCmd.Flags().StringP("config", "c", "fieldsync.yaml", "Path to YAML config file")
}

func runAgent(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	logger := log.WithComponent("main")

	store, err := cache.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %v", err)
	}
	defer store.Close()

	monitor := health.NewMonitor(health.NewHTTPChecker(cfg.ProbeURL), cfg.ProbeInterval.Std())
	monitor.Start()
	defer monitor.Stop()

	api := client.New(cfg.BackendURL, cfg.BackendToken, nil)
	transport := &feed.WebsocketTransport{URL: cfg.FeedURL, Token: cfg.FeedToken}

	eng, err := engine.New(engine.Config{
		Team:           cfg.TeamID,
		ActorID:        cfg.ActorID,
		Fetcher:        api,
		Cache:          store,
		Transport:      transport,
		Online:         monitor.Online,
		Window:         cfg.CoalesceWindow.Std(),
		ReconnectDelay: cfg.ReconnectDelay.Std(),
		Callbacks: engine.Callbacks{
			OnList: func(list []*types.Incident) {
				logger.Info().Int("count", len(list)).Msg("Assigned incident list updated")
			},
			OnError: func(banner string) {
				if banner == "" {
					return
				}
				logger.Warn().Str("banner", banner).Msg("Degraded refresh")
			},
			OnNewDispatch: func(n types.Notification) {
				logger.Info().
					Str("kind", string(n.Kind)).
					Str("incident_id", n.IncidentID).
					Str("reporter", n.ReporterName).
					Msg("New dispatch notification")
			},
			OnInstantIncidentUpdate: func(p types.IncidentPatch) {
				logger.Debug().Str("incident_id", p.ID).Msg("Instant incident update applied")
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build engine: %v", err)
	}

	metrics.SetVersion(Version)
	metrics.RegisterComponent("cache", true, "snapshot store open")
	metrics.RegisterComponent("feed", false, "not yet connected")
	metrics.RegisterComponent("connectivity", true, "assumed online")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %v", err)
	}

	// Mirror feed and connectivity state into the health endpoint.
	healthTicker := time.NewTicker(5 * time.Second)
	defer healthTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-healthTicker.C:
				state := eng.FeedState()
				metrics.UpdateComponent("feed", state == feed.StateSubscribed, string(state))
				if monitor.Online() {
					metrics.UpdateComponent("connectivity", true, "backend reachable")
				} else {
					metrics.UpdateComponent("connectivity", false, "backend unreachable")
				}
			}
		}
	}()

	var srv *http.Server
	errCh := make(chan error, 1)
	if cfg.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		srv = &http.Server{Addr: cfg.ListenAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("metrics server error: %v", err)
			}
		}()
		logger.Info().Str("addr", cfg.ListenAddr).Msg("Serving /metrics and /health")
	}

	logger.Info().
		Int64("team_id", cfg.TeamID).
		Str("session_id", eng.SessionID()).
		Msg("Agent is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("Shutting down...")
	case err := <-errCh:
		logger.Error().Err(err).Msg("Shutting down on server error")
	}

	eng.Stop()
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}
