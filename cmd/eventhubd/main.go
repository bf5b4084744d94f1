// Command eventhubd runs the event hub as a standalone HTTP-addressable
// process: a host harness around the embeddable hub package, wiring
// config, logging, metrics, persistence and the dispatch heartbeat the way
// a real actor runtime would, grounded on cuemby-warren's cmd/warren
// cobra-rooted daemon layout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	hub "github.com/seniorjoinu/ic-event-hub"
	"github.com/seniorjoinu/ic-event-hub/internal/config"
	"github.com/seniorjoinu/ic-event-hub/internal/host"
	"github.com/seniorjoinu/ic-event-hub/internal/host/heartbeat"
	"github.com/seniorjoinu/ic-event-hub/internal/host/httpcaller"
	"github.com/seniorjoinu/ic-event-hub/internal/idl"
	"github.com/seniorjoinu/ic-event-hub/internal/log"
	"github.com/seniorjoinu/ic-event-hub/internal/metrics"
	"github.com/seniorjoinu/ic-event-hub/internal/store"
)

var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "eventhubd",
	Short: "eventhubd runs the IC-style publish/subscribe event hub as a standalone process",
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to a YAML/JSON/TOML config file")
}

// metricsObserver adapts hub.Observer to the package-level Prometheus
// collectors, keeping the hub package itself free of a metrics import.
type metricsObserver struct{}

func (metricsObserver) EventDropped(reason string) {
	metrics.EventsDroppedTotal.WithLabelValues(reason).Inc()
}

func (metricsObserver) BatchSealed(reason string) {
	metrics.BatchesSealedTotal.WithLabelValues(reason).Inc()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	level := log.InfoLevel
	if cfg.LogLevel != "" {
		level = log.Level(cfg.LogLevel)
	}
	log.Init(log.Config{Level: level, JSONOutput: cfg.LogJSON})
	logger := log.WithComponent("eventhubd")

	h := hub.New(cfg.BatchMaxAgeNS, cfg.BatchMaxSizeBytes)
	h.SetObserver(metricsObserver{})

	var st *store.Store
	if cfg.StorePath != "" {
		st, err = store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()

		if snap, ok, err := st.Load(); err != nil {
			return fmt.Errorf("eventhubd: restoring snapshot: %w", err)
		} else if ok {
			h.Restore(snap)
			logger.Info().Msg("restored hub state from store")
		}
	}

	resolver := httpcaller.StaticResolver{}
	caller := httpcaller.NewClient(resolver)
	clock := host.SystemClock{}
	types := idl.DefaultTypeTableEncoder{}
	dispatcher := hub.NewDispatcher(h, clock, types, caller, logger, nil)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", newManagementServer(h))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := heartbeat.New(ctx, "@every "+cfg.HeartbeatInterval.String(), func(ctx context.Context) {
		dispatcher.SendEvents(ctx)
		if st != nil {
			if err := st.Save(h.Snapshot()); err != nil {
				logger.Warn().Err(err).Msg("failed to persist snapshot")
			}
		}
	})
	if err != nil {
		return fmt.Errorf("eventhubd: building heartbeat: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		return err
	}

	return srv.Shutdown(context.Background())
}

// newManagementServer wraps an httpcaller.Server exposing the hub's
// subscription-management methods as JSON-over-HTTP routes, reusing the
// same /call/{method} convention the dispatcher's envelopes travel over.
func newManagementServer(h *hub.EventHub) *httpcaller.Server {
	handlers := map[string]httpcaller.EventHandler{
		"subscribe": func(ctx context.Context, body []byte) error {
			var req hub.SubscribeRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return err
			}
			h.HandleSubscribe(ctx, host.ContextCallerResolver{}.Caller(ctx), req)
			return nil
		},
		"unsubscribe": func(ctx context.Context, body []byte) error {
			var req hub.UnsubscribeRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return err
			}
			return h.HandleUnsubscribe(ctx, host.ContextCallerResolver{}.Caller(ctx), req)
		},
		"_add_event_listeners": func(ctx context.Context, body []byte) error {
			var req hub.AddEventListenersRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return err
			}
			h.HandleAddEventListeners(ctx, req)
			return nil
		},
		"_remove_event_listeners": func(ctx context.Context, body []byte) error {
			var req hub.RemoveEventListenersRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return err
			}
			return h.HandleRemoveEventListeners(ctx, req)
		},
		"_become_event_listener": func(ctx context.Context, body []byte) error {
			var req hub.BecomeEventListenerRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return err
			}
			h.HandleBecomeEventListener(ctx, host.ContextCallerResolver{}.Caller(ctx), req)
			return nil
		},
		"_stop_being_event_listener": func(ctx context.Context, body []byte) error {
			var req hub.StopBeingEventListenerRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return err
			}
			return h.HandleStopBeingEventListener(ctx, host.ContextCallerResolver{}.Caller(ctx), req)
		},
	}
	return httpcaller.NewServer(handlers)
}
