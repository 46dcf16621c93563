package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jhonnyo88/devteam-sub001/internal/agents"
	"github.com/jhonnyo88/devteam-sub001/internal/config"
	"github.com/jhonnyo88/devteam-sub001/internal/eventbus"
	"github.com/jhonnyo88/devteam-sub001/internal/logging"
	"github.com/jhonnyo88/devteam-sub001/internal/runtime"
	"github.com/jhonnyo88/devteam-sub001/internal/store"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load environment variables
	instanceName := os.Getenv("DEVTEAM_INSTANCE_NAME")
	if instanceName == "" {
		return fmt.Errorf("DEVTEAM_INSTANCE_NAME must be set")
	}

	configPath := os.Getenv("DEVTEAM_CONFIG")
	if configPath == "" {
		configPath = "devteam.yml"
	}

	// 2. Load devteam.yml configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", configPath, err)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = cfg.Redis.URL
	}

	// 3. Build the structured logger
	logger, err := logging.New()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 4. Create the store client and verify Redis connectivity
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	storeClient, err := store.NewClient(redisOpts, instanceName)
	if err != nil {
		return fmt.Errorf("failed to create store client: %w", err)
	}
	defer storeClient.Close()

	ctx := context.Background()
	if err := storeClient.Ping(ctx); err != nil {
		return fmt.Errorf("redis not accessible: %w", err)
	}

	// 5. Create the event bus with metrics
	registry := prometheus.NewRegistry()
	metrics := eventbus.NewMetrics(registry)
	bus := eventbus.New(cfg.BusConfig(), storeClient, metrics, logger)

	// 6. Register the configured agents
	registered, err := registerAgents(bus, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("coordinator starting",
		zap.String("instance", instanceName),
		zap.Int("agents", registered))

	bus.Start()

	// 7. Consume the submission inbox
	inboxCtx, stopInbox := context.WithCancel(ctx)
	inboxDone := make(chan struct{})
	go func() {
		defer close(inboxDone)
		consumeInbox(inboxCtx, storeClient, bus, logger)
	}()

	// 8. Health and metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := storeClient.Ping(r.Context()); err != nil {
			http.Error(w, fmt.Sprintf("redis: %v", err), http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	addr := os.Getenv("DEVTEAM_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 9. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("http server failed", zap.Error(err))
	}

	stopInbox()
	<-inboxDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}

	bus.Stop()
	logger.Info("coordinator stopped")
	return nil
}

// consumeInbox pops submissions off the instance inbox and delegates them.
// A malformed submission is logged and dropped; it cannot be retried into a
// valid contract.
func consumeInbox(ctx context.Context, storeClient *store.Client, bus *eventbus.EventBus, logger *zap.Logger) {
	for {
		submission, err := storeClient.NextSubmission(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if store.IsNotFound(err) {
				continue
			}
			logger.Warn("inbox read failed", zap.Error(err))
			continue
		}

		var c contract.Contract
		if err := json.Unmarshal(submission.ContractJSON, &c); err != nil {
			logger.Warn("dropping malformed submission", zap.Error(err))
			continue
		}

		workID, err := bus.Delegate(ctx, &c, contract.Priority(submission.Priority))
		if err != nil {
			logger.Warn("dropping rejected submission",
				zap.String("story_id", c.StoryID),
				zap.Error(err))
			continue
		}
		logger.Info("submission delegated",
			zap.String("story_id", c.StoryID),
			zap.String("work_id", workID))
	}
}

// registerAgents wires one runtime per configured replica onto the bus.
func registerAgents(bus *eventbus.EventBus, cfg *config.Config, logger *zap.Logger) (int, error) {
	registered := 0
	for name, agentCfg := range cfg.Agents {
		agent, err := buildAgent(agentCfg.AgentType())
		if err != nil {
			return registered, fmt.Errorf("agent '%s': %w", name, err)
		}
		rt, err := runtime.New(agent, nil, logger)
		if err != nil {
			return registered, fmt.Errorf("agent '%s': %w", name, err)
		}
		for i := 0; i < *agentCfg.Replicas; i++ {
			id := fmt.Sprintf("%s-%03d", name, i+1)
			if err := bus.RegisterAgent(id, agentCfg.AgentType(), rt); err != nil {
				return registered, fmt.Errorf("agent '%s': %w", id, err)
			}
			registered++
		}
	}
	return registered, nil
}

// buildAgent maps a configured role onto its in-process implementation.
func buildAgent(typ contract.AgentType) (runtime.Agent, error) {
	switch typ {
	case contract.AgentProjectManager:
		return agents.NewProjectManager(), nil
	case contract.AgentGameDesigner:
		return agents.NewGameDesigner(), nil
	case contract.AgentDeveloper:
		return agents.NewDeveloper(), nil
	case contract.AgentTestEngineer:
		return agents.NewTestEngineer(), nil
	case contract.AgentQATester:
		return agents.NewQATester(), nil
	case contract.AgentQualityReviewer:
		return agents.NewQualityReviewer(), nil
	default:
		return nil, fmt.Errorf("no implementation for agent type %q", typ)
	}
}
