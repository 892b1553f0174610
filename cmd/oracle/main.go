// Command oracle runs the charity verification oracle: it watches the
// registry for registrations, scores each candidate, and writes the decision
// back on-chain. main wires dependencies and owns the process lifecycle;
// business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"cointribute/internal/ai"
	"cointribute/internal/audit"
	auditkafka "cointribute/internal/audit/kafka"
	auditmemory "cointribute/internal/audit/memory"
	auditpostgres "cointribute/internal/audit/postgres"
	"cointribute/internal/chain/ethrpc"
	"cointribute/internal/oracle/evidence"
	evmemory "cointribute/internal/oracle/evidence/memory"
	evpostgres "cointribute/internal/oracle/evidence/postgres"
	evredis "cointribute/internal/oracle/evidence/redis"
	oraclemetrics "cointribute/internal/oracle/metrics"
	"cointribute/internal/oracle/pipeline"
	"cointribute/internal/oracle/queue"
	"cointribute/internal/oracle/scanner"
	"cointribute/internal/oracle/submitter"
	"cointribute/internal/oracle/subscriber"
	"cointribute/internal/oracle/worker"
	"cointribute/internal/platform/config"
	"cointribute/internal/platform/httpserver"
	"cointribute/internal/platform/logger"
	platformmetrics "cointribute/internal/platform/metrics"
	"cointribute/internal/platform/middleware"
	platformpostgres "cointribute/internal/platform/postgres"
	platformredis "cointribute/internal/platform/redis"
	httptransport "cointribute/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oracle: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Observability.
	registry := platformmetrics.NewRegistry()
	oracleMetrics := oraclemetrics.New(registry)

	// Audit trail.
	auditStore, closeAudit, err := buildAuditStore(ctx, cfg.Audit)
	if err != nil {
		return err
	}
	defer closeAudit()

	var publisher audit.Publisher
	if len(cfg.Audit.KafkaBrokers) > 0 {
		publisher, err = auditkafka.NewPublisher(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return fmt.Errorf("audit kafka publisher: %w", err)
		}
		defer publisher.Close()
	}
	auditWorker := audit.NewWorker(auditStore, publisher, cfg.Audit.Buffer, log)

	// Evidence storage.
	evidenceStore, closeEvidence, err := buildEvidenceStore(ctx, cfg.Evidence)
	if err != nil {
		return err
	}
	defer closeEvidence()
	evidenceService := evidence.NewService(evidenceStore, auditWorker, log)

	// Chain gateway.
	gateway, err := ethrpc.New(ethrpc.Config{
		Endpoint:       cfg.Chain.RPCEndpoint,
		WSEndpoint:     cfg.Chain.WSEndpoint,
		Contract:       cfg.Chain.ContractAddress,
		Account:        cfg.Chain.OracleAccount,
		CallTimeout:    cfg.Chain.CallTimeout,
		ConfirmTimeout: cfg.Chain.ConfirmTimeout,
		PollInterval:   cfg.Chain.PollInterval,
	}, log)
	if err != nil {
		return fmt.Errorf("chain gateway: %w", err)
	}

	// Scoring pipeline.
	aiClient := ai.NewClient(ai.Config{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		VisionModel: cfg.AI.VisionModel,
		Timeout:     cfg.AI.Timeout,
	})
	prober := pipeline.NewHTTPProber(cfg.IPFS.Gateway, cfg.IPFS.ProbeTimeout, log)
	runner := pipeline.NewRunner(aiClient, aiClient, prober, log)

	// Work queue and discovery.
	jobQueue := queue.New(cfg.Queue.Capacity, log)
	eventSubscriber := subscriber.New(gateway, jobQueue, auditWorker, log)
	backlogScanner := scanner.New(gateway, jobQueue, auditWorker, scanner.Config{
		Pace:     cfg.Scanner.Pace,
		Interval: cfg.Scanner.Interval,
	}, log)

	// Submission.
	strategy, err := submitter.StrategyFromName(cfg.Submitter.Strategy)
	if err != nil {
		return err
	}
	chainSubmitter := submitter.New(gateway, strategy, jobQueue, auditWorker, oracleMetrics, submitter.Config{
		MaxAttempts: cfg.Submitter.MaxAttempts,
		MaxInterval: cfg.Submitter.MaxInterval,
		Budget:      cfg.Submitter.Budget,
	}, log)

	pool := worker.NewPool(jobQueue, gateway, evidenceService, runner, chainSubmitter,
		auditWorker, oracleMetrics, cfg.Workers.Count, log)

	// HTTP surface.
	handler := httptransport.NewHandler(evidenceService, backlogScanner, log)
	router := httptransport.NewRouter(handler,
		middleware.NewHMACValidator(cfg.Server.JWTSigningKey), registry, log)
	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("oracle starting",
		"addr", cfg.Server.Addr,
		"contract", cfg.Chain.ContractAddress,
		"strategy", strategy.Name(),
		"workers", cfg.Workers.Count,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return auditWorker.Run(gctx) })
	g.Go(func() error { return eventSubscriber.Run(gctx) })
	g.Go(func() error { return backlogScanner.Run(gctx) })
	g.Go(func() error { return pool.Run(gctx) })
	g.Go(func() error { return chainSubmitter.Run(gctx) })
	g.Go(func() error { return httpserver.Run(gctx, srv) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("oracle stopped")
	return nil
}

func buildEvidenceStore(ctx context.Context, cfg config.EvidenceConfig) (evidence.Store, func(), error) {
	switch cfg.Backend {
	case "postgres":
		pool, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("evidence postgres: %w", err)
		}
		store := evpostgres.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("evidence schema: %w", err)
		}
		return store, pool.Close, nil
	case "redis":
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("evidence redis: %w", err)
		}
		return evredis.New(client.Client), func() { _ = client.Close() }, nil
	default:
		return evmemory.New(), func() {}, nil
	}
}

func buildAuditStore(ctx context.Context, cfg config.AuditConfig) (audit.Store, func(), error) {
	if cfg.Backend == "postgres" {
		store, err := auditpostgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("audit postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("audit schema: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
	return auditmemory.New(), func() {}, nil
}
