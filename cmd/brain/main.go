// Package main is the entry point for the discovery process: the
// scan orchestrator, graph, pricing, profitability and advisory
// bounded contexts, reporting profitable opportunities to a separate
// executor process over HTTP (spec §4.10).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fulcrumlabs/flashrelay/business/advisory"
	"github.com/fulcrumlabs/flashrelay/business/chainregistry"
	"github.com/fulcrumlabs/flashrelay/business/gasfeed"
	"github.com/fulcrumlabs/flashrelay/business/graph"
	"github.com/fulcrumlabs/flashrelay/business/pricing"
	"github.com/fulcrumlabs/flashrelay/business/profitability"
	"github.com/fulcrumlabs/flashrelay/business/scanner"
	scannerDI "github.com/fulcrumlabs/flashrelay/business/scanner/di"
	"github.com/fulcrumlabs/flashrelay/business/scanner/infra/marketdata"
	"github.com/fulcrumlabs/flashrelay/business/tokendex"
	"github.com/fulcrumlabs/flashrelay/internal/apm"
	"github.com/fulcrumlabs/flashrelay/internal/config"
	"github.com/fulcrumlabs/flashrelay/internal/health"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/metrics"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("brain %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	os.Exit(runSafely(ctx, *configPath))
}

// exit codes: 0 clean shutdown, 1 fatal init failure, 2 ran but
// unhealthy at exit, 3 internal panic (spec §6).
const (
	exitOK            = 0
	exitInitFailure   = 1
	exitUnhealthy     = 2
	exitInternalPanic = 3
)

// runSafely recovers a panic anywhere in run so the process always
// exits through the documented exit codes instead of a bare stack
// trace and an OS-assigned status.
func runSafely(ctx context.Context, configPath string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			code = exitInternalPanic
		}
	}()
	return run(ctx, configPath)
}

func run(ctx context.Context, configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		return exitInitFailure
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}
	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting brain", "version", version, "environment", cfg.App.Environment, "executor_url", cfg.Scanner.ExecutorURL)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to create monolith", "error", err)
		return exitInitFailure
	}
	defer mono.Close()

	marketdataProvider := marketdata.New()

	modules := []monolith.Module{
		&chainregistry.Module{},
		&tokendex.Module{},
		&graph.Module{},
		&pricing.Module{},
		&gasfeed.Module{},
		&advisory.Module{},
		&profitability.Module{VaultBalance: marketdataProvider.VaultBalance},
		&scanner.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		log.Error(ctx, "failed to register modules", "error", err)
		return exitInitFailure
	}

	healthServer.RegisterCheck("orchestrator", func(checkCtx context.Context) (bool, string) {
		orchestrator := scannerDI.GetOrchestrator(mono.Services())
		snap := orchestrator.Stats()
		// Every evaluated candidate erroring out after at least one full
		// iteration means the scan loop never produced a usable signal,
		// a systemic failure rather than routine candidate-level noise.
		healthy := snap.IterationsRun == 0 || snap.CandidatesEvaluated == 0 || snap.CandidatesErrored < snap.CandidatesEvaluated
		return healthy, fmt.Sprintf("iterations=%d signals=%d errored=%d/%d", snap.IterationsRun, snap.SignalsEmitted, snap.CandidatesErrored, snap.CandidatesEvaluated)
	})

	if err := mono.StartModules(ctx, modules...); err != nil {
		log.Error(ctx, "failed to start modules", "error", err)
		return exitInitFailure
	}

	log.Info(ctx, "all modules started, scanning for opportunities")
	<-ctx.Done()
	log.Info(ctx, "shutting down")

	checkCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if !healthServer.CheckAll(checkCtx) {
		log.Warn(ctx, "exiting in a degraded state", "reason", "scan loop produced no usable evaluations")
		return exitUnhealthy
	}
	return exitOK
}
