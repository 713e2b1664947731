// Command actiondriver is the CLI entrypoint for the test-action driver:
// it wires configuration, logging, metrics, and the chosen execution Mode
// together and runs one buildAndRun invocation over the given files and
// class names.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"actiondriver/internal/config"
	"actiondriver/internal/discover"
	"actiondriver/internal/expectations"
	"actiondriver/internal/logging"
	"actiondriver/internal/metrics"
	"actiondriver/internal/mode"
	"actiondriver/internal/mode/docker"
	"actiondriver/internal/mode/process"
	"actiondriver/internal/orchestrator"
)

func main() {
	expectationsPath := flag.String("expectations", "", "path to an expectations.yaml file")
	reportPath := flag.String("report", "", "path to write the XML report (stdout if empty)")
	classNames := flag.String("classes", "", "comma-separated bare class names with no backing source")
	flag.Parse()
	files := flag.Args()

	cfg := config.Load()
	logger := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		Component: "actiondriver",
	})

	logger.Info("starting actiondriver", "env", cfg.Env, "mode", cfg.Mode.Kind)

	var m mode.Mode
	switch cfg.Mode.Kind {
	case config.ModeDocker:
		dm, err := docker.New(docker.Config{
			Image:   cfg.Mode.Image,
			WorkDir: cfg.Pipeline.LocalTemp,
		})
		if err != nil {
			log.Fatalf("create docker mode: %v", err)
		}
		m = dm
	default:
		m = process.New(process.Config{WorkDir: cfg.Pipeline.LocalTemp})
	}

	var met *metrics.Metrics
	if cfg.Metrics.Enabled {
		met = metrics.New(cfg.Metrics.Namespace)
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	var expectationStore *expectations.Store
	if *expectationsPath != "" {
		store, err := expectations.Load(*expectationsPath)
		if err != nil {
			log.Fatalf("load expectations: %v", err)
		}
		expectationStore = store
	} else {
		expectationStore = expectations.New()
	}

	reportOut := os.Stdout
	if *reportPath != "" {
		f, err := os.Create(*reportPath)
		if err != nil {
			log.Fatalf("create report file: %v", err)
		}
		defer f.Close()
		reportOut = f
	}

	driver := orchestrator.New(orchestrator.Config{
		NumBuilderThreads:    cfg.Pipeline.NumBuilderThreads,
		NumRunnerThreads:     cfg.Pipeline.NumRunnerThreads,
		ReadyQueueSize:       cfg.Pipeline.ReadyQueueSize,
		FirstMonitorPort:     cfg.Pipeline.FirstMonitorPort,
		DefaultMonitorPort:   cfg.Pipeline.DefaultMonitorPort,
		MonitorAcceptTimeout: time.Duration(cfg.Pipeline.MonitorTimeoutSeconds) * time.Second,
		SmallTimeout:         cfg.SmallTimeout(),
		LargeTimeout:         cfg.LargeTimeout(),
	}, orchestrator.Deps{
		Mode:        m,
		Expectation: expectationStore,
		Finder:      discover.New(),
		ReportOut:   reportOut,
		Logger:      logger,
		Metrics:     met,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Warn("received shutdown signal, cancelling run")
		cancel()
	}()
	defer cancel()

	var classNameList []string
	if *classNames != "" {
		classNameList = strings.Split(*classNames, ",")
	}

	start := time.Now()
	summary, err := driver.BuildAndRun(ctx, files, classNameList)
	if met != nil {
		met.RunDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		log.Fatalf("buildAndRun: %v", err)
	}

	fmt.Printf("successes=%d failures=%d skipped=%d\n", summary.Successes, summary.Failures, summary.Skipped)
	if len(summary.FailureNames) > 0 {
		fmt.Printf("failed: %s\n", strings.Join(summary.FailureNames, ", "))
	}
	if len(summary.SkippedNames) > 0 {
		fmt.Printf("skipped: %s\n", strings.Join(summary.SkippedNames, ", "))
	}
	if len(summary.ClasspathSuggestions) > 0 {
		fmt.Printf("consider adding to the classpath: %s\n", strings.Join(summary.ClasspathSuggestions, ", "))
	}
	for _, e := range summary.DriverErrors {
		fmt.Printf("driver error: %s\n", e)
	}

	if summary.Failures > 0 || len(summary.DriverErrors) > 0 {
		os.Exit(1)
	}
}

func serveMetrics(addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
