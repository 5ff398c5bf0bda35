// Interviewd is the interview scheduling daemon.
//
// It runs three long-lived pieces in one process: the Temporal worker
// hosting the scheduling workflow and its activities, the inbox
// monitor converting email replies into workflow signals, and the
// HTTP server behind the interviewer slot form.
//
// Configuration is loaded from ~/.config/interviewd/config.yaml and
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults
//	interviewd
//
//	# Configure via environment
//	TEMPORAL_HOST_PORT=localhost:7233 SMTP_PASSWORD=... interviewd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/calendar"
	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/email"
	"github.com/fyrsmithlabs/interviewd/internal/extraction"
	httpform "github.com/fyrsmithlabs/interviewd/internal/http"
	"github.com/fyrsmithlabs/interviewd/internal/logging"
	"github.com/fyrsmithlabs/interviewd/internal/monitor"
	"github.com/fyrsmithlabs/interviewd/internal/store"
	"github.com/fyrsmithlabs/interviewd/internal/workflows"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath = flag.String("config", "", "path to config.yaml (default ~/.config/interviewd/config.yaml)")

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  interviewd           Start the scheduling daemon\n")
			fmt.Fprintf(os.Stderr, "  interviewd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("interviewd: %v", err)
	}
	log.Println("Shutdown complete")
}

func printVersion() {
	fmt.Printf("interviewd\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires the daemon and blocks until the context is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting interviewd",
		zap.String("version", version),
		zap.String("temporal", cfg.Temporal.HostPort),
		zap.String("task_queue", cfg.Temporal.TaskQueue),
		zap.Int("form_port", cfg.Form.Port))

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return fmt.Errorf("connect to Temporal at %s: %w", cfg.Temporal.HostPort, err)
	}
	defer c.Close()
	logger.Info(ctx, "temporal client connected", zap.String("host", cfg.Temporal.HostPort))

	st := store.New(cfg.Store.Path)
	sender := email.NewSMTPSender(cfg.SMTP, logger)
	logger.Debug(ctx, "smtp sender configured",
		zap.String("host", cfg.SMTP.Host),
		zap.String("user", cfg.SMTP.User),
		logging.Secret("password", cfg.SMTP.Password))

	scheduler, err := calendar.NewGoogleScheduler(ctx, cfg.Google)
	if err != nil {
		return fmt.Errorf("initialize calendar: %w", err)
	}
	reader, err := email.NewGmailReader(ctx, cfg.Google)
	if err != nil {
		return fmt.Errorf("initialize gmail: %w", err)
	}

	activities := &workflows.Activities{
		Sender:      sender,
		Calendar:    scheduler,
		Store:       st,
		FormBaseURL: cfg.Form.PublicURL,
		Log:         logger,
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.InterviewSchedulingWorkflow)
	w.RegisterActivity(activities)
	if err := w.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	defer w.Stop()
	logger.Info(ctx, "temporal worker started", zap.String("task_queue", cfg.Temporal.TaskQueue))

	extractor := extraction.New(extraction.Config{
		Enabled:     cfg.LLM.Enabled,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Timeout:     cfg.LLM.Timeout.Duration(),
		MaxAttempts: cfg.LLM.MaxAttempts,
	})

	mon := monitor.New(c, reader, st, extractor, cfg.Monitor, logger)
	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("start reply monitor: %w", err)
	}
	defer mon.Stop()

	formServer, err := httpform.NewServer(c, cfg.Form, logger)
	if err != nil {
		return fmt.Errorf("create form server: %w", err)
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- formServer.Start()
	}()
	logger.Info(ctx, "slot form server started", zap.Int("port", cfg.Form.Port))

	select {
	case err := <-serverErr:
		return fmt.Errorf("form server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Form.ShutdownTimeout.Duration())
	defer cancel()
	if err := formServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "form server shutdown failed", zap.Error(err))
	}
	return nil
}
