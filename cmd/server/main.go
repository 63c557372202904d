package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/docsentry/internal/api"
	"github.com/good-yellow-bee/docsentry/internal/api/health"
	"github.com/good-yellow-bee/docsentry/internal/remediate"
	"github.com/good-yellow-bee/docsentry/internal/scanner"
	"github.com/good-yellow-bee/docsentry/internal/scheduler"
	"github.com/good-yellow-bee/docsentry/internal/source"
	"github.com/good-yellow-bee/docsentry/internal/store"
	"github.com/good-yellow-bee/docsentry/pkg/config"
)

var (
	configFile string
	httpAddr   string
	demoMode   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "docsentry-server",
	Short: "DocSentry Server - Document security scanning server",
	Long: `DocSentry Server scans a document workspace for stale documents,
public exposure, and sensitive data in tables, and manages the
resulting security alerts.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docsentry-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "scan the built-in demo fixture instead of a live source")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded environment from .env")
	}

	var cfg *Config

	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	if demoMode {
		cfg.Source.UseDemoData = true
	}
	cfg.Verbose = verbose

	// Build the document source client
	var client source.Client
	var checker health.Checker

	if cfg.Source.UseDemoData {
		demo := source.NewDemoClient()
		client = demo
		checker = demo
		log.Printf("using built-in demo document source")
	} else {
		token := os.Getenv("DOCSENTRY_API_TOKEN")
		if token == "" {
			return fmt.Errorf("DOCSENTRY_API_TOKEN environment variable is required")
		}

		httpClient, err := source.NewHTTPClient(source.HTTPConfig{
			BaseURL:   cfg.Source.BaseURL,
			Token:     token,
			RateLimit: cfg.Source.RateLimit,
		})
		if err != nil {
			return fmt.Errorf("create source client: %w", err)
		}
		client = httpClient
		checker = httpClient
		log.Printf("using document source at %s", cfg.Source.BaseURL)
	}

	// Setup signal handling; ctx also bounds scan execution.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	st := store.New()
	scan := scanner.New(client, st, scanner.Config{
		StaleAfter:  cfg.Scan.StaleAfterDuration(),
		UseDemoData: cfg.Source.UseDemoData,
	})
	dispatcher := remediate.New(st, client)
	sched := scheduler.New(ctx, scan, time.Duration(cfg.Scan.IntervalMinutes)*time.Minute)

	// Build the HTTP API server
	srv, err := api.New(&api.Config{
		Address:        cfg.Server.Address,
		RateLimitPerIP: cfg.Server.RateLimitPerIP,
		Verbose:        cfg.Verbose,
	}, st, dispatcher, sched)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	srv.RegisterHealthChecker(checker)

	log.Printf("starting docsentry-server %s", config.Version)

	// Initial scan before serving so the API starts with fresh alerts.
	if result, err := sched.Trigger(ctx); err != nil {
		log.Printf("initial scan failed: %v", err)
	} else {
		log.Printf("initial scan %s: %d documents, %d new alerts",
			result.RunID, result.DocumentsScanned, result.AlertsCreated)
	}

	go sched.Run(ctx)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}
