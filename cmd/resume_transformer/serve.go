package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-transformer/internal/config"
	"github.com/jonathan/resume-transformer/internal/llm"
	"github.com/jonathan/resume-transformer/internal/observability"
	"github.com/jonathan/resume-transformer/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for the resume transformation pipeline.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	// A missing API key disables that provider rather than failing
	// startup; the server reports provider status on /api/health.
	registry := llm.NewRegistry(context.Background(), llm.Options{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GroqAPIKey:   cfg.GroqAPIKey,
		GeminiModel:  cfg.GeminiModel,
		GroqModel:    cfg.GroqModel,
	})
	defer registry.Close()

	observability.NewPrinter(os.Stdout).PrintProviderReport(registry.Report())

	return server.New(cfg, registry).Start()
}
