// Package main provides the entry point for the Resume Transformer HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_transformer",
	Short: "Resume Transformer HTTP API Server",
	Long:  "Resume Transformer rewrites resumes against a target job description through a three-phase LLM pipeline (analysis, draft, formatting) over Gemini and Groq, exposed via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
