// Package main provides the entry point for the applicant tracker server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Applicant tracking dashboard with AI-assisted review",
	Long:  "Applicant tracker serves the hiring dashboard API: applicant scoring, candidate comparison, skill-gap and pool insights, and a recruiting assistant.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
