package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/ingestion"
	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/observability"
	"github.com/jonathan/applicant-tracker/internal/parsing"
	"github.com/jonathan/applicant-tracker/internal/scoring"
)

var (
	analyzeResumeFile string
	analyzeJobFile    string
	analyzeJSON       bool
	analyzeVerbose    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume file against a job posting",
	Long: `Read a resume and a job posting (plain text or HTML), then print the structured analysis.
The job posting may be a local file or a job board URL. Nothing is stored.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeResumeFile, "resume", "", "Path to the resume file")
	analyzeCmd.Flags().StringVar(&analyzeJobFile, "job", "", "Path or URL of the job posting")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Also print the extracted job requirements")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log)
	ctx := cmd.Context()

	resume, _, err := ingestion.IngestFromFile(analyzeResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	job, err := readJobPosting(ctx, newImporter(cache.NewMemory(), cfg), analyzeJobFile)
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY or OPENAI_API_KEY for the configured provider)")
	}
	defer func() { _ = client.Close() }()

	return analyze(ctx, cmd.OutOrStdout(), client, cfg.CallTimeout(), resume, job, analyzeJSON, analyzeVerbose)
}

// analyze runs the evaluation and writes it as JSON or as a report. An upstream failure is an
// error here: a placeholder analysis is of no use on the command line.
func analyze(ctx context.Context, out io.Writer, client llm.Client, timeout time.Duration, resume, job string, asJSON, verbose bool) error {
	printer := observability.NewPrinter(out)

	if verbose && !asJSON {
		reqs, err := parsing.ExtractRequirements(ctx, client, job)
		if err != nil {
			return fmt.Errorf("failed to extract requirements: %w", err)
		}
		printer.PrintJobRequirements(reqs)
	}

	res := scoring.NewAnalyzer(client, timeout).Analyze(ctx, scoring.AnalysisRequest{
		ResumeText:     resume,
		JobDescription: job,
	})
	if res.Fallback {
		return fmt.Errorf("analysis failed: %w", res.Err)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Analysis)
	}
	printer.PrintAnalysis(&res.Analysis)
	return nil
}
