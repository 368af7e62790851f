package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/applicant-tracker/internal/assistant"
	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/comparison"
	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/insights"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/scoring"
	"github.com/jonathan/applicant-tracker/internal/server"
	"github.com/jonathan/applicant-tracker/internal/server/ratelimit"
)

var (
	servePort          int
	serveSecureCookies bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the dashboard REST API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveSecureCookies, "secure-cookies", false, "Mark the session cookie Secure (behind TLS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	logger.Init(cfg.Log)
	ctx := cmd.Context()

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		logger.Warn().Err(err).Msg("using an ephemeral session secret, sessions will not survive a restart")
		jwtConfig = config.EphemeralJWTConfig()
	}

	st, release, err := openStore(ctx, cfg, passwords)
	if err != nil {
		return err
	}
	defer release()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	c := newCache(ctx, cfg)
	if r, ok := c.(*cache.Redis); ok {
		defer func() { _ = r.Close() }()
	}

	timeout := cfg.CallTimeout()
	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  serveSecureCookies,
	}, server.Deps{
		Store:      st,
		Scoring:    scoring.NewService(st, scoring.NewAnalyzer(client, timeout), cache.NewLocker(c, scoring.LockTTL(timeout), logger.Logger)),
		Comparison: comparison.NewService(st, client, timeout),
		Insights:   insights.NewService(st, client, c, insights.Options{CacheTTL: cfg.CacheTTL(), CallTimeout: timeout}),
		Assistant:  assistant.NewService(st, client, timeout),
		Importer:   newImporter(c, cfg),
		JWT:        server.NewJWTService(jwtConfig),
		Passwords:  passwords,
		Limiter:    ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:     logger.Logger,
	})

	return srv.Start(ctx)
}
