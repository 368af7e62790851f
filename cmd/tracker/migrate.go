package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/logger"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the Postgres schema",
	Long:  "Apply the schema to the database named by DATABASE_URL. The statements are idempotent.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
		return err
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	logger.Info().Msg("schema applied")
	return nil
}
