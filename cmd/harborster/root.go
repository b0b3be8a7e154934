package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/threatflux/harborster/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "harborster",
	Short: "List the CVEs of every scanned artifact in a Harbor project",
	Long: `harborster walks every repository and artifact of a Harbor project and prints
the vulnerability ids of each scanned artifact as a table.

Configuration is read from HARBOR_HOSTNAME, HARBOR_USERNAME, HARBOR_PASSWORD and
HARBOR_PROJECT_NAME, from a .env file in the working directory, or from harborster.yaml.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger := initLogger(cmd.ErrOrStderr())

	// Errors are printed once by Execute
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		return err
	}
	configureLogger(logger, cfg.Log.Level, cfg.Log.Format)

	logger.WithFields(logrus.Fields{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
	}).Debug("Starting harborster")
	logger.Debug(cfg.String())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runReport(ctx, cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"run_id":       summary.RunID,
		"repositories": summary.Repositories,
		"artifacts":    summary.Artifacts,
		"rows":         summary.Rows,
		"skipped":      summary.Skipped,
	}).Debug("Report complete")

	return nil
}

// Execute runs the root command and exits with status 1 on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err)
		os.Exit(1)
	}
}
