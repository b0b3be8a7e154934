package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/threatflux/harborster/internal/config"
	"github.com/threatflux/harborster/internal/report"
	"github.com/threatflux/harborster/internal/ui"
	"github.com/threatflux/harborster/pkg/harbor"
)

// Version information (will be set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	Execute()
}

// initLogger initializes the logger from HARBOR_LOG_LEVEL and HARBOR_LOG_FORMAT.
// Logs go to w, stderr in production, so they do not mix with the table on stdout.
func initLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	configureLogger(logger, config.GetEnv("LOG_LEVEL", "info"), config.GetEnv("LOG_FORMAT", "text"))

	return logger
}

// configureLogger sets the formatter and level of logger
func configureLogger(logger *logrus.Logger, level, format string) {
	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableSorting:  false,
		})
	}

	if level == "" {
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, defaulting to info")
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	logger.SetLevel(parsed)
}

// initRegistryClient creates the Harbor API client
func initRegistryClient(cfg *config.Config, logger *logrus.Logger) (*harbor.Client, error) {
	logger.WithFields(logrus.Fields{
		"hostname":                 cfg.Hostname,
		"username":                 cfg.Username,
		"timeout":                  cfg.Timeout,
		"tls_insecure_skip_verify": cfg.TLSInsecureSkipVerify,
	}).Debug("Initializing registry client")

	client, err := harbor.NewClient(
		harbor.WithHostname(cfg.Hostname),
		harbor.WithBasicAuth(cfg.Username, cfg.Password),
		harbor.WithTimeout(cfg.Timeout),
		harbor.WithUserAgent(fmt.Sprintf("harborster/%s", Version)),
		harbor.WithTLSInsecureSkipVerify(cfg.TLSInsecureSkipVerify),
		harbor.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}

	if cfg.TLSInsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled")
	}

	return client, nil
}

// runReport renders the CVE table of the configured project to out. The
// rows collected before a failure stay on screen.
func runReport(ctx context.Context, cfg *config.Config, logger *logrus.Logger, out io.Writer) (*report.Summary, error) {
	client, err := initRegistryClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	var tableOpts []ui.LiveTableOption
	if cfg.NoColor {
		tableOpts = append(tableOpts, ui.WithNoColor())
	}
	table := ui.NewLiveTable(out, report.Title, report.Columns, tableOpts...)

	// Log lines are printed above the table while it is live
	logOut := logger.Out
	logger.SetOutput(table.LogWriter(logOut))
	defer func() {
		table.Stop()
		logger.SetOutput(logOut)
	}()

	driver := report.NewDriver(client, table,
		report.WithLogger(logger),
		report.WithRegistryHost(cfg.Hostname),
	)
	return driver.Run(ctx, cfg.ProjectName)
}
