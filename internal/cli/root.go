// Package cli provides the command-line interface for xrdthermo.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/raphaelgruber/xrdthermo/internal/client"
	"github.com/raphaelgruber/xrdthermo/internal/config"
	"github.com/raphaelgruber/xrdthermo/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configFile string
	apiURL     string

	// Resolved per invocation
	cfg       config.Config
	apiClient *client.Client
	logger    *slog.Logger
	closeLog  func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "xrdthermo",
	Short: "XRD thermometry console",
	Long: `xrdthermo predicts sample temperature from an X-ray diffraction peak and
simulates the peak expected at a given temperature.

Without a subcommand it opens the interactive console. The prediction
service is reached at --api-url (or XRD_API_URL).`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.LoadFile(configFile)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		// The console owns the terminal, so it logs to the file only.
		out := config.LogConsole
		if !cmd.HasParent() || cmd == consoleCmd {
			out = config.LogFileOnly
		}
		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel, out)

		apiClient = client.New(cfg.APIURL,
			client.WithTimeout(cfg.RequestTimeout),
			client.WithMetrics(metrics.NewCollector()),
		)
		logger.Debug("client configured", "api_url", cfg.APIURL, "timeout", cfg.RequestTimeout)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if verbose && apiClient != nil {
			printClientStats(cmd, apiClient.Metrics().Snapshot())
		}
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
			closeLog = nil
		}
	},
	RunE: runConsole,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "prediction service URL (overrides XRD_API_URL)")

	// Add subcommands
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(pingCmd)
}

// requestContext bounds a one-shot request by the configured timeout.
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
}
