// Tunerdash is a terminal dashboard for a networked multi-tuner TV receiver.
//
// It talks to a small HTTP backend that fronts the receiver and shows the
// state of every tuner, live signal quality, a signal history chart and
// channel scan results. Operators can tune channels, pick programs, run
// scans and release tuner locks.
//
// Usage:
//
//	tunerdash [command] [flags]
//
// Running without arguments launches the interactive dashboard.
// See 'tunerdash --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/tunerdash/internal/config"
	"github.com/muurk/tunerdash/internal/dashboard"
	"github.com/muurk/tunerdash/internal/logging"
	"github.com/muurk/tunerdash/internal/metrics"
	"github.com/muurk/tunerdash/internal/tunerapi"
	"github.com/muurk/tunerdash/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	backendURL  string
	timeout     time.Duration
	logLevel    string
	logFile     string
	metricsAddr string
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "tunerdash",
	Short: "Multi-tuner TV receiver dashboard",
	Long: `A terminal dashboard for a networked multi-tuner TV receiver.

Shows lock state and signal quality of every tuner, a signal history chart,
channel scan results and the bitrate of the tuned program.

If no command is specified, the interactive dashboard will launch.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (default from config, then "+tunerapi.DefaultBaseURL+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (e.g., 5s, 30s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); empty is silent")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9112)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tunerdash %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// loadPreferences reads the config registry and applies flag overrides
func loadPreferences(cmd *cobra.Command) (*config.Registry, *config.Preferences, error) {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	prefs := *reg.Preferences

	flags := cmd.Flags()
	if flags.Changed("backend") {
		prefs.BackendURL = backendURL
	}
	if flags.Changed("timeout") {
		prefs.Timeout = timeout
	}
	if flags.Changed("log-level") {
		prefs.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		prefs.LogFile = logFile
	}
	if flags.Changed("metrics-addr") {
		prefs.MetricsAddr = metricsAddr
	}

	if err := prefs.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w", err)
	}
	return reg, &prefs, nil
}

// initLogging starts the logger. The dashboard owns the terminal, so when
// it runs without an explicit log file, output goes to the config dir.
func initLogging(prefs *config.Preferences, interactive bool) error {
	file := prefs.LogFile
	if file == "" && interactive {
		if dir, err := config.GetConfigDir(); err == nil {
			file = filepath.Join(dir, "tunerdash.log")
		}
	}
	return logging.InitializeWithOptions(logging.Options{Level: prefs.LogLevel, File: file})
}

// newClient builds the backend client from prefs
func newClient(prefs *config.Preferences) *tunerapi.Client {
	client := tunerapi.NewClient(prefs.BackendURL)
	if prefs.Timeout > 0 {
		client.SetTimeout(prefs.Timeout)
	}
	return client
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	_, prefs, err := loadPreferences(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(prefs, true); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	client := newClient(prefs)
	opts := dashboard.Options{
		Periods:        prefs.PollPeriods(),
		ChannelMin:     prefs.ChannelMin,
		ChannelMax:     prefs.ChannelMax,
		ToastDuration:  prefs.ToastDuration,
		ChartPoints:    prefs.ChartPoints,
		RequestTimeout: prefs.Timeout,
	}

	if prefs.MetricsAddr != "" {
		m := metrics.New()
		client.SetTransport(m.InstrumentTransport(nil))
		opts.Recorder = m
		go func() {
			if err := metrics.Serve(ctx, prefs.MetricsAddr, m); err != nil {
				logging.Error("Metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	logging.Info("Starting dashboard",
		zap.String("backend", client.BaseURL),
		zap.String("version", version.Version))

	program := tea.NewProgram(dashboard.New(client, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard exited: %w", err)
	}
	return nil
}
