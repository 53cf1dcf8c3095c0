package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/tunerdash/internal/config"
	"github.com/muurk/tunerdash/internal/discovery"
	"github.com/muurk/tunerdash/internal/logging"
	"github.com/muurk/tunerdash/internal/poll"
	"github.com/muurk/tunerdash/internal/state"
	"github.com/muurk/tunerdash/internal/tunerapi"
	"github.com/muurk/tunerdash/internal/ui"
)

// Command flags
var (
	scanTuner     int
	scanExport    string
	assumeYes     bool
	discoverID    string
	discoverWatch time.Duration
	discoverWait  int
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tunersCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(programInfoCmd)
	rootCmd.AddCommand(clearLocksCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
}

// session is what every backend command needs
type session struct {
	reg     *config.Registry
	prefs   *config.Preferences
	client  *tunerapi.Client
	printer *ui.Printer
}

func newSession(cmd *cobra.Command) (*session, error) {
	reg, prefs, err := loadPreferences(cmd)
	if err != nil {
		return nil, err
	}
	if err := initLogging(prefs, false); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return &session{
		reg:     reg,
		prefs:   prefs,
		client:  newClient(prefs),
		printer: ui.NewPrinter(os.Stdout),
	}, nil
}

// fail prints a failure box for err and returns an error main will not
// print again
func (s *session) fail(title string, err error) error {
	s.printer.PrintError(title, err, troubleshooting(err, s.client.BaseURL)...)
	return fmt.Errorf("%w: %s: %v", errReported, title, err)
}

func (s *session) channelRange() (int, int) {
	lo, hi := s.prefs.ChannelMin, s.prefs.ChannelMax
	if lo == 0 && hi == 0 {
		return tunerapi.MinChannel, tunerapi.MaxChannel
	}
	return lo, hi
}

// statusCmd shows backend connectivity
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show receiver connectivity",
	Long: `Ask the backend whether it can reach the receiver, and report the
receiver's id, address and tuner count.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	s.printer.PrintHeader("Status", "tunerdash status", ui.Detail{Key: "Backend", Value: s.client.BaseURL})

	st, err := s.client.Status(ctx)
	if err != nil {
		return s.fail("Status", err)
	}

	cs := state.ConnStatusFromAPI(st)
	if !cs.Connected {
		s.printer.PrintWarning("Receiver unreachable", statusDetails(cs)...)
		return nil
	}
	s.printer.PrintSuccess("Receiver connected", statusDetails(cs)...)
	return nil
}

// tunersCmd lists tuners
var tunersCmd = &cobra.Command{
	Use:   "tuners",
	Short: "List tuners with lock state and signal quality",
	RunE:  runTuners,
}

func runTuners(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	tuners, err := s.client.Tuners(ctx)
	if err != nil {
		return s.fail("Tuners", err)
	}

	s.printer.PrintHeader("Tuners", "tunerdash tuners", ui.Detail{Key: "Backend", Value: s.client.BaseURL})
	s.printer.PrintTable(tunerHeaders, tunerTableRows(tuners))
	return nil
}

// scanCmd runs a channel scan to completion
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for channels on a tuner",
	Long: `Start a channel scan on a tuner and follow it until the backend reports
it finished, then print every physical channel found.

Scan status is polled at the configured scan_status period (3s by default).`,
	Example: `  # Scan on tuner 0
  tunerdash scan --tuner 0

  # Scan and save the results as JSON
  tunerdash scan --tuner 1 --export channels.json

  # Scan and write JSON to stdout
  tunerdash scan --tuner 1 --export -`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTuner, "tuner", 0, "Tuner index to scan with")
	scanCmd.Flags().StringVar(&scanExport, "export", "", "Write results as JSON to this file ('-' for stdout)")
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	if scanTuner < 0 {
		return fmt.Errorf("invalid tuner %d", scanTuner)
	}

	ctx, cancel := signalContext()
	defer cancel()

	quiet := scanExport == "-"
	if !quiet {
		s.printer.PrintHeader("Channel Scan", "tunerdash scan",
			ui.Detail{Key: "Backend", Value: s.client.BaseURL},
			ui.Detail{Key: "Tuner", Value: strconv.Itoa(scanTuner)},
		)
	}

	scanID, err := s.client.StartScan(ctx, scanTuner)
	if err != nil {
		return s.fail("Scan", err)
	}
	logging.LogAction("scan_started", zap.Int("tuner", scanTuner), zap.String("scan_id", scanID))

	lo, hi := s.channelRange()
	progress := ui.NewScanProgress("", lo, hi)
	interactive := !quiet && !s.printer.Plain
	if interactive {
		fmt.Fprintln(os.Stdout, ui.ProgressLabelStyle.Render(fmt.Sprintf("Scanning with tuner %d...", scanTuner)))
		fmt.Fprintln(os.Stdout)
	}

	rows, err := followScan(ctx, s.client, scanID, s.prefs.PollPeriods().Of(poll.ScanStatus), func(rows []state.ScanResultRow, finished bool) {
		physical, found := scanProgressInput(rows)
		progress.Observe(physical, found, finished)
		if interactive {
			fmt.Fprint(os.Stdout, "\r\033[2K"+progress.Render())
		}
	})
	if interactive {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout)
	}
	if err != nil {
		return s.fail("Scan", err)
	}
	logging.LogAction("scan_finished", zap.String("scan_id", scanID), zap.Int("channels", len(rows)))

	if scanExport != "" {
		if err := exportScan(rows, scanExport); err != nil {
			return err
		}
		if quiet {
			return nil
		}
	}

	if len(rows) == 0 {
		s.printer.PrintWarning("No channels found",
			ui.Detail{Key: "Tuner", Value: strconv.Itoa(scanTuner)})
		return nil
	}
	s.printer.PrintTable(scanHeaders, scanTableRows(rows))
	details := []ui.Detail{{Key: "Channels", Value: strconv.Itoa(len(rows))}}
	if scanExport != "" {
		details = append(details, ui.Detail{Key: "Exported to", Value: scanExport})
	}
	s.printer.PrintSuccess("Scan complete", details...)
	return nil
}

// followScan polls scan status every period until the scan finishes,
// reporting each poll to observe
func followScan(ctx context.Context, api interface {
	ScanStatus(ctx context.Context, scanID string) (*tunerapi.ScanStatus, error)
}, scanID string, period time.Duration, observe func([]state.ScanResultRow, bool)) ([]state.ScanResultRow, error) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		status, err := api.ScanStatus(ctx, scanID)
		if err != nil {
			return nil, err
		}
		rows := state.RowsFromAPI(status.Results)
		observe(rows, status.Finished)
		if status.Finished {
			return rows, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func exportScan(rows []state.ScanResultRow, path string) error {
	data, err := state.ExportJSON(rows)
	if err != nil {
		return fmt.Errorf("failed to export scan results: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// tuneCmd tunes a tuner to a physical channel
var tuneCmd = &cobra.Command{
	Use:   "tune <tuner> <channel>",
	Short: "Tune a tuner to a physical channel and list its programs",
	Example: `  # Tune tuner 1 to RF channel 8
  tunerdash tune 1 8`,
	Args: cobra.ExactArgs(2),
	RunE: runTune,
}

func runTune(cmd *cobra.Command, args []string) error {
	tuner, err := parseIndex("tuner", args[0])
	if err != nil {
		return err
	}
	channel, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid channel %q", args[1])
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	lo, hi := s.channelRange()
	if channel < lo || channel > hi {
		return fmt.Errorf("channel must be %d-%d", lo, hi)
	}

	ctx, cancel := signalContext()
	defer cancel()

	params := []ui.Detail{
		{Key: "Tuner", Value: strconv.Itoa(tuner)},
		{Key: "Channel", Value: strconv.Itoa(channel)},
	}
	if hz, ok := tunerapi.FrequencyForChannel(channel); ok {
		params = append(params, ui.Detail{Key: "Frequency", Value: formatMHz(hz)})
	}
	s.printer.PrintHeader("Tune", "tunerdash tune", params...)

	programs, err := s.client.Tune(ctx, tuner, channel)
	if err != nil {
		if tunerapi.IsEmpty(err) {
			s.printer.PrintWarning("No subchannels found", params[:2]...)
			return nil
		}
		return s.fail("Tune", err)
	}
	logging.LogAction("tuned", zap.Int("tuner", tuner), zap.Int("channel", channel), zap.Int("programs", len(programs)))

	s.printer.PrintTable(programHeaders, programTableRows(programs))
	return nil
}

// programInfoCmd shows the bitrate of a tuned program
var programInfoCmd = &cobra.Command{
	Use:   "program-info <tuner> <program>",
	Short: "Show the transport stream bitrate of a program",
	Args:  cobra.ExactArgs(2),
	RunE:  runProgramInfo,
}

func runProgramInfo(cmd *cobra.Command, args []string) error {
	tuner, err := parseIndex("tuner", args[0])
	if err != nil {
		return err
	}
	program, err := parseIndex("program", args[1])
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	info, err := s.client.ProgramInfo(ctx, tuner, program)
	if err != nil {
		return s.fail("Program info", err)
	}

	details := append([]ui.Detail{
		{Key: "Tuner", Value: strconv.Itoa(tuner)},
		{Key: "Program", Value: strconv.Itoa(program)},
	}, programInfoDetails(info)...)
	s.printer.PrintSuccess("Program info", details...)
	return nil
}

// clearLocksCmd releases every tuner lock
var clearLocksCmd = &cobra.Command{
	Use:   "clear-locks",
	Short: "Release every tuner lock on the receiver",
	RunE:  runClearLocks,
}

func init() {
	clearLocksCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runClearLocks(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	if !assumeYes && !ui.ConfirmClearLocks(os.Stdin, os.Stdout) {
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := s.client.ClearLocks(ctx)
	if err != nil {
		return s.fail("Clear locks", err)
	}
	logging.LogAction("locks_cleared", zap.Int("released", len(result.Results)))

	if rows := clearLockRows(result); len(rows) > 0 {
		s.printer.PrintTable(clearLockHeaders, rows)
	}
	s.printer.PrintSuccess("All tuner locks cleared")
	return nil
}

// discoverCmd browses the network for receivers
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find tuner receivers on the local network",
	Long: `Browse multicast DNS for HDHomeRun receivers and list them.

Receivers found are recorded in the config file with the time they were
last seen. With --watch the list is refreshed on an interval; the network
itself is browsed at most once a minute.`,
	Example: `  # One scan with the configured timeout
  tunerdash discover

  # Wait for a specific receiver
  tunerdash discover --id 1052ABCD

  # Keep refreshing every 15 seconds
  tunerdash discover --watch 15s`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverID, "id", "", "Wait for the receiver with this device id")
	discoverCmd.Flags().DurationVar(&discoverWatch, "watch", 0, "Refresh the list on this interval until interrupted")
	discoverCmd.Flags().IntVar(&discoverWait, "wait", 0, "Browse timeout in seconds (default from config)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	reg, prefs, err := loadPreferences(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(prefs, false); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	printer := ui.NewPrinter(os.Stdout)
	scanner := discovery.NewScanner()
	wait := prefs.DiscoverTimeout
	if discoverWait > 0 {
		wait = discoverWait
	}
	if wait > 0 {
		scanner.Timeout = time.Duration(wait) * time.Second
	}

	ctx, cancel := signalContext()
	defer cancel()

	printer.PrintHeader("Discover", "tunerdash discover",
		ui.Detail{Key: "Timeout", Value: scanner.Timeout.String()})

	if discoverID != "" {
		device, err := scanner.WaitForDevice(ctx, discoverID)
		if err != nil {
			printer.PrintError("Discover", err,
				"Ensure the receiver is powered on and on this network segment",
				"Check that the firewall allows mDNS (UDP port 5353)")
			return fmt.Errorf("%w: %v", errReported, err)
		}
		return recordDevices(reg, prefs, printer, []*discovery.Device{device})
	}

	cache := discovery.NewCache(scanner)
	for {
		devices, err := cache.Devices(ctx)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if err := recordDevices(reg, prefs, printer, devices); err != nil {
			return err
		}
		if discoverWatch <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(discoverWatch):
		}
	}
}

func recordDevices(reg *config.Registry, prefs *config.Preferences, printer *ui.Printer, devices []*discovery.Device) error {
	if len(devices) == 0 {
		printer.PrintWarning("No receivers found")
		return nil
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		nickname := ""
		if known := reg.GetDevice(d.ID); known != nil {
			nickname = known.Nickname
		}
		rows = append(rows, []string{d.ID, nickname, fmt.Sprintf("%s:%d", d.IP, d.Port), d.Model(), strconv.Itoa(d.TunerCount())})
	}
	printer.PrintTable([]string{"Device", "Nickname", "Address", "Model", "Tuners"}, rows)

	if !prefs.AutoDiscover {
		return nil
	}
	discovery.Record(reg, devices)
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// configCmd groups the config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the tunerdash configuration",
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetBackendCmd)
	configCmd.AddCommand(configNicknameCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, prefs, err := loadPreferences(cmd)
		if err != nil {
			return err
		}
		effective := *reg
		effective.Preferences = prefs
		data, err := yaml.Marshal(&effective)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			config.SetConfigPath(configPath)
		}
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configSetBackendCmd = &cobra.Command{
	Use:     "set-backend <url>",
	Short:   "Store the backend base URL",
	Example: `  tunerdash config set-backend http://192.168.1.20:5070`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadPreferences(cmd)
		if err != nil {
			return err
		}
		if err := reg.SetBackendURL(args[0]); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		ui.NewPrinter(os.Stdout).PrintSuccess("Backend saved", ui.Detail{Key: "Backend", Value: args[0]})
		return nil
	},
}

var configNicknameCmd = &cobra.Command{
	Use:   "nickname <device-id> <name>",
	Short: "Name a discovered receiver",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadPreferences(cmd)
		if err != nil {
			return err
		}
		reg.SetDeviceNickname(args[0], args[1])
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		return nil
	},
}
