package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/tunerdash/internal/render"
	"github.com/muurk/tunerdash/internal/signal"
	"github.com/muurk/tunerdash/internal/state"
	"github.com/muurk/tunerdash/internal/tunerapi"
	"github.com/muurk/tunerdash/internal/ui"
)

// errReported marks an error whose failure box has already been printed
var errReported = errors.New("reported")

// Column headings of the tabular commands
var (
	tunerHeaders     = []string{"Tuner", "Lock", "Channel", "SS", "SNQ", "SEQ"}
	scanHeaders      = []string{"Channel", "Frequency", "SS", "SNQ", "Programs"}
	programHeaders   = []string{"ID", "Number", "Name"}
	clearLockHeaders = []string{"Tuner", "Result"}
)

func tunerTableRows(tuners []tunerapi.Tuner) [][]string {
	rows := make([][]string, 0, len(tuners))
	for _, t := range tuners {
		snap := state.SnapshotFromAPI(t)
		rows = append(rows, []string{
			strconv.Itoa(snap.Index),
			render.LockBadge(snap).Text,
			render.ChannelBadge(snap).Text,
			signal.FormatPercent(snap.SignalStrength),
			signal.FormatPercent(snap.SignalNoiseQuality),
			signal.FormatPercent(snap.SymbolErrorQuality),
		})
	}
	return rows
}

func scanTableRows(results []state.ScanResultRow) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		channel, freq := "--", "--"
		if r.PhysicalChannel != nil {
			channel = strconv.Itoa(*r.PhysicalChannel)
			if hz, ok := tunerapi.FrequencyForChannel(*r.PhysicalChannel); ok {
				freq = formatMHz(hz)
			}
		}
		rows = append(rows, []string{
			channel,
			freq,
			signal.FormatPercent(r.SignalStrength),
			signal.FormatPercent(r.SignalNoiseQuality),
			subchannelList(r.Subchannels),
		})
	}
	return rows
}

func subchannelList(subs []state.Subchannel) string {
	if len(subs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(subs))
	for _, s := range subs {
		parts = append(parts, strings.TrimSpace(s.Number+" "+s.Name))
	}
	return strings.Join(parts, ", ")
}

func formatMHz(hz int) string {
	return fmt.Sprintf("%d MHz", hz/1_000_000)
}

func programTableRows(programs []tunerapi.Program) [][]string {
	rows := make([][]string, 0, len(programs))
	for _, p := range programs {
		rows = append(rows, []string{strconv.Itoa(p.ID), p.Num, p.Name})
	}
	return rows
}

func clearLockRows(result *tunerapi.ClearLocksResult) [][]string {
	if result == nil {
		return nil
	}
	rows := make([][]string, 0, len(result.Results))
	for _, r := range result.Results {
		raw := strings.TrimSpace(r.Raw)
		if raw == "" {
			raw = "ok"
		}
		rows = append(rows, []string{strconv.Itoa(r.Tuner), raw})
	}
	return rows
}

// scanProgressInput extracts the physical channels and the count of
// channels carrying programs from a status poll
func scanProgressInput(rows []state.ScanResultRow) (physical []int, found int) {
	for _, r := range rows {
		if r.PhysicalChannel != nil {
			physical = append(physical, *r.PhysicalChannel)
		}
		if len(r.Subchannels) > 0 {
			found++
		}
	}
	return physical, found
}

func statusDetails(s state.ConnStatus) []ui.Detail {
	details := []ui.Detail{{Key: "Status", Value: render.StatusBadge(s).Text}}
	if s.DeviceID != "" {
		details = append(details, ui.Detail{Key: "Device ID", Value: s.DeviceID})
	}
	if s.DeviceIP != "" {
		details = append(details, ui.Detail{Key: "Device IP", Value: s.DeviceIP})
	}
	if s.TunerCount > 0 {
		details = append(details, ui.Detail{Key: "Tuners", Value: strconv.Itoa(s.TunerCount)})
	}
	return details
}

func programInfoDetails(info *tunerapi.ProgramInfo) []ui.Detail {
	pi := state.ProgramInfo{BitrateBps: info.Bitrate, MaxBitrateBps: info.MaxBitrate}
	bar := render.TSBar(&pi)
	return []ui.Detail{
		{Key: "Bitrate", Value: bar.Label},
		{Key: "Utilisation", Value: fmt.Sprintf("%d%%", bar.Percent)},
	}
}

// troubleshooting returns hints for a failed backend call
func troubleshooting(err error, baseURL string) []string {
	switch {
	case tunerapi.IsNetwork(err):
		return []string{
			"Is the tuner backend running at " + baseURL + "?",
			"Use --backend or 'tunerdash config set-backend' to point elsewhere",
			"Try 'tunerdash discover' to find receivers on the network",
		}
	case tunerapi.IsProtocol(err):
		return []string{
			"The backend answered with something unexpected",
			"Run with --log-level debug to see the exchange",
		}
	default:
		return nil
	}
}

// parseIndex parses a non-negative integer argument
func parseIndex(name, arg string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, arg)
	}
	return v, nil
}
