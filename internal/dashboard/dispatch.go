package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/tunerdash/internal/logging"
	"github.com/muurk/tunerdash/internal/poll"
	"github.com/muurk/tunerdash/internal/render"
	"github.com/muurk/tunerdash/internal/state"
)

// handleKey routes a key press. While the channel input has focus it
// receives everything except focus changes, enter and esc.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		return m, m.setFocus((m.focus + 1) % numFocus)
	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.setFocus((m.focus + numFocus - 1) % numFocus)
	}

	if m.focus == focusTune {
		switch msg.Type {
		case tea.KeyEnter:
			return m.tune()
		case tea.KeyEsc:
			return m, m.setFocus(focusTuners)
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				if !unicode.IsDigit(r) {
					return m, nil
				}
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Scan):
		return m.startScan()
	case key.Matches(msg, m.keys.Poll):
		return m.togglePolling()
	case key.Matches(msg, m.keys.ClearLocks):
		return m.clearLocks()
	case key.Matches(msg, m.keys.Export):
		return m.exportScan()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchStatusCmd()
	}

	return m.navigate(msg)
}

// setFocus moves keyboard focus to f
func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.scanTable = m.scanTable.Focused(f == focusScan)
	if f == focusTune {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

// navigate handles up, down and enter within the focused panel
func (m Model) navigate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusTuners:
		count := len(render.TunerRows(m.mirror))
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.tunerCursor > 0 {
				m.tunerCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.tunerCursor < count-1 {
				m.tunerCursor++
			}
		case key.Matches(msg, m.keys.Enter):
			return m.selectTuner(m.tunerCursor)
		}

	case focusPrograms:
		// Row 0 is "none"; program i sits at row i+1
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.programCursor > 0 {
				m.programCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.programCursor < len(m.mirror.Programs) {
				m.programCursor++
			}
		case key.Matches(msg, m.keys.Enter):
			return m.selectProgram(m.programCursor)
		}

	case focusScan:
		if key.Matches(msg, m.keys.Enter) || msg.String() == " " {
			if idx, ok := render.HighlightedResult(m.scanTable); ok && m.mirror.ToggleExpanded(idx) {
				m.refreshScanTable()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.scanTable, cmd = m.scanTable.Update(msg)
		return m, cmd
	}

	return m, nil
}

// selectTuner switches the working tuner. The chart, program and TS
// display reset; a one-off tuner fetch seeds the signal bars.
func (m Model) selectTuner(index int) (tea.Model, tea.Cmd) {
	gen := m.mirror.SelectTuner(index)
	m.sched.Stop(poll.ProgramInfo)
	m.opts.Recorder.ObserveProgram(nil)
	m.programCursor = 0

	logging.LogAction("select_tuner", zap.Int("tuner", index))
	return m, m.fetchTunersCmd(fetchSeed, 0, gen)
}

// tune asks the backend to tune the selected tuner to the channel typed
// in the input
func (m Model) tune() (tea.Model, tea.Cmd) {
	if m.mirror.SelectedTuner == nil {
		return m, m.showToast("Select a tuner first", render.ToneWarning)
	}
	raw := strings.TrimSpace(m.input.Value())
	channel, err := strconv.Atoi(raw)
	if err != nil || channel < m.opts.ChannelMin || channel > m.opts.ChannelMax {
		return m, m.showToast(
			fmt.Sprintf("Channel must be %d-%d", m.opts.ChannelMin, m.opts.ChannelMax),
			render.ToneDanger,
		)
	}

	tuner := *m.mirror.SelectedTuner
	gen := m.mirror.BeginTune(channel)
	m.sched.Stop(poll.ProgramInfo)
	m.opts.Recorder.ObserveProgram(nil)
	m.programCursor = 0

	logging.LogAction("tune", zap.Int("tuner", tuner), zap.Int("channel", channel))
	return m, m.tuneCmd(gen, tuner, channel)
}

// selectProgram tunes program row cursor. Row 0, or any row past the
// list, clears the program and stops its stream.
func (m Model) selectProgram(cursor int) (tea.Model, tea.Cmd) {
	if cursor <= 0 || cursor > len(m.mirror.Programs) {
		m.mirror.ClearProgram()
		m.sched.Stop(poll.ProgramInfo)
		m.opts.Recorder.ObserveProgram(nil)
		return m, nil
	}

	p := m.mirror.Programs[cursor-1]
	m.mirror.SelectProgram(p.ID, p.Num)
	req, ok := m.mirror.CaptureProgram()
	if !ok {
		return m, nil
	}

	logging.LogAction("select_program",
		zap.Int("tuner", req.Tuner),
		zap.Int("program", req.Program),
		zap.String("label", p.Label()),
	)
	start := m.sched.Start(poll.ProgramInfo)
	return m, tea.Batch(start, m.programInfoCmd(m.sched.Token(poll.ProgramInfo), req))
}

// startScan begins a channel scan on the selected tuner
func (m Model) startScan() (tea.Model, tea.Cmd) {
	if m.mirror.ScanInProgress {
		return m, nil
	}
	if m.mirror.SelectedTuner == nil {
		return m, m.showToast("Select a tuner to scan", render.ToneWarning)
	}
	if !m.sched.Enabled() {
		return m, m.showToast("Resume polling to scan", render.ToneWarning)
	}

	tuner := *m.mirror.SelectedTuner
	seq := m.mirror.BeginScan(m.opts.Now())

	logging.LogAction("scan_start", zap.Int("tuner", tuner))
	return m, tea.Batch(m.spinner.Tick, m.startScanCmd(tuner, seq))
}

// togglePolling flips global polling. Pausing abandons any scan being
// tracked; resuming restarts the streams and fetches tuners at once.
func (m Model) togglePolling() (tea.Model, tea.Cmd) {
	if m.sched.Enabled() {
		m.sched.Disable()
		m.mirror.PollingEnabled = false
		if m.mirror.ScanInProgress {
			scanID := m.mirror.ScanID
			m.mirror.OrphanScan()
			logging.Warn("Polling paused during scan, completion will not be tracked",
				zap.String("scan_id", scanID),
			)
		}
		logging.LogAction("polling_paused")
		return m, nil
	}

	m.mirror.PollingEnabled = true
	logging.LogAction("polling_resumed")
	return m, tea.Batch(
		m.sched.Enable(m.mirror.ProgramTuned()),
		m.fetchTunersCmd(fetchImmediate, 0, m.mirror.Generation),
	)
}

// clearLocks releases every tuner lock on the device
func (m Model) clearLocks() (tea.Model, tea.Cmd) {
	logging.LogAction("clear_locks")
	return m, m.clearLocksCmd()
}

// exportScan copies the last scan results to the clipboard as JSON
func (m Model) exportScan() (tea.Model, tea.Cmd) {
	data, err := state.ExportJSON(m.mirror.LastScanResults)
	if errors.Is(err, state.ErrNothingToExport) {
		return m, m.showToast("No scan results to export", render.ToneWarning)
	}
	if err != nil {
		logging.Error("Failed to encode scan results", zap.Error(err))
		return m, m.showToast("Export failed", render.ToneDanger)
	}

	if err := m.opts.Clipboard(string(data)); err != nil {
		logging.Error("Failed to write clipboard", zap.Error(err))
		return m, m.showToast("Could not copy to clipboard", render.ToneDanger)
	}

	n := len(m.mirror.LastScanResults)
	logging.LogAction("export_scan", zap.Int("channels", n))
	return m, m.showToast(fmt.Sprintf("Copied %d channel(s) to clipboard", n), render.ToneSuccess)
}
