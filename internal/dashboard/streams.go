package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/tunerdash/internal/logging"
	"github.com/muurk/tunerdash/internal/poll"
	"github.com/muurk/tunerdash/internal/render"
	"github.com/muurk/tunerdash/internal/state"
	"github.com/muurk/tunerdash/internal/tunerapi"
)

// handleTick fires the fetch of a live stream and re-arms its timer.
// Ticks of stopped or restarted streams are dropped here.
func (m Model) handleTick(msg poll.TickMsg) (tea.Model, tea.Cmd) {
	if !m.sched.Accept(msg) {
		return m, nil
	}
	next := m.sched.Next(msg)

	switch msg.Stream {
	case poll.TunerList:
		return m, tea.Batch(next, m.fetchTunersCmd(fetchPoll, msg.Token, m.mirror.Generation))

	case poll.ChartSample:
		if !m.mirror.ChartGate() {
			return m, next
		}
		return m, tea.Batch(next, m.chartSampleCmd(msg.Token, m.mirror.Generation))

	case poll.ScanStatus:
		if m.mirror.ScanID == "" {
			return m, next
		}
		return m, tea.Batch(next, m.scanStatusCmd(msg.Token, m.mirror.ScanID))

	case poll.ProgramInfo:
		req, ok := m.mirror.CaptureProgram()
		if !ok {
			m.sched.Stop(poll.ProgramInfo)
			return m, nil
		}
		return m, tea.Batch(next, m.programInfoCmd(msg.Token, req))
	}

	return m, next
}

func (m Model) pollFailed(s poll.Stream, err error) {
	logging.LogPollFailure(s.String(), err)
	m.opts.Recorder.PollFailed(s.String())
}

func snapshots(tuners []tunerapi.Tuner) []state.TunerSnapshot {
	snaps := make([]state.TunerSnapshot, 0, len(tuners))
	for _, t := range tuners {
		snaps = append(snaps, state.SnapshotFromAPI(t))
	}
	return snaps
}

func (m Model) handleStatus(msg statusMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		logging.Warn("Status request failed", zap.Error(msg.err))
		m.mirror.Status = state.ConnStatus{Known: true, Err: msg.err}
		return m, nil
	}

	m.mirror.Status = state.ConnStatusFromAPI(msg.status)
	if !m.mirror.Status.Connected {
		m.mirror.TunersFailed()
	}
	logging.Debug("Device status",
		zap.Bool("connected", m.mirror.Status.Connected),
		zap.String("device_id", m.mirror.Status.DeviceID),
		zap.String("device_ip", m.mirror.Status.DeviceIP),
	)
	return m, nil
}

func (m Model) handleTuners(msg tunersMsg) (tea.Model, tea.Cmd) {
	switch msg.source {
	case fetchPoll:
		if !m.sched.Current(poll.TunerList, msg.token) {
			return m, nil
		}
	case fetchSeed:
		if msg.gen != m.mirror.Generation {
			return m, nil
		}
	case fetchImmediate:
		if !m.mirror.PollingEnabled {
			return m, nil
		}
	}

	if msg.err != nil {
		m.pollFailed(poll.TunerList, msg.err)
		m.mirror.TunersFailed()
		return m, nil
	}

	snaps := snapshots(msg.tuners)
	m.mirror.ApplyTuners(snaps)
	m.opts.Recorder.ObserveTuners(snaps)
	if rows := len(render.TunerRows(m.mirror)); m.tunerCursor >= rows {
		m.tunerCursor = rows - 1
	}
	return m, nil
}

func (m Model) handleChartSample(msg chartSampleMsg) (tea.Model, tea.Cmd) {
	if !m.sched.Current(poll.ChartSample, msg.token) {
		return m, nil
	}
	if msg.err != nil {
		m.pollFailed(poll.ChartSample, msg.err)
		return m, nil
	}
	m.mirror.AppendChartSample(msg.gen, msg.at, snapshots(msg.tuners))
	return m, nil
}

func (m Model) handleScanStarted(msg scanStartedMsg) (tea.Model, tea.Cmd) {
	// Answers for a scan orphaned by a polling pause, or superseded by a
	// later start, are dropped
	if !m.mirror.AwaitingScanStart(msg.seq) {
		logging.Debug("Dropping stale scan start", zap.String("scan_id", msg.scanID))
		return m, nil
	}

	if msg.err != nil {
		logging.Error("Scan start failed", zap.Error(msg.err))
		m.mirror.FailScan(true)
		m.refreshScanTable()
		return m, m.showToast("Scan failed to start: "+tunerapi.ShortMessage(msg.err), render.ToneDanger)
	}

	m.mirror.ScanStarted(msg.scanID)
	logging.LogAction("scan_started", zap.String("scan_id", msg.scanID))
	return m, m.sched.Start(poll.ScanStatus)
}

func (m Model) handleScanStatus(msg scanStatusMsg) (tea.Model, tea.Cmd) {
	if !m.sched.Current(poll.ScanStatus, msg.token) {
		return m, nil
	}

	if msg.err != nil {
		m.sched.Stop(poll.ScanStatus)
		m.pollFailed(poll.ScanStatus, msg.err)
		m.mirror.FailScan(false)
		return m, nil
	}
	if msg.status == nil {
		return m, nil
	}

	if msg.status.Results != nil {
		m.mirror.ApplyScanResults(state.RowsFromAPI(msg.status.Results))
	}
	if msg.status.Finished {
		m.sched.Stop(poll.ScanStatus)
		m.mirror.FinishScan()
		logging.LogAction("scan_finished", zap.Int("channels", len(m.mirror.LastScanResults)))
	}
	m.refreshScanTable()
	return m, nil
}

func (m Model) handleTune(msg tuneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.mirror.Generation {
		logging.Debug("Dropping stale tune result", zap.Int("channel", msg.channel))
		return m, nil
	}

	if msg.err != nil {
		if tunerapi.IsEmpty(msg.err) {
			return m, m.showToast("No subchannels found", render.ToneWarning)
		}
		logging.Error("Tune failed", zap.Int("channel", msg.channel), zap.Error(msg.err))
		return m, m.showToast("Tune failed: "+tunerapi.ShortMessage(msg.err), render.ToneDanger)
	}

	m.mirror.SetPrograms(msg.gen, msg.programs)
	m.programCursor = 0
	focusCmd := m.setFocus(focusPrograms)
	toastCmd := m.showToast(
		fmt.Sprintf("Tuned CH %d: %d program(s)", msg.channel, len(msg.programs)),
		render.ToneSuccess,
	)
	return m, tea.Batch(focusCmd, toastCmd)
}

func (m Model) handleProgramInfo(msg programInfoMsg) (tea.Model, tea.Cmd) {
	if !m.sched.Current(poll.ProgramInfo, msg.token) {
		return m, nil
	}

	if msg.err != nil || msg.info == nil {
		if msg.err != nil {
			m.pollFailed(poll.ProgramInfo, msg.err)
		}
		if cur, ok := m.mirror.CaptureProgram(); ok && cur == msg.req {
			m.mirror.Program = nil
			m.opts.Recorder.ObserveProgram(nil)
		}
		return m, nil
	}

	info := state.ProgramInfo{BitrateBps: msg.info.Bitrate, MaxBitrateBps: msg.info.MaxBitrate}
	if m.mirror.ApplyProgramInfo(msg.req, info) {
		m.opts.Recorder.ObserveProgram(&info)
	}
	return m, nil
}

func (m Model) handleClearLocks(msg clearLocksMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		logging.Error("Clear locks failed", zap.Error(msg.err))
		text := "Failed to clear tuner locks"
		if tunerapi.IsNetwork(msg.err) {
			text = "Error clearing tuner locks"
		}
		return m, m.showToast(text, render.ToneDanger)
	}

	released := 0
	if msg.result != nil {
		released = len(msg.result.Results)
	}
	logging.LogAction("locks_cleared", zap.Int("released", released))

	toastCmd := m.showToast("All tuner locks cleared", render.ToneSuccess)
	if !m.mirror.PollingEnabled {
		return m, toastCmd
	}
	return m, tea.Batch(toastCmd, m.fetchTunersCmd(fetchImmediate, 0, m.mirror.Generation))
}
