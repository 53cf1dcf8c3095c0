// Package state is the dashboard's in-memory copy of device state plus the
// operator's selection. It is mutated only from the Bubble Tea Update loop
// and holds nothing beyond the life of the process.
package state

import (
	"time"

	"github.com/muurk/tunerdash/internal/tunerapi"
)

// ProgramRequest captures the context a ProgramInfo fetch was issued
// under, so the response can be checked against the selection that is
// current when it arrives.
type ProgramRequest struct {
	Tuner      int
	Program    int
	Generation uint64
}

// Mirror is the last-known device state and the operator's selection
type Mirror struct {
	Selection

	Status ConnStatus

	// Tuners is the last full tuner list. TunersKnown is false before the
	// first poll and after a failed one; tuner rows then show placeholders.
	Tuners      []TunerSnapshot
	TunersKnown bool

	// Programs are the subchannels found by the last tune
	Programs []tunerapi.Program

	// Program is the TS bitrate of the tuned program; nil hides the TS bar
	Program *ProgramInfo

	Chart Chart

	// ScanID is the scan being tracked, LastRun is when the operator
	// started it. ScanOrphaned is set when tracking was abandoned by a
	// polling pause before the scan reported completion.
	ScanID       string
	LastRun      time.Time
	ScanOrphaned bool

	// ScanSeq identifies the current scan start request
	ScanSeq uint64

	// expanded holds the physical channels whose detail row is open
	expanded map[int]bool
}

// NewMirror returns an empty mirror with polling enabled
func NewMirror(chartPoints int) *Mirror {
	return &Mirror{
		Selection: Selection{PollingEnabled: true},
		Chart:     NewChart(chartPoints),
		expanded:  make(map[int]bool),
	}
}

// SelectTuner makes index the selected tuner. The tuned channel, program
// list, program and chart history are cleared. Returns the new generation.
func (m *Mirror) SelectTuner(index int) uint64 {
	m.SelectedTuner = &index
	m.TunedChannel = nil
	m.Programs = nil
	m.clearProgram()
	m.Chart.Reset()
	m.Generation++
	return m.Generation
}

// BeginTune records a tune request for channel. The previous program
// selection and chart history are cleared. Returns the new generation.
func (m *Mirror) BeginTune(channel int) uint64 {
	m.TunedChannel = &channel
	m.Programs = nil
	m.clearProgram()
	m.Chart.Reset()
	m.Generation++
	return m.Generation
}

// SetPrograms stores a tune's program list if gen is still current
func (m *Mirror) SetPrograms(gen uint64, programs []tunerapi.Program) bool {
	if gen != m.Generation {
		return false
	}
	m.Programs = programs
	return true
}

// SelectProgram makes id the tuned program. Returns the new generation.
func (m *Mirror) SelectProgram(id int, label string) uint64 {
	m.TunedProgramID = &id
	m.TunedProgramLabel = label
	m.Program = nil
	m.Generation++
	return m.Generation
}

// ClearProgram drops the program selection and hides the TS display
func (m *Mirror) ClearProgram() uint64 {
	m.clearProgram()
	m.Generation++
	return m.Generation
}

func (m *Mirror) clearProgram() {
	m.TunedProgramID = nil
	m.TunedProgramLabel = ""
	m.Program = nil
}

// ProgramTuned reports whether a program is selected on a selected tuner
func (m *Mirror) ProgramTuned() bool {
	return m.SelectedTuner != nil && m.TunedProgramID != nil
}

// CaptureProgram returns the context for a ProgramInfo fetch
func (m *Mirror) CaptureProgram() (ProgramRequest, bool) {
	if !m.ProgramTuned() {
		return ProgramRequest{}, false
	}
	return ProgramRequest{
		Tuner:      *m.SelectedTuner,
		Program:    *m.TunedProgramID,
		Generation: m.Generation,
	}, true
}

// ApplyProgramInfo stores info only if req still matches the current
// tuner, program and generation. Stale responses are discarded.
func (m *Mirror) ApplyProgramInfo(req ProgramRequest, info ProgramInfo) bool {
	cur, ok := m.CaptureProgram()
	if !ok || cur != req {
		return false
	}
	m.Program = &info
	return true
}

// ApplyTuners replaces the whole tuner list
func (m *Mirror) ApplyTuners(tuners []TunerSnapshot) {
	m.Tuners = tuners
	m.TunersKnown = true
}

// TunersFailed resets every tuner row to the unknown placeholder and hides
// the TS display.
func (m *Mirror) TunersFailed() {
	m.Tuners = nil
	m.TunersKnown = false
	m.Program = nil
}

// Tuner returns the snapshot with the given index
func (m *Mirror) Tuner(index int) (TunerSnapshot, bool) {
	return findTuner(m.Tuners, index)
}

// SelectedSnapshot returns the selected tuner's snapshot
func (m *Mirror) SelectedSnapshot() (TunerSnapshot, bool) {
	if m.SelectedTuner == nil {
		return TunerSnapshot{}, false
	}
	return m.Tuner(*m.SelectedTuner)
}

func findTuner(tuners []TunerSnapshot, index int) (TunerSnapshot, bool) {
	for _, t := range tuners {
		if t.Index == index {
			return t, true
		}
	}
	return TunerSnapshot{}, false
}

// ChartGate reports whether chart sampling is allowed right now
func (m *Mirror) ChartGate() bool {
	return m.PollingEnabled && !m.ScanInProgress && m.SelectedTuner != nil
}

// AppendChartSample appends the selected tuner's metrics from a freshly
// fetched tuner list. Nothing is appended unless gen is current, the gate
// holds and the selected tuner reports locked.
func (m *Mirror) AppendChartSample(gen uint64, at time.Time, tuners []TunerSnapshot) bool {
	if gen != m.Generation || !m.ChartGate() {
		return false
	}
	snap, ok := findTuner(tuners, *m.SelectedTuner)
	if !ok || !snap.Locked {
		return false
	}
	m.Chart.Append(at, snap)
	return true
}

// BeginScan marks a scan as started at now and returns the sequence number
// its start response must carry
func (m *Mirror) BeginScan(now time.Time) uint64 {
	m.ScanInProgress = true
	m.ScanOrphaned = false
	m.ScanID = ""
	m.LastRun = now
	m.ScanSeq++
	return m.ScanSeq
}

// AwaitingScanStart reports whether a start response issued under seq is
// still wanted
func (m *Mirror) AwaitingScanStart(seq uint64) bool {
	return seq == m.ScanSeq && m.ScanInProgress && m.ScanID == ""
}

// ScanStarted records the backend's id for the running scan
func (m *Mirror) ScanStarted(id string) {
	m.ScanID = id
}

// ApplyScanResults replaces the scan results wholesale
func (m *Mirror) ApplyScanResults(rows []ScanResultRow) {
	m.LastScanResults = rows
}

// FinishScan ends the scan and collapses every detail row
func (m *Mirror) FinishScan() {
	m.ScanInProgress = false
	m.ScanID = ""
	m.CollapseAll()
}

// FailScan ends the scan after an error. clearResults empties the table,
// which is what a failed start does.
func (m *Mirror) FailScan(clearResults bool) {
	m.ScanInProgress = false
	m.ScanID = ""
	if clearResults {
		m.LastScanResults = nil
		m.CollapseAll()
	}
}

// OrphanScan abandons tracking of the running scan. The device may still
// be scanning; the results table keeps whatever was last reported.
func (m *Mirror) OrphanScan() {
	m.ScanInProgress = false
	m.ScanOrphaned = true
	m.ScanID = ""
	m.ScanSeq++
}

// ToggleExpanded opens or closes the detail row of the scan row at i.
// Rows without subchannels have no detail row.
func (m *Mirror) ToggleExpanded(i int) bool {
	if i < 0 || i >= len(m.LastScanResults) {
		return false
	}
	row := m.LastScanResults[i]
	if len(row.Subchannels) == 0 || row.PhysicalChannel == nil {
		return false
	}
	ch := *row.PhysicalChannel
	if m.expanded == nil {
		m.expanded = make(map[int]bool)
	}
	m.expanded[ch] = !m.expanded[ch]
	return true
}

// Expanded reports whether the detail row of a physical channel is open
func (m *Mirror) Expanded(row ScanResultRow) bool {
	if row.PhysicalChannel == nil {
		return false
	}
	return m.expanded[*row.PhysicalChannel]
}

// CollapseAll closes every detail row
func (m *Mirror) CollapseAll() {
	m.expanded = make(map[int]bool)
}
