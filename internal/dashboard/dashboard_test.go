package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/tunerdash/internal/poll"
	"github.com/muurk/tunerdash/internal/render"
	"github.com/muurk/tunerdash/internal/state"
	"github.com/muurk/tunerdash/internal/tunerapi"
)

func intp(v int) *int           { return &v }
func f64p(v float64) *float64   { return &v }
func strp(v string) *string     { return &v }
func fixedNow() time.Time       { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

// fakeAPI answers every call from canned values
type fakeAPI struct {
	status      *tunerapi.Status
	tuners      []tunerapi.Tuner
	scanID      string
	scanErr     error
	programs    []tunerapi.Program
	tuneErr     error
	programInfo map[int]*tunerapi.ProgramInfo
	clearErr    error
}

func (f *fakeAPI) Status(context.Context) (*tunerapi.Status, error) {
	return f.status, nil
}

func (f *fakeAPI) Tuners(context.Context) ([]tunerapi.Tuner, error) {
	return f.tuners, nil
}

func (f *fakeAPI) StartScan(context.Context, int) (string, error) {
	return f.scanID, f.scanErr
}

func (f *fakeAPI) ScanStatus(context.Context, string) (*tunerapi.ScanStatus, error) {
	return &tunerapi.ScanStatus{}, nil
}

func (f *fakeAPI) Tune(context.Context, int, int) ([]tunerapi.Program, error) {
	return f.programs, f.tuneErr
}

func (f *fakeAPI) ProgramInfo(_ context.Context, _ int, program int) (*tunerapi.ProgramInfo, error) {
	return f.programInfo[program], nil
}

func (f *fakeAPI) ClearLocks(context.Context) (*tunerapi.ClearLocksResult, error) {
	return &tunerapi.ClearLocksResult{}, f.clearErr
}

type clipboardSpy struct {
	calls int
	text  string
}

func (c *clipboardSpy) write(text string) error {
	c.calls++
	c.text = text
	return nil
}

func newTestModel(api API, clip *clipboardSpy) Model {
	if clip == nil {
		clip = &clipboardSpy{}
	}
	return New(api, Options{Clipboard: clip.write, Now: fixedNow})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func lockedTuner(index, ss int) tunerapi.Tuner {
	return tunerapi.Tuner{Index: index, Locked: true, Lock: "192.168.1.20", Channel: intp(8), SS: intp(ss), SNQ: intp(90), SEQ: intp(100)}
}

func lastToast(m Model) string {
	if len(m.toasts) == 0 {
		return ""
	}
	return m.toasts[len(m.toasts)-1].text
}

func TestInitStartsAlwaysOnStreams(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	require.NotNil(t, m.Init())

	assert.True(t, m.sched.Running(poll.TunerList))
	assert.True(t, m.sched.Running(poll.ChartSample))
	assert.False(t, m.sched.Running(poll.ScanStatus))
	assert.False(t, m.sched.Running(poll.ProgramInfo))
}

func TestToastsDismissAfterThreeSeconds(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	assert.Equal(t, 3*time.Second, m.opts.ToastDuration)
}

func TestTunerPollFailureResetsRows(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.Init()
	token := m.sched.Token(poll.TunerList)

	m, _ = update(t, m, tunersMsg{source: fetchPoll, token: token, tuners: []tunerapi.Tuner{lockedTuner(0, 80)}})
	require.True(t, m.mirror.TunersKnown)

	m, _ = update(t, m, tunersMsg{source: fetchPoll, token: token, err: errors.New("boom")})
	assert.False(t, m.mirror.TunersKnown)
	for _, row := range render.TunerRows(m.mirror) {
		assert.Equal(t, render.Placeholder, row.SS)
	}
}

func TestStaleTunerPollIgnored(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.Init()
	stale := m.sched.Token(poll.TunerList)

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, tunersMsg{source: fetchPoll, token: stale, tuners: []tunerapi.Tuner{lockedTuner(0, 80)}})
	assert.False(t, m.mirror.TunersKnown, "a result from before the restart must not apply")
}

func TestTunerSwitchEmptiesChart(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.Init()

	m, _ = update(t, m, enterKey) // select tuner 0
	require.NotNil(t, m.mirror.SelectedTuner)

	token := m.sched.Token(poll.ChartSample)
	gen := m.mirror.Generation
	m, _ = update(t, m, chartSampleMsg{token: token, gen: gen, at: fixedNow(), tuners: []tunerapi.Tuner{lockedTuner(0, 80)}})
	require.Equal(t, 1, m.mirror.Chart.SS.Len())

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, enterKey) // select tuner 1
	assert.Equal(t, 1, *m.mirror.SelectedTuner)
	assert.True(t, m.mirror.Chart.Empty())

	// A sample fetched under the old selection is dropped
	m, _ = update(t, m, chartSampleMsg{token: token, gen: gen, at: fixedNow(), tuners: []tunerapi.Tuner{lockedTuner(0, 80)}})
	assert.True(t, m.mirror.Chart.Empty())
}

func TestChartNeverSamplesDuringScan(t *testing.T) {
	m := newTestModel(&fakeAPI{scanID: "scan-1"}, nil)
	m.Init()
	m, _ = update(t, m, enterKey)

	m, cmd := update(t, m, runes("s"))
	require.NotNil(t, cmd)
	require.True(t, m.mirror.ScanInProgress)

	m, _ = update(t, m, chartSampleMsg{
		token:  m.sched.Token(poll.ChartSample),
		gen:    m.mirror.Generation,
		at:     fixedNow(),
		tuners: []tunerapi.Tuner{lockedTuner(0, 80)},
	})
	assert.True(t, m.mirror.Chart.Empty())
}

func TestScanLifecycle(t *testing.T) {
	api := &fakeAPI{scanID: "scan-1"}
	m := newTestModel(api, nil)
	m.Init()
	m, _ = update(t, m, enterKey)

	m, _ = update(t, m, runes("s"))
	assert.Equal(t, fixedNow(), m.mirror.LastRun)

	m, _ = update(t, m, m.startScanCmd(0, m.mirror.ScanSeq)())
	require.Equal(t, "scan-1", m.mirror.ScanID)
	require.True(t, m.sched.Running(poll.ScanStatus))
	token := m.sched.Token(poll.ScanStatus)

	m, _ = update(t, m, scanStatusMsg{token: token, status: &tunerapi.ScanStatus{
		Results: []tunerapi.ScanChannel{
			{Physical: intp(8), SS: intp(84), SNQ: intp(100), Subchannels: []tunerapi.Subchannel{{Num: "8.1", Name: "WAGM-HD"}}},
		},
	}})
	assert.True(t, m.mirror.ScanInProgress)
	assert.Len(t, m.mirror.LastScanResults, 1)

	m, _ = update(t, m, scanStatusMsg{token: token, status: &tunerapi.ScanStatus{
		Results: []tunerapi.ScanChannel{
			{Physical: intp(8), SS: intp(84), SNQ: intp(100), Subchannels: []tunerapi.Subchannel{{Num: "8.1", Name: "WAGM-HD"}}},
			{Physical: intp(14), SS: intp(40), SNQ: intp(55)},
		},
		Finished: true,
	}})

	assert.False(t, m.mirror.ScanInProgress)
	assert.False(t, m.sched.Running(poll.ScanStatus))
	assert.Len(t, m.mirror.LastScanResults, 2)
	assert.Len(t, m.scanTable.GetVisibleRows(), 2)

	// Channel 14 has no subchannels, so no detail row
	rows := render.ScanRows(m.mirror.LastScanResults, m.mirror.Expanded)
	assert.Len(t, rows, 3)

	// The spinner stops once its tick is dropped
	_, cmd := update(t, m, m.spinner.Tick())
	assert.Nil(t, cmd)
}

func TestScanStartFailureClearsTable(t *testing.T) {
	api := &fakeAPI{scanErr: &tunerapi.Error{Kind: tunerapi.KindProtocol, Op: "start scan", Message: "HTTP 500"}}
	m := newTestModel(api, nil)
	m.Init()
	m, _ = update(t, m, enterKey)
	m.mirror.ApplyScanResults([]state.ScanResultRow{{PhysicalChannel: intp(8)}})

	m, _ = update(t, m, runes("s"))
	m, cmd := update(t, m, m.startScanCmd(0, m.mirror.ScanSeq)())

	assert.NotNil(t, cmd)
	assert.False(t, m.mirror.ScanInProgress)
	assert.Empty(t, m.mirror.LastScanResults)
	assert.Contains(t, lastToast(m), "Scan failed to start")
}

func TestScanRequiresTunerAndPolling(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.Init()

	m, _ = update(t, m, runes("s"))
	assert.False(t, m.mirror.ScanInProgress)
	assert.Equal(t, "Select a tuner to scan", lastToast(m))

	m, _ = update(t, m, enterKey)
	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, runes("s"))
	assert.False(t, m.mirror.ScanInProgress)
	assert.Equal(t, "Resume polling to scan", lastToast(m))
}

func TestPausingPollingOrphansScan(t *testing.T) {
	m := newTestModel(&fakeAPI{scanID: "scan-1"}, nil)
	m.Init()
	m, _ = update(t, m, enterKey)
	m, _ = update(t, m, runes("s"))
	m, _ = update(t, m, m.startScanCmd(0, m.mirror.ScanSeq)())
	token := m.sched.Token(poll.ScanStatus)

	m, _ = update(t, m, runes("p"))
	assert.False(t, m.mirror.PollingEnabled)
	assert.False(t, m.mirror.ScanInProgress)
	assert.True(t, m.mirror.ScanOrphaned)
	assert.False(t, m.sched.Running(poll.TunerList))
	assert.False(t, m.sched.Running(poll.ChartSample))
	assert.Contains(t, render.LastRunCaption(m.mirror), "scan status unknown")

	// In-flight scan status is refused
	m, _ = update(t, m, scanStatusMsg{token: token, status: &tunerapi.ScanStatus{Finished: true,
		Results: []tunerapi.ScanChannel{{Physical: intp(8)}}}})
	assert.Empty(t, m.mirror.LastScanResults)

	m, cmd := update(t, m, runes("p"))
	assert.NotNil(t, cmd)
	assert.True(t, m.mirror.PollingEnabled)
	assert.True(t, m.sched.Running(poll.TunerList))
	assert.True(t, m.sched.Running(poll.ChartSample))
	assert.False(t, m.sched.Running(poll.ScanStatus), "scan tracking is not resumed")
}

func TestRescanAfterPauseIgnoresAbandonedStart(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.Init()
	m, _ = update(t, m, enterKey)

	m, _ = update(t, m, runes("s"))
	first := m.mirror.ScanSeq

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, runes("s"))
	second := m.mirror.ScanSeq
	require.NotEqual(t, first, second)
	require.True(t, m.mirror.ScanInProgress)

	// The abandoned scan answers late
	m, cmd := update(t, m, scanStartedMsg{seq: first, scanID: "scan-A"})
	assert.Nil(t, cmd)
	assert.Empty(t, m.mirror.ScanID)
	assert.False(t, m.sched.Running(poll.ScanStatus))

	m, cmd = update(t, m, scanStartedMsg{seq: second, scanID: "scan-B"})
	assert.NotNil(t, cmd)
	assert.Equal(t, "scan-B", m.mirror.ScanID)
	assert.True(t, m.sched.Running(poll.ScanStatus))
}

func TestOrphanedScanStartFailureKeepsResults(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.Init()
	m, _ = update(t, m, enterKey)
	m.mirror.ApplyScanResults([]state.ScanResultRow{{PhysicalChannel: intp(8)}})

	m, _ = update(t, m, runes("s"))
	seq := m.mirror.ScanSeq
	m, _ = update(t, m, runes("p"))
	toasts := len(m.toasts)

	m, _ = update(t, m, scanStartedMsg{seq: seq, err: errors.New("connection refused")})
	assert.Len(t, m.mirror.LastScanResults, 1)
	assert.Len(t, m.toasts, toasts)
}

func TestTuneProgramShowsBitrate(t *testing.T) {
	api := &fakeAPI{
		tuners:   []tunerapi.Tuner{{Index: 0}, lockedTuner(1, 84)},
		programs: []tunerapi.Program{{ID: 1, Num: "8.1", Name: "WAGM-HD"}},
		programInfo: map[int]*tunerapi.ProgramInfo{
			1: {Bitrate: f64p(19392000), MaxBitrate: f64p(19392658)},
		},
	}
	m := newTestModel(api, nil)
	m.Init()

	// Select tuner 1
	m, _ = update(t, m, runes("j"))
	m, cmd := update(t, m, enterKey)
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.True(t, m.mirror.TunersKnown)

	// Tab to the channel input and tune 8
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusTune, m.focus)
	m, _ = update(t, m, runes("8"))
	m, _ = update(t, m, runes("x")) // not a digit
	assert.Equal(t, "8", m.input.Value())

	m, cmd = update(t, m, enterKey)
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Len(t, m.mirror.Programs, 1)
	assert.Equal(t, focusPrograms, m.focus)
	assert.Equal(t, 8, *m.mirror.TunedChannel)

	// Pick program 1
	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, enterKey)
	require.True(t, m.sched.Running(poll.ProgramInfo))
	req, ok := m.mirror.CaptureProgram()
	require.True(t, ok)
	assert.Equal(t, state.ProgramRequest{Tuner: 1, Program: 1, Generation: m.mirror.Generation}, req)

	m, _ = update(t, m, m.programInfoCmd(m.sched.Token(poll.ProgramInfo), req)())
	require.NotNil(t, m.mirror.Program)

	bar := render.TSBar(m.mirror.Program)
	assert.Equal(t, 100, bar.Percent)
	assert.Equal(t, "19.39/19.39 mbps", bar.Label)
	assert.Contains(t, m.View(), "19.39/19.39 mbps")
	assert.Contains(t, m.View(), "CH 8 - Prog 8.1")
}

func TestTuneValidatesChannel(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.Init()
	m, _ = update(t, m, enterKey)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("99"))

	gen := m.mirror.Generation
	m, _ = update(t, m, enterKey)
	assert.Equal(t, gen, m.mirror.Generation)
	assert.Equal(t, "Channel must be 2-51", lastToast(m))
}

func TestTuneWithoutSubchannels(t *testing.T) {
	api := &fakeAPI{tuneErr: &tunerapi.Error{Kind: tunerapi.KindEmpty, Op: "tune", Message: "No subchannels found"}}
	m := newTestModel(api, nil)
	m.Init()
	m, _ = update(t, m, enterKey)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("8"))
	m, cmd := update(t, m, enterKey)
	m, _ = update(t, m, cmd())

	assert.Empty(t, m.mirror.Programs)
	assert.Equal(t, "No subchannels found", lastToast(m))
}

func TestStaleTuneResultIgnored(t *testing.T) {
	api := &fakeAPI{programs: []tunerapi.Program{{ID: 3, Num: "14.1", Name: "WXYZ"}}}
	m := newTestModel(api, nil)
	m.Init()
	m, _ = update(t, m, enterKey)

	gen := m.mirror.Generation
	m, _ = update(t, m, tuneMsg{gen: gen - 1, channel: 14, programs: api.programs})
	assert.Empty(t, m.mirror.Programs)
}

func TestStaleProgramInfoIgnored(t *testing.T) {
	api := &fakeAPI{programs: []tunerapi.Program{
		{ID: 1, Num: "8.1", Name: "WAGM-HD"},
		{ID: 2, Num: "8.2", Name: "WAGM-SD"},
	}}
	m := newTestModel(api, nil)
	m.Init()
	m, _ = update(t, m, enterKey)
	gen := m.mirror.BeginTune(8)
	m, _ = update(t, m, tuneMsg{gen: gen, channel: 8, programs: api.programs})

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, enterKey) // program 1
	first, _ := m.mirror.CaptureProgram()
	firstToken := m.sched.Token(poll.ProgramInfo)

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, enterKey) // program 2

	m, _ = update(t, m, programInfoMsg{token: firstToken, req: first, info: &tunerapi.ProgramInfo{Bitrate: f64p(1), MaxBitrate: f64p(2)}})
	assert.Nil(t, m.mirror.Program)

	// Even under a live token, a request for another program is refused
	m, _ = update(t, m, programInfoMsg{token: m.sched.Token(poll.ProgramInfo), req: first, info: &tunerapi.ProgramInfo{Bitrate: f64p(1), MaxBitrate: f64p(2)}})
	assert.Nil(t, m.mirror.Program)
}

func TestClearingProgramStopsStream(t *testing.T) {
	api := &fakeAPI{programs: []tunerapi.Program{{ID: 1, Num: "8.1", Name: "WAGM-HD"}}}
	m := newTestModel(api, nil)
	m.Init()
	m, _ = update(t, m, enterKey)
	gen := m.mirror.BeginTune(8)
	m, _ = update(t, m, tuneMsg{gen: gen, channel: 8, programs: api.programs})

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, enterKey)
	require.True(t, m.sched.Running(poll.ProgramInfo))

	m, _ = update(t, m, runes("k"))
	m, _ = update(t, m, enterKey)
	assert.False(t, m.sched.Running(poll.ProgramInfo))
	assert.Nil(t, m.mirror.TunedProgramID)
}

func TestExportWithoutResults(t *testing.T) {
	clip := &clipboardSpy{}
	m := newTestModel(&fakeAPI{}, clip)
	m, cmd := update(t, m, runes("e"))

	assert.NotNil(t, cmd)
	assert.Zero(t, clip.calls)
	assert.Equal(t, "No scan results to export", lastToast(m))
}

func TestExportCopiesJSON(t *testing.T) {
	clip := &clipboardSpy{}
	m := newTestModel(&fakeAPI{}, clip)
	m.mirror.ApplyScanResults([]state.ScanResultRow{
		{PhysicalChannel: intp(8), SignalStrength: intp(84), SignalNoiseQuality: intp(100),
			Subchannels: []state.Subchannel{{Number: "8.1", Name: "WAGM-HD"}}},
	})

	m, _ = update(t, m, runes("e"))
	assert.Equal(t, 1, clip.calls)
	assert.Contains(t, clip.text, `"physical_channel": 8`)
	assert.Equal(t, "Copied 1 channel(s) to clipboard", lastToast(m))
}

func TestClearLocksToasts(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(api, nil)

	m, cmd := update(t, m, runes("c"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "All tuner locks cleared", lastToast(m))

	m, _ = update(t, m, clearLocksMsg{err: &tunerapi.Error{Kind: tunerapi.KindProtocol, Op: "clear locks"}})
	assert.Equal(t, "Failed to clear tuner locks", lastToast(m))

	m, _ = update(t, m, clearLocksMsg{err: &tunerapi.Error{Kind: tunerapi.KindNetwork, Op: "clear locks"}})
	assert.Equal(t, "Error clearing tuner locks", lastToast(m))
}

func TestToastExpires(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, _ = update(t, m, runes("e"))
	require.Len(t, m.toasts, 1)

	m, _ = update(t, m, toastExpiredMsg{id: m.toasts[0].id})
	assert.Empty(t, m.toasts)
}

func TestScanRowExpansion(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m.mirror.ApplyScanResults([]state.ScanResultRow{
		{PhysicalChannel: intp(8), Subchannels: []state.Subchannel{{Number: "8.1", Name: "WAGM-HD"}}},
	})
	m.refreshScanTable()

	for m.focus != focusScan {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	m, _ = update(t, m, enterKey)
	assert.True(t, m.mirror.Expanded(m.mirror.LastScanResults[0]))
	assert.Contains(t, m.View(), "8.1 WAGM-HD")
}

func TestStatusHeader(t *testing.T) {
	api := &fakeAPI{status: &tunerapi.Status{Connected: true, DeviceID: strp("1234ABCD"), DeviceIP: strp("192.168.1.50"), TunerCount: intp(4)}}
	m := newTestModel(api, nil)
	m, _ = update(t, m, m.fetchStatusCmd()())

	assert.True(t, m.mirror.Status.Connected)
	view := m.View()
	assert.Contains(t, view, "Connected")
	assert.Contains(t, view, "1234ABCD")
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, _ = update(t, m, runes("?"))
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, runes("?"))
	assert.False(t, m.showHelp)
}
