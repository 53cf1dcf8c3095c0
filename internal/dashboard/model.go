// Package dashboard is the interactive tuner dashboard: a Bubble Tea
// program that mirrors the backend's tuner state, drives the poll streams
// and dispatches operator commands.
//
// Everything the dashboard knows lives in a state.Mirror that only Update
// touches. Backend calls run as tea.Cmds and come back as messages tagged
// with the poll token or selection generation they were issued under;
// Update drops any that are no longer current.
package dashboard

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/muurk/tunerdash/internal/poll"
	"github.com/muurk/tunerdash/internal/render"
	"github.com/muurk/tunerdash/internal/state"
	"github.com/muurk/tunerdash/internal/tunerapi"
)

// API is the backend surface the dashboard calls. *tunerapi.Client
// implements it.
type API interface {
	Status(ctx context.Context) (*tunerapi.Status, error)
	Tuners(ctx context.Context) ([]tunerapi.Tuner, error)
	StartScan(ctx context.Context, tuner int) (string, error)
	ScanStatus(ctx context.Context, scanID string) (*tunerapi.ScanStatus, error)
	Tune(ctx context.Context, tuner, channel int) ([]tunerapi.Program, error)
	ProgramInfo(ctx context.Context, tuner, program int) (*tunerapi.ProgramInfo, error)
	ClearLocks(ctx context.Context) (*tunerapi.ClearLocksResult, error)
}

// Recorder receives what the dashboard observes. *metrics.Metrics
// implements it.
type Recorder interface {
	ObserveTuners(tuners []state.TunerSnapshot)
	ObserveProgram(info *state.ProgramInfo)
	PollFailed(stream string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTuners([]state.TunerSnapshot) {}
func (nopRecorder) ObserveProgram(*state.ProgramInfo)   {}
func (nopRecorder) PollFailed(string)                   {}

// Options tunes the dashboard. Zero fields take defaults.
type Options struct {
	Periods        poll.Periods
	ChannelMin     int
	ChannelMax     int
	ToastDuration  time.Duration
	ChartPoints    int
	RequestTimeout time.Duration

	// Clipboard receives exported scan results
	Clipboard func(text string) error

	// Recorder is optional
	Recorder Recorder

	// Now stamps scan starts and chart samples
	Now func() time.Time
}

// Defaults for zero Options fields
const (
	DefaultToastDuration  = 3 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.ChannelMin == 0 {
		o.ChannelMin = tunerapi.MinChannel
	}
	if o.ChannelMax == 0 {
		o.ChannelMax = tunerapi.MaxChannel
	}
	if o.ToastDuration <= 0 {
		o.ToastDuration = DefaultToastDuration
	}
	if o.ChartPoints <= 0 {
		o.ChartPoints = state.DefaultChartPoints
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.Clipboard == nil {
		o.Clipboard = clipboard.WriteAll
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// focus is the panel receiving navigation keys
type focus int

const (
	focusTuners focus = iota
	focusTune
	focusPrograms
	focusScan
	numFocus
)

// toast is a transient notice shown above the footer
type toast struct {
	id   int
	text string
	tone render.Tone
}

// Model is the dashboard's Bubble Tea model
type Model struct {
	api    API
	opts   Options
	mirror *state.Mirror
	sched  *poll.Scheduler

	// UI components
	keys      keyMap
	help      help.Model
	spinner   spinner.Model
	input     textinput.Model
	scanTable table.Model

	// UI state
	focus         focus
	tunerCursor   int
	programCursor int
	toasts        []toast
	nextToastID   int
	showHelp      bool

	Width  int
	Height int
}

// New creates the dashboard model
func New(api API, opts Options) Model {
	opts = opts.withDefaults()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(render.PrimaryColor)

	ti := textinput.New()
	ti.Placeholder = "channel"
	ti.CharLimit = 3
	ti.Width = 8
	ti.Prompt = "CH "

	return Model{
		api:       api,
		opts:      opts,
		mirror:    state.NewMirror(opts.ChartPoints),
		sched:     poll.NewScheduler(opts.Periods),
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   s,
		input:     ti,
		scanTable: render.NewScanTable().WithTargetWidth(defaultWidth/2 - 6),
	}
}

// Mirror exposes the dashboard state, read-only by convention
func (m Model) Mirror() *state.Mirror {
	return m.mirror
}

// Init fetches status and tuners once and starts the always-on streams
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchStatusCmd(),
		m.fetchTunersCmd(fetchImmediate, 0, m.mirror.Generation),
		m.sched.Start(poll.TunerList),
		m.sched.Start(poll.ChartSample),
	)
}

// Update is the dashboard's single event loop
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.scanTable = m.scanTable.WithTargetWidth(m.rightWidth() - 4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case poll.TickMsg:
		return m.handleTick(msg)

	case statusMsg:
		return m.handleStatus(msg)

	case tunersMsg:
		return m.handleTuners(msg)

	case chartSampleMsg:
		return m.handleChartSample(msg)

	case scanStartedMsg:
		return m.handleScanStarted(msg)

	case scanStatusMsg:
		return m.handleScanStatus(msg)

	case tuneMsg:
		return m.handleTune(msg)

	case programInfoMsg:
		return m.handleProgramInfo(msg)

	case clearLocksMsg:
		return m.handleClearLocks(msg)

	case toastExpiredMsg:
		m.dismissToast(msg.id)
		return m, nil

	case spinner.TickMsg:
		// The spinner stops by dropping its tick once no scan is running
		if !m.mirror.ScanInProgress {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// showToast queues a notice and the timer that dismisses it
func (m *Model) showToast(text string, tone render.Tone) tea.Cmd {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{id: id, text: text, tone: tone})
	return tea.Tick(m.opts.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) dismissToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

// refreshScanTable rebuilds the table rows from the mirror, keeping the
// highlighted row where it was
func (m *Model) refreshScanTable() {
	highlighted := m.scanTable.GetHighlightedRowIndex()
	rows := render.ScanTableRows(render.ScanRows(m.mirror.LastScanResults, m.mirror.Expanded))
	m.scanTable = m.scanTable.WithRows(rows)
	if highlighted >= len(rows) {
		highlighted = len(rows) - 1
	}
	if highlighted < 0 {
		highlighted = 0
	}
	m.scanTable = m.scanTable.WithHighlightedRow(highlighted)
}
