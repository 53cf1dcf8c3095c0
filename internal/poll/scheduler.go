// Package poll owns the dashboard's recurring timers.
//
// Each stream is either stopped or running and carries a token that is
// bumped every time the stream is started or stopped. Timers are never
// cancelled directly: a TickMsg whose token is no longer current is simply
// refused by Accept, so a stopped stream's last timer dies quietly.
package poll

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Stream identifies one recurring poll
type Stream int

const (
	TunerList Stream = iota
	ChartSample
	ScanStatus
	ProgramInfo

	numStreams
)

// String returns the stream name used in logs and metrics labels
func (s Stream) String() string {
	switch s {
	case TunerList:
		return "tuner_list"
	case ChartSample:
		return "chart_sample"
	case ScanStatus:
		return "scan_status"
	case ProgramInfo:
		return "program_info"
	default:
		return fmt.Sprintf("stream(%d)", int(s))
	}
}

// State is the lifecycle state of a stream
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "STOPPED"
}

// Periods holds the tick interval of every stream
type Periods struct {
	TunerList   time.Duration
	ChartSample time.Duration
	ScanStatus  time.Duration
	ProgramInfo time.Duration
}

// DefaultPeriods returns the standard intervals
func DefaultPeriods() Periods {
	return Periods{
		TunerList:   time.Second,
		ChartSample: time.Second,
		ScanStatus:  3 * time.Second,
		ProgramInfo: time.Second,
	}
}

// Of returns the period of s, falling back to the default when unset
func (p Periods) Of(s Stream) time.Duration {
	var d time.Duration
	switch s {
	case TunerList:
		d = p.TunerList
	case ChartSample:
		d = p.ChartSample
	case ScanStatus:
		d = p.ScanStatus
	case ProgramInfo:
		d = p.ProgramInfo
	}
	if d <= 0 {
		return DefaultPeriods().Of(s)
	}
	return d
}

// TickMsg is delivered when a stream's timer fires
type TickMsg struct {
	Stream Stream
	Token  uint64
	Time   time.Time
}

type streamState struct {
	state State
	token uint64
}

// Scheduler tracks every stream's state and token. It is not safe for
// concurrent use; the Bubble Tea Update loop is its only caller.
type Scheduler struct {
	periods Periods
	streams [numStreams]streamState
	enabled bool
}

// NewScheduler returns a scheduler with every stream stopped and global
// polling enabled.
func NewScheduler(periods Periods) *Scheduler {
	return &Scheduler{periods: periods, enabled: true}
}

// Period returns the tick interval of s
func (sc *Scheduler) Period(s Stream) time.Duration {
	return sc.periods.Of(s)
}

// Start (re)starts s under a fresh token and returns the command that arms
// its first tick. Any tick still in flight for s becomes stale.
func (sc *Scheduler) Start(s Stream) tea.Cmd {
	st := &sc.streams[s]
	st.token++
	st.state = Running
	return sc.tick(s, st.token)
}

// Stop stops s. Ticks and results already in flight are refused later.
func (sc *Scheduler) Stop(s Stream) {
	st := &sc.streams[s]
	st.token++
	st.state = Stopped
}

// State returns the current state of s
func (sc *Scheduler) State(s Stream) State {
	return sc.streams[s].state
}

// Running reports whether s is running
func (sc *Scheduler) Running(s Stream) bool {
	return sc.streams[s].state == Running
}

// Token returns the current token of s
func (sc *Scheduler) Token(s Stream) uint64 {
	return sc.streams[s].token
}

// Current reports whether token is still the live token of a running s.
// Fetch results carry the token of the tick that issued them and are
// checked with Current before they touch state.
func (sc *Scheduler) Current(s Stream, token uint64) bool {
	st := sc.streams[s]
	return st.state == Running && st.token == token
}

// Accept reports whether msg belongs to a running stream's live timer
func (sc *Scheduler) Accept(msg TickMsg) bool {
	if msg.Stream < 0 || msg.Stream >= numStreams {
		return false
	}
	return sc.Current(msg.Stream, msg.Token)
}

// Next re-arms the timer of an accepted tick under the same token
func (sc *Scheduler) Next(msg TickMsg) tea.Cmd {
	return sc.tick(msg.Stream, msg.Token)
}

// Enabled reports the global polling switch
func (sc *Scheduler) Enabled() bool {
	return sc.enabled
}

// Disable turns global polling off, stopping TunerList, ChartSample and
// ScanStatus. ProgramInfo is left alone. It reports whether a scan was
// being tracked; that scan's completion is lost.
func (sc *Scheduler) Disable() (scanLost bool) {
	if !sc.enabled {
		return false
	}
	sc.enabled = false
	scanLost = sc.Running(ScanStatus)
	sc.Stop(TunerList)
	sc.Stop(ChartSample)
	sc.Stop(ScanStatus)
	return scanLost
}

// Enable turns global polling back on, restarting TunerList and
// ChartSample, plus ProgramInfo when a program is tuned. ScanStatus is not
// resumed. The caller issues the immediate tuner fetch.
func (sc *Scheduler) Enable(programTuned bool) tea.Cmd {
	if sc.enabled {
		return nil
	}
	sc.enabled = true
	cmds := []tea.Cmd{sc.Start(TunerList), sc.Start(ChartSample)}
	if programTuned {
		cmds = append(cmds, sc.Start(ProgramInfo))
	}
	return tea.Batch(cmds...)
}

func (sc *Scheduler) tick(s Stream, token uint64) tea.Cmd {
	return tea.Tick(sc.periods.Of(s), func(t time.Time) tea.Msg {
		return TickMsg{Stream: s, Token: token, Time: t}
	})
}
