package dashboard

import (
	"time"

	"github.com/muurk/tunerdash/internal/state"
	"github.com/muurk/tunerdash/internal/tunerapi"
)

// Message types for async operations. Each carries the token or
// generation it was issued under so Update can drop stale results.

type statusMsg struct {
	status *tunerapi.Status
	err    error
}

// tunerFetch says why a tuner list was fetched
type tunerFetch int

const (
	fetchPoll      tunerFetch = iota // TunerList tick
	fetchImmediate                   // startup or polling resumed
	fetchSeed                        // tuner just selected
)

type tunersMsg struct {
	source tunerFetch
	token  uint64
	gen    uint64
	tuners []tunerapi.Tuner
	err    error
}

type chartSampleMsg struct {
	token  uint64
	gen    uint64
	at     time.Time
	tuners []tunerapi.Tuner
	err    error
}

type scanStartedMsg struct {
	seq    uint64
	scanID string
	err    error
}

type scanStatusMsg struct {
	token  uint64
	status *tunerapi.ScanStatus
	err    error
}

type tuneMsg struct {
	gen      uint64
	channel  int
	programs []tunerapi.Program
	err      error
}

type programInfoMsg struct {
	token uint64
	req   state.ProgramRequest
	info  *tunerapi.ProgramInfo
	err   error
}

type clearLocksMsg struct {
	result *tunerapi.ClearLocksResult
	err    error
}

type toastExpiredMsg struct {
	id int
}
