package tunerapi

// Status is the device connectivity summary returned by GET api/status.
// A disconnected device is reported with HTTP 503 and Connected=false.
type Status struct {
	Connected  bool    `json:"connected"`
	DeviceID   *string `json:"device_id"`
	DeviceIP   *string `json:"device_ip"`
	TunerCount *int    `json:"tuner_count"`
}

// Tuner is one entry of GET api/tuners
type Tuner struct {
	Index int `json:"index"`

	// Locked reports whether a client holds the tuner
	Locked bool `json:"locked"`

	// Lock is the lock owner label, "none" when unlocked
	Lock string `json:"lock"`

	// Channel is the physical RF channel, nil when idle
	Channel *int `json:"channel"`

	// Signal metrics, 0-100. Nil when the backend did not report them.
	SS  *int `json:"ss"`
	SNQ *int `json:"snq"`
	SEQ *int `json:"seq"`
}

// ScanStart is the response to POST api/scan/start
type ScanStart struct {
	ScanID string `json:"scan_id"`
}

// ScanStatus is the response to GET api/scan/status/{id}. Results is the
// full set found so far; each response supersedes the previous one.
type ScanStatus struct {
	Results  []ScanChannel `json:"results"`
	Finished bool          `json:"finished"`
}

// ScanChannel is one physical channel found by a scan
type ScanChannel struct {
	Physical    *int         `json:"physical"`
	SS          *int         `json:"ss"`
	SNQ         *int         `json:"snq"`
	Subchannels []Subchannel `json:"subchannels"`
}

// Subchannel is a virtual channel carried on a physical channel
type Subchannel struct {
	Num  string `json:"num"`  // e.g. "8.1"
	Name string `json:"name"` // e.g. "WAGM-HD"
}

// Program is a tunable subchannel returned by POST api/tune
type Program struct {
	ID   int    `json:"id"`
	Num  string `json:"num"`
	Name string `json:"name"`
}

// Label returns the "num | name" form shown in program pickers
func (p Program) Label() string {
	return p.Num + " | " + p.Name
}

// TuneResult is the response to POST api/tune
type TuneResult struct {
	Subchannels []Program `json:"subchannels"`
}

// ProgramInfo is the response to POST api/program_info, in bits per second
type ProgramInfo struct {
	Bitrate    *float64 `json:"bitrate"`
	MaxBitrate *float64 `json:"max_bitrate"`
}

// ClearLocksResult is the optional body of POST api/clear_locks
type ClearLocksResult struct {
	Results []LockRelease `json:"results"`
}

// LockRelease is the device's raw answer for one tuner's unlock
type LockRelease struct {
	Tuner int    `json:"tuner"`
	Raw   string `json:"raw"`
}

type scanStartRequest struct {
	Tuner int `json:"tuner"`
}

type tuneRequest struct {
	Tuner   int `json:"tuner"`
	Channel int `json:"channel"`
}

type programInfoRequest struct {
	Tuner   int `json:"tuner"`
	Program int `json:"program"`
}
