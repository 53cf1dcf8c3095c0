package state

import (
	"strings"

	"github.com/muurk/tunerdash/internal/tunerapi"
)

// TunerSnapshot is one tuner as last reported. Snapshots are replaced
// wholesale on every poll; Index is the only identity.
type TunerSnapshot struct {
	Index     int
	Locked    bool
	LockOwner *string
	Channel   *int

	SignalStrength     *int
	SignalNoiseQuality *int
	SymbolErrorQuality *int
}

// SnapshotFromAPI converts a backend tuner entry
func SnapshotFromAPI(t tunerapi.Tuner) TunerSnapshot {
	s := TunerSnapshot{
		Index:              t.Index,
		Locked:             t.Locked,
		Channel:            t.Channel,
		SignalStrength:     t.SS,
		SignalNoiseQuality: t.SNQ,
		SymbolErrorQuality: t.SEQ,
	}
	if t.Locked && t.Lock != "" && !strings.EqualFold(t.Lock, "none") {
		owner := t.Lock
		s.LockOwner = &owner
	}
	return s
}

// Subchannel is a virtual channel listed under a scan row
type Subchannel struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// ScanResultRow is one physical channel found by a scan
type ScanResultRow struct {
	PhysicalChannel    *int
	SignalStrength     *int
	SignalNoiseQuality *int
	Subchannels        []Subchannel
}

// Strength returns the signal strength, 0 when absent
func (r ScanResultRow) Strength() int {
	if r.SignalStrength == nil {
		return 0
	}
	return *r.SignalStrength
}

// NoiseQuality returns the signal-to-noise quality, 0 when absent
func (r ScanResultRow) NoiseQuality() int {
	if r.SignalNoiseQuality == nil {
		return 0
	}
	return *r.SignalNoiseQuality
}

// RowsFromAPI converts scan status results in order
func RowsFromAPI(results []tunerapi.ScanChannel) []ScanResultRow {
	rows := make([]ScanResultRow, 0, len(results))
	for _, r := range results {
		row := ScanResultRow{
			PhysicalChannel:    r.Physical,
			SignalStrength:     r.SS,
			SignalNoiseQuality: r.SNQ,
		}
		for _, sc := range r.Subchannels {
			row.Subchannels = append(row.Subchannels, Subchannel{Number: sc.Num, Name: sc.Name})
		}
		rows = append(rows, row)
	}
	return rows
}

// ProgramInfo is the bitrate of the tuned program in bits per second
type ProgramInfo struct {
	BitrateBps    *float64
	MaxBitrateBps *float64
}

// Selection is the operator's working context
type Selection struct {
	SelectedTuner     *int
	TunedChannel      *int
	TunedProgramID    *int
	TunedProgramLabel string
	PollingEnabled    bool
	ScanInProgress    bool
	LastScanResults   []ScanResultRow

	// Generation advances on every tuner switch, tune and program
	// selection. Async results issued under an older generation are
	// dropped.
	Generation uint64
}

// ConnStatus is the device connectivity as last reported
type ConnStatus struct {
	Known      bool
	Connected  bool
	DeviceID   string
	DeviceIP   string
	TunerCount int

	// Err is set when the status request itself failed
	Err error
}

// ConnStatusFromAPI converts a status response
func ConnStatusFromAPI(s *tunerapi.Status) ConnStatus {
	cs := ConnStatus{Known: true, Connected: s.Connected}
	if s.DeviceID != nil {
		cs.DeviceID = *s.DeviceID
	}
	if s.DeviceIP != nil {
		cs.DeviceIP = *s.DeviceIP
	}
	if s.TunerCount != nil {
		cs.TunerCount = *s.TunerCount
	}
	return cs
}
