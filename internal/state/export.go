package state

import (
	"encoding/json"
	"errors"
)

// ErrNothingToExport is returned when there are no scan results
var ErrNothingToExport = errors.New("no scan results to export")

// ExportedChannel is the labelled form of a scan row
type ExportedChannel struct {
	PhysicalChannel    *int         `json:"physical_channel"`
	SignalStrength     int          `json:"signal_strength"`
	SignalNoiseQuality int          `json:"signal_noise_quality"`
	Subchannels        []Subchannel `json:"subchannels"`
}

// ExportRows converts rows to their labelled form
func ExportRows(rows []ScanResultRow) []ExportedChannel {
	out := make([]ExportedChannel, 0, len(rows))
	for _, r := range rows {
		subs := r.Subchannels
		if subs == nil {
			subs = []Subchannel{}
		}
		out = append(out, ExportedChannel{
			PhysicalChannel:    r.PhysicalChannel,
			SignalStrength:     r.Strength(),
			SignalNoiseQuality: r.NoiseQuality(),
			Subchannels:        subs,
		})
	}
	return out
}

// ExportJSON serialises rows as indented JSON
func ExportJSON(rows []ScanResultRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}
	return json.MarshalIndent(ExportRows(rows), "", "  ")
}
