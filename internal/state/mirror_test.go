package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/tunerdash/internal/tunerapi"
)

func intp(v int) *int { return &v }

func lockedTuner(index, ss, snq, seq int) TunerSnapshot {
	return TunerSnapshot{
		Index:              index,
		Locked:             true,
		SignalStrength:     intp(ss),
		SignalNoiseQuality: intp(snq),
		SymbolErrorQuality: intp(seq),
	}
}

func TestSnapshotFromAPI(t *testing.T) {
	snap := SnapshotFromAPI(tunerapi.Tuner{Index: 1, Locked: true, Lock: "192.168.1.50", Channel: intp(8), SS: intp(84)})
	require.NotNil(t, snap.LockOwner)
	assert.Equal(t, "192.168.1.50", *snap.LockOwner)
	assert.Equal(t, 8, *snap.Channel)
	assert.Nil(t, snap.SignalNoiseQuality)

	idle := SnapshotFromAPI(tunerapi.Tuner{Index: 0, Lock: "none"})
	assert.Nil(t, idle.LockOwner)
}

func TestSelectTuner_ResetsChartAndProgram(t *testing.T) {
	m := NewMirror(10)
	m.SelectTuner(0)
	m.BeginTune(8)
	m.SelectProgram(1, "8.1")
	m.Chart.Append(time.Now(), lockedTuner(0, 80, 95, 100))
	require.False(t, m.Chart.Empty())
	gen := m.Generation

	newGen := m.SelectTuner(2)

	assert.Greater(t, newGen, gen)
	assert.Equal(t, 2, *m.SelectedTuner)
	assert.Nil(t, m.TunedChannel)
	assert.Nil(t, m.TunedProgramID)
	assert.Empty(t, m.TunedProgramLabel)
	assert.Nil(t, m.Program)
	assert.Equal(t, 0, m.Chart.SS.Len())
	assert.Equal(t, 0, m.Chart.SNQ.Len())
	assert.Equal(t, 0, m.Chart.SEQ.Len())
}

func TestBeginTune_ClearsProgramAndChart(t *testing.T) {
	m := NewMirror(10)
	m.SelectTuner(1)
	m.SelectProgram(3, "8.3")
	m.Chart.Append(time.Now(), lockedTuner(1, 80, 95, 100))

	gen := m.BeginTune(8)

	assert.Equal(t, m.Generation, gen)
	assert.Equal(t, 8, *m.TunedChannel)
	assert.Nil(t, m.TunedProgramID)
	assert.True(t, m.Chart.Empty())
}

func TestSetPrograms_StaleGeneration(t *testing.T) {
	m := NewMirror(10)
	m.SelectTuner(1)
	gen := m.BeginTune(8)
	m.SelectTuner(2)

	ok := m.SetPrograms(gen, []tunerapi.Program{{ID: 1, Num: "8.1", Name: "WAGM-HD"}})
	assert.False(t, ok)
	assert.Empty(t, m.Programs)
}

func TestApplyProgramInfo_Guard(t *testing.T) {
	bitrate := 19392000.0
	m := NewMirror(10)
	m.SelectTuner(1)
	m.BeginTune(8)
	m.SelectProgram(1, "8.1")

	req, ok := m.CaptureProgram()
	require.True(t, ok)
	assert.Equal(t, ProgramRequest{Tuner: 1, Program: 1, Generation: m.Generation}, req)

	t.Run("current", func(t *testing.T) {
		assert.True(t, m.ApplyProgramInfo(req, ProgramInfo{BitrateBps: &bitrate}))
		require.NotNil(t, m.Program)
	})

	t.Run("program switched", func(t *testing.T) {
		m.SelectProgram(2, "8.2")
		other := 1.0
		assert.False(t, m.ApplyProgramInfo(req, ProgramInfo{BitrateBps: &other}))
		assert.Nil(t, m.Program, "selecting a program hides the previous bitrate")
	})

	t.Run("tuner switched", func(t *testing.T) {
		req2, _ := m.CaptureProgram()
		m.SelectTuner(3)
		assert.False(t, m.ApplyProgramInfo(req2, ProgramInfo{BitrateBps: &bitrate}))
		assert.Nil(t, m.Program)
	})
}

func TestApplyProgramInfo_SamePairNewGeneration(t *testing.T) {
	m := NewMirror(10)
	m.SelectTuner(1)
	m.BeginTune(8)
	m.SelectProgram(1, "8.1")
	req, _ := m.CaptureProgram()

	// Re-selecting the same program bumps the generation; the response to
	// the earlier request is still stale.
	m.SelectProgram(1, "8.1")

	bitrate := 5.0
	assert.False(t, m.ApplyProgramInfo(req, ProgramInfo{BitrateBps: &bitrate}))
}

func TestTunersFailed(t *testing.T) {
	bitrate := 1.0
	m := NewMirror(10)
	m.ApplyTuners([]TunerSnapshot{lockedTuner(0, 80, 90, 100)})
	m.Program = &ProgramInfo{BitrateBps: &bitrate}

	m.TunersFailed()

	assert.False(t, m.TunersKnown)
	assert.Empty(t, m.Tuners)
	assert.Nil(t, m.Program)
}

func TestAppendChartSample_Gating(t *testing.T) {
	now := time.Now()
	tuners := []TunerSnapshot{
		lockedTuner(0, 80, 90, 100),
		{Index: 1, Locked: false, SignalStrength: intp(10)},
	}

	tests := []struct {
		name  string
		setup func(m *Mirror) uint64
		want  bool
	}{
		{"locked selected tuner", func(m *Mirror) uint64 { return m.SelectTuner(0) }, true},
		{"no tuner selected", func(m *Mirror) uint64 { return m.Generation }, false},
		{"unlocked tuner", func(m *Mirror) uint64 { return m.SelectTuner(1) }, false},
		{"tuner missing from list", func(m *Mirror) uint64 { return m.SelectTuner(3) }, false},
		{"scan in progress", func(m *Mirror) uint64 {
			gen := m.SelectTuner(0)
			m.BeginScan(now)
			return gen
		}, false},
		{"polling disabled", func(m *Mirror) uint64 {
			gen := m.SelectTuner(0)
			m.PollingEnabled = false
			return gen
		}, false},
		{"stale generation", func(m *Mirror) uint64 {
			gen := m.SelectTuner(0)
			m.SelectTuner(0)
			return gen
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMirror(10)
			gen := tt.setup(m)
			got := m.AppendChartSample(gen, now, tuners)
			assert.Equal(t, tt.want, got)
			if !tt.want {
				assert.True(t, m.Chart.Empty())
			}
		})
	}
}

func TestChart_CapAndNilMetrics(t *testing.T) {
	c := NewChart(3)
	for i := 0; i < 5; i++ {
		c.Append(time.Now(), lockedTuner(0, i, i, i))
	}
	assert.Equal(t, []int{2, 3, 4}, c.SS.Values())

	c.Append(time.Now(), TunerSnapshot{Index: 0, Locked: true, SignalStrength: intp(9)})
	assert.Equal(t, []int{3, 4, 9}, c.SS.Values())
	assert.Equal(t, []int{2, 3, 4}, c.SNQ.Values(), "unreported metrics are not plotted")

	last, ok := c.SS.Last()
	require.True(t, ok)
	assert.Equal(t, 9, last.Value)
}

func TestScanLifecycle(t *testing.T) {
	start := time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC)
	m := NewMirror(10)

	m.BeginScan(start)
	assert.True(t, m.ScanInProgress)
	assert.Equal(t, start, m.LastRun)

	rows := []ScanResultRow{
		{PhysicalChannel: intp(8), SignalStrength: intp(84), Subchannels: []Subchannel{{"8.1", "WAGM-HD"}}},
		{PhysicalChannel: intp(14)},
	}
	m.ApplyScanResults(rows)
	assert.True(t, m.ToggleExpanded(0))
	assert.False(t, m.ToggleExpanded(1), "row without subchannels has no detail row")
	assert.True(t, m.Expanded(rows[0]))

	m.ApplyScanResults(rows[:1])
	assert.Len(t, m.LastScanResults, 1, "results are replaced, not appended")
	assert.True(t, m.Expanded(m.LastScanResults[0]), "expansion survives a rebuild")

	m.FinishScan()
	assert.False(t, m.ScanInProgress)
	assert.False(t, m.Expanded(m.LastScanResults[0]), "finish collapses detail rows")
}

func TestFailScan(t *testing.T) {
	m := NewMirror(10)
	m.ApplyScanResults([]ScanResultRow{{PhysicalChannel: intp(8)}})
	m.BeginScan(time.Now())

	m.FailScan(false)
	assert.False(t, m.ScanInProgress)
	assert.Len(t, m.LastScanResults, 1)

	m.BeginScan(time.Now())
	m.FailScan(true)
	assert.Empty(t, m.LastScanResults)
}

func TestOrphanScan(t *testing.T) {
	m := NewMirror(10)
	m.BeginScan(time.Now())
	m.ScanStarted("abc")

	m.OrphanScan()

	assert.False(t, m.ScanInProgress)
	assert.True(t, m.ScanOrphaned)
	assert.Empty(t, m.ScanID)
	assert.False(t, m.ChartGate(), "no tuner selected")
}

func TestScanStartSequence(t *testing.T) {
	m := NewMirror(10)
	first := m.BeginScan(time.Now())
	assert.True(t, m.AwaitingScanStart(first))

	m.OrphanScan()
	assert.False(t, m.AwaitingScanStart(first))

	second := m.BeginScan(time.Now())
	assert.NotEqual(t, first, second)
	assert.False(t, m.AwaitingScanStart(first))
	assert.True(t, m.AwaitingScanStart(second))

	m.ScanStarted("scan-B")
	assert.False(t, m.AwaitingScanStart(second), "id already recorded")
}

func TestExportJSON(t *testing.T) {
	_, err := ExportJSON(nil)
	assert.ErrorIs(t, err, ErrNothingToExport)

	data, err := ExportJSON([]ScanResultRow{
		{PhysicalChannel: intp(8), SignalStrength: intp(84), SignalNoiseQuality: intp(100),
			Subchannels: []Subchannel{{Number: "8.1", Name: "WAGM-HD"}}},
		{PhysicalChannel: intp(14)},
	})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, float64(8), decoded[0]["physical_channel"])
	assert.Equal(t, float64(84), decoded[0]["signal_strength"])
	assert.Equal(t, float64(100), decoded[0]["signal_noise_quality"])
	assert.Equal(t, float64(0), decoded[1]["signal_strength"], "absent strength exports as 0")
	assert.Equal(t, []any{}, decoded[1]["subchannels"])

	subs := decoded[0]["subchannels"].([]any)
	assert.Equal(t, map[string]any{"number": "8.1", "name": "WAGM-HD"}, subs[0])
}

func TestConnStatusFromAPI(t *testing.T) {
	id := "1076C3A7"
	cs := ConnStatusFromAPI(&tunerapi.Status{Connected: true, DeviceID: &id, TunerCount: intp(4)})
	assert.True(t, cs.Known)
	assert.Equal(t, "1076C3A7", cs.DeviceID)
	assert.Equal(t, 4, cs.TunerCount)
	assert.Empty(t, cs.DeviceIP)
}
