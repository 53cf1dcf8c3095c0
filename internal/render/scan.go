package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/muurk/tunerdash/internal/signal"
	"github.com/muurk/tunerdash/internal/state"
)

// Column keys for the scan table
const (
	colKeyChannel  = "channel"
	colKeySS       = "ss"
	colKeySNQ      = "snq"
	colKeyPrograms = "programs"
	colKeyRowIndex = "row"
)

// ScanRowKind tells primary rows from subchannel detail rows
type ScanRowKind int

const (
	PrimaryRow ScanRowKind = iota
	DetailRow
)

// ScanRow is one line of the scan results table
type ScanRow struct {
	Kind ScanRowKind

	// Index is the position of the source result in LastScanResults
	Index int

	Channel string
	SS      Badge
	SNQ     Badge

	// Subchannels and Expanded are set on detail rows only
	Subchannels []state.Subchannel
	Expanded    bool
}

// ScanRows derives the table rows: one primary row per result and, only
// for results with subchannels, a detail row after it.
func ScanRows(results []state.ScanResultRow, expanded func(state.ScanResultRow) bool) []ScanRow {
	rows := make([]ScanRow, 0, len(results)*2)
	for i, r := range results {
		ch := "--"
		if r.PhysicalChannel != nil {
			ch = fmt.Sprintf("%d", *r.PhysicalChannel)
		}
		ss := r.Strength()
		snq := r.NoiseQuality()
		rows = append(rows, ScanRow{
			Kind:    PrimaryRow,
			Index:   i,
			Channel: ch,
			SS:      Badge{Text: fmt.Sprintf("%d%%", ss), Tone: ToneForTier(signal.ClassifySignalStrength(ss))},
			SNQ:     Badge{Text: fmt.Sprintf("%d%%", snq), Tone: ToneForTier(signal.ClassifySignalToNoise(snq))},
		})
		if len(r.Subchannels) > 0 {
			rows = append(rows, ScanRow{
				Kind:        DetailRow,
				Index:       i,
				Channel:     ch,
				Subchannels: r.Subchannels,
				Expanded:    expanded != nil && expanded(r),
			})
		}
	}
	return rows
}

// NewScanTable creates the empty scan results table
func NewScanTable() table.Model {
	columns := []table.Column{
		table.NewColumn(colKeyChannel, "CH", 6),
		table.NewColumn(colKeySS, "SS", 8),
		table.NewColumn(colKeySNQ, "SNQ", 8),
		table.NewFlexColumn(colKeyPrograms, "Programs", 1),
	}

	return table.New(columns).
		WithBaseStyle(lipgloss.NewStyle().Padding(0, 1)).
		BorderRounded().
		HeaderStyle(TableHeaderStyle).
		HighlightStyle(TableHighlightStyle).
		Focused(false).
		WithPageSize(12).
		WithFooterVisibility(false)
}

// ScanTableRows converts scan rows to table rows. Each primary row shows
// its subchannel count, or the subchannel list itself when expanded;
// collapsed detail rows take no space.
func ScanTableRows(rows []ScanRow) []table.Row {
	detail := make(map[int]ScanRow)
	for _, r := range rows {
		if r.Kind == DetailRow {
			detail[r.Index] = r
		}
	}

	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if r.Kind != PrimaryRow {
			continue
		}
		programs := ""
		if d, ok := detail[r.Index]; ok {
			if d.Expanded {
				programs = "▾ " + formatSubchannels(d.Subchannels)
			} else {
				programs = fmt.Sprintf("▸ %d program(s)", len(d.Subchannels))
			}
		}
		out = append(out, table.NewRow(table.RowData{
			colKeyChannel:  r.Channel,
			colKeySS:       table.NewStyledCell(r.SS.Text, lipgloss.NewStyle().Foreground(r.SS.Tone.Color())),
			colKeySNQ:      table.NewStyledCell(r.SNQ.Text, lipgloss.NewStyle().Foreground(r.SNQ.Tone.Color())),
			colKeyPrograms: programs,
			colKeyRowIndex: r.Index,
		}))
	}
	return out
}

// HighlightedResult returns the LastScanResults index of the table's
// highlighted row
func HighlightedResult(t table.Model) (int, bool) {
	row := t.HighlightedRow()
	if row.Data == nil {
		return 0, false
	}
	idx, ok := row.Data[colKeyRowIndex].(int)
	return idx, ok
}

func formatSubchannels(subs []state.Subchannel) string {
	parts := make([]string, 0, len(subs))
	for _, s := range subs {
		parts = append(parts, s.Number+" "+s.Name)
	}
	return strings.Join(parts, ", ")
}

// LastRunCaption is the "Last Run" line under the scan table
func LastRunCaption(m *state.Mirror) string {
	if m.LastRun.IsZero() {
		return "Last Run: never"
	}
	caption := "Last Run: " + m.LastRun.Format("2006-01-02 15:04")
	if m.ScanOrphaned {
		caption += " (scan status unknown, polling paused)"
	}
	return caption
}
