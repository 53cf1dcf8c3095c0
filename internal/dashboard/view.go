package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tunerdash/internal/render"
)

// Fallback size before the first WindowSizeMsg
const (
	defaultWidth  = 120
	defaultHeight = 40
)

func (m Model) width() int {
	if m.Width <= 0 {
		return defaultWidth
	}
	return m.Width
}

func (m Model) height() int {
	if m.Height <= 0 {
		return defaultHeight
	}
	return m.Height
}

func (m Model) leftWidth() int {
	return (m.width() - 4) / 2
}

func (m Model) rightWidth() int {
	return m.width() - 4 - m.leftWidth()
}

// View renders the dashboard
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelpModal()
	}

	header := render.BuildHeaderContent(m.renderStatus())

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTuners(),
		m.renderSignal(),
		m.renderTune(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		render.Panel("Signal History", render.RenderChart(m.mirror, m.rightWidth()-4), m.rightWidth(), false),
		m.renderScan(),
	)
	content := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	footer := m.help.View(m.keys)
	if len(m.toasts) > 0 {
		footer = lipgloss.JoinVertical(lipgloss.Left, m.renderToasts(), footer)
	}

	return render.RenderApplicationContainer(header, content, footer, m.width(), m.height())
}

func (m Model) renderStatus() string {
	s := m.mirror.Status
	parts := []string{render.StatusBadge(s).Render()}
	if s.DeviceID != "" {
		parts = append(parts, "ID "+s.DeviceID)
	}
	if s.DeviceIP != "" {
		parts = append(parts, s.DeviceIP)
	}
	if s.TunerCount > 0 {
		parts = append(parts, fmt.Sprintf("%d tuners", s.TunerCount))
	}

	polling := render.Badge{Text: "Polling", Tone: render.ToneSuccess}
	if !m.mirror.PollingEnabled {
		polling = render.Badge{Text: "Paused", Tone: render.ToneWarning}
	}
	parts = append(parts, polling.Render())
	return strings.Join(parts, "  ")
}

func (m Model) renderTuners() string {
	rows := render.TunerRows(m.mirror)
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		lines = append(lines, r.Render(m.focus == focusTuners && i == m.tunerCursor))
	}
	return render.Panel("Tuners", strings.Join(lines, "\n"), m.leftWidth(), m.focus == focusTuners)
}

func (m Model) renderSignal() string {
	title := "Signal"
	if m.mirror.SelectedTuner != nil {
		title = fmt.Sprintf("Signal - Tuner %d", *m.mirror.SelectedTuner)
	}
	inner := m.leftWidth() - 4
	content := lipgloss.JoinVertical(lipgloss.Left,
		render.SelectedBars(m.mirror).Render(inner),
		"TS   "+render.TSBar(m.mirror.Program).Render(inner-26),
	)
	return render.Panel(title, content, m.leftWidth(), false)
}

func (m Model) renderTune() string {
	lines := []string{m.input.View(), ""}

	if m.mirror.TunedChannel != nil && len(m.mirror.Programs) == 0 {
		lines = append(lines, render.SubtleStyle.Render("no programs"))
	}
	if len(m.mirror.Programs) > 0 {
		options := append([]string{"(none)"}, programLabels(m)...)
		for i, opt := range options {
			marker := "  "
			if m.focus == focusPrograms && i == m.programCursor {
				marker = "> "
			}
			if i > 0 && m.mirror.TunedProgramID != nil && m.mirror.Programs[i-1].ID == *m.mirror.TunedProgramID {
				opt = render.SelectedRowStyle.Render(opt + " *")
			}
			lines = append(lines, marker+opt)
		}
	}

	focused := m.focus == focusTune || m.focus == focusPrograms
	return render.Panel("Tune", strings.Join(lines, "\n"), m.leftWidth(), focused)
}

func programLabels(m Model) []string {
	labels := make([]string, 0, len(m.mirror.Programs))
	for _, p := range m.mirror.Programs {
		labels = append(labels, p.Label())
	}
	return labels
}

func (m Model) renderScan() string {
	title := "Channel Scan"
	if m.mirror.ScanInProgress {
		title += " " + m.spinner.View() + " scanning"
	}

	lines := []string{m.scanTable.View(), render.SubtleStyle.Render(render.LastRunCaption(m.mirror))}
	if !m.mirror.PollingEnabled {
		lines = append(lines, render.SubtleStyle.Render("Polling paused, scanning disabled"))
	}
	return render.Panel(title, strings.Join(lines, "\n"), m.rightWidth(), m.focus == focusScan)
}

func (m Model) renderToasts() string {
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.tone.Color()).Bold(true).Render("● "+t.text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelpModal() string {
	h := m.help
	h.ShowAll = true

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(render.PrimaryColor).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			render.SectionTitleStyle.Render("Keyboard Shortcuts"),
			"",
			h.View(m.keys),
			"",
			render.SubtleStyle.Render("Press ? or esc to close"),
		))

	return render.RenderModal(box, m.width(), m.height())
}
