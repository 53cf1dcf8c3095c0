package dashboard

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/tunerdash/internal/state"
)

// Each constructor returns a tea.Cmd that performs one backend call off
// the Update loop and reports back as a message.

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.opts.RequestTimeout)
}

func (m Model) fetchStatusCmd() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		status, err := api.Status(ctx)
		return statusMsg{status: status, err: err}
	}
}

func (m Model) fetchTunersCmd(source tunerFetch, token, gen uint64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		tuners, err := api.Tuners(ctx)
		return tunersMsg{source: source, token: token, gen: gen, tuners: tuners, err: err}
	}
}

func (m Model) chartSampleCmd(token, gen uint64) tea.Cmd {
	api := m.api
	now := m.opts.Now
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		tuners, err := api.Tuners(ctx)
		return chartSampleMsg{token: token, gen: gen, at: now(), tuners: tuners, err: err}
	}
}

func (m Model) startScanCmd(tuner int, seq uint64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		id, err := api.StartScan(ctx, tuner)
		return scanStartedMsg{seq: seq, scanID: id, err: err}
	}
}

func (m Model) scanStatusCmd(token uint64, scanID string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		status, err := api.ScanStatus(ctx, scanID)
		return scanStatusMsg{token: token, status: status, err: err}
	}
}

func (m Model) tuneCmd(gen uint64, tuner, channel int) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		programs, err := api.Tune(ctx, tuner, channel)
		return tuneMsg{gen: gen, channel: channel, programs: programs, err: err}
	}
}

func (m Model) programInfoCmd(token uint64, req state.ProgramRequest) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		info, err := api.ProgramInfo(ctx, req.Tuner, req.Program)
		return programInfoMsg{token: token, req: req, info: info, err: err}
	}
}

func (m Model) clearLocksCmd() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		result, err := api.ClearLocks(ctx)
		return clearLocksMsg{result: result, err: err}
	}
}
