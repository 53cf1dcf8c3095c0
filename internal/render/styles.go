package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tunerdash/internal/version"
)

// Application branding constants
const (
	AppName = "TUNERDASH"
	RepoURL = "github.com/muurk/tunerdash"
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red
	InfoColor      = lipgloss.Color("#3FA7D6") // Blue

	TextColor   = lipgloss.Color("#FFFFFF")
	SubtleColor = lipgloss.Color("#626262")
	BorderColor = lipgloss.Color("#7D56F4")
)

// Common styles
var (
	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	FocusedPanelStyle = PanelStyle.
				BorderForeground(PrimaryColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	TableHighlightStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(lipgloss.Color("236"))
)

// Panel wraps content in a titled panel, highlighted when focused
func Panel(title, content string, width int, focused bool) string {
	style := PanelStyle
	if focused {
		style = FocusedPanelStyle
	}
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, SectionTitleStyle.Render(title), content))
}

// BuildHeaderContent creates the header line: app name and version on the
// left, the device status badges on the right.
func BuildHeaderContent(status string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + version.Version)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", status)
}

// RenderApplicationContainer wraps a full screen: header, content and a
// footer pinned to the bottom, inside a bordered frame that fills the
// terminal.
func RenderApplicationContainer(header, content, footer string, terminalWidth, terminalHeight int) string {
	if terminalWidth < 20 || terminalHeight < 5 {
		return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Foreground(SubtleColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	styledHeader := headerStyle.Render(header)
	styledFooter := footerStyle.Render(footer)

	// Content fills whatever the header and footer leave
	contentHeight := terminalHeight - 2 - lipgloss.Height(styledHeader) - lipgloss.Height(styledFooter)
	if contentHeight < 0 {
		contentHeight = 0
	}
	styledContent := lipgloss.NewStyle().
		Width(terminalWidth - 4).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, styledHeader, styledContent, styledFooter)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// RenderModal centers content over the screen
func RenderModal(content string, terminalWidth, terminalHeight int) string {
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}
