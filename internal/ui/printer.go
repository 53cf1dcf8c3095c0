package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Printer writes command output. When Plain is set, boxes and colour are
// skipped and tables come out tab separated, which suits pipes.
type Printer struct {
	out   io.Writer
	width int
	Plain bool
}

// NewPrinter creates a printer for out. Plain mode is chosen when stdout
// is not a terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, width: GetTerminalWidth(), Plain: !IsTerminal()}
}

// SetWidth overrides the detected width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the render width
func (p *Printer) Width() int {
	return p.width
}

// PrintHeader prints the command banner
func (p *Printer) PrintHeader(title, command string, params ...Detail) {
	if p.Plain {
		return
	}
	fmt.Fprintln(p.out, RenderHeader(title, command, params, p.width))
	fmt.Fprintln(p.out)
}

// PrintResult prints a result box
func (p *Printer) PrintResult(r *Result) {
	if p.Plain {
		p.printPlainResult(r)
		return
	}
	fmt.Fprintln(p.out, r.SetWidth(p.width).Render())
}

func (p *Printer) printPlainResult(r *Result) {
	marker := SuccessMarker
	switch r.Type {
	case ResultFailure:
		marker = FailureMarker
	case ResultWarning:
		marker = WarningMarker
	}
	fmt.Fprintf(p.out, "%s %s\n", marker, r.Title)
	for _, d := range r.Details {
		fmt.Fprintf(p.out, "%s: %s\n", d.Key, d.Value)
	}
	if r.Error != nil {
		fmt.Fprintf(p.out, "Error: %v\n", r.Error)
	}
}

// PrintSuccess prints a success box with details
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.PrintResult(NewSuccessResult(title, details...))
}

// PrintError prints a failure box
func (p *Printer) PrintError(title string, err error, troubleshooting ...string) {
	p.PrintResult(NewFailureResult(title, err, troubleshooting))
}

// PrintWarning prints a warning box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.PrintResult(NewWarningResult(title, details...))
}

// PrintTable prints rows under headers
func (p *Printer) PrintTable(headers []string, rows [][]string) {
	fmt.Fprintln(p.out, p.RenderTable(headers, rows))
}

// RenderTable renders rows under headers
func (p *Printer) RenderTable(headers []string, rows [][]string) string {
	if p.Plain {
		lines := make([]string, 0, len(rows)+1)
		lines = append(lines, strings.Join(headers, "\t"))
		for _, r := range rows {
			lines = append(lines, strings.Join(r, "\t"))
		}
		return strings.Join(lines, "\n")
	}

	cell := fg(TextColor).Padding(0, 1)
	head := TableHeaderStyle.Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(fg(MutedColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		})
	return t.Render()
}

// Println writes a plain line
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}
