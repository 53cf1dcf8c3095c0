package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm displays a warning box and asks a yes/no question on out,
// reading the answer from in. Only "y" or "yes" confirm.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string) bool {
	width := GetTerminalWidth()

	lines := []string{
		"",
		WarningTitleStyle.Render("   " + WarningMarker + "  WARNING  ─  " + title),
		"",
	}
	for _, warning := range warnings {
		lines = append(lines, fg(TextColor).Render("   • "+warning))
	}
	lines = append(lines, "")

	fmt.Fprintln(out, ResultBoxStyle(ResultWarning, width).Render(strings.Join(lines, "\n")))
	fmt.Fprintln(out)

	fmt.Fprint(out, WarningTitleStyle.Render("Proceed? [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}

	fmt.Fprintln(out, fg(MutedColor).Render("  Operation cancelled."))
	fmt.Fprintln(out)
	return false
}

// ConfirmClearLocks is the prompt shown before releasing every tuner lock
func ConfirmClearLocks(in io.Reader, out io.Writer) bool {
	return Confirm(in, out, "CLEAR TUNER LOCKS", []string{
		"Every tuner lock on the receiver will be released",
		"Other clients currently streaming will be interrupted",
	})
}
