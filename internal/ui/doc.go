// Package ui renders the output of the one-shot tunerdash commands.
//
// The interactive dashboard lives in package dashboard; the components here
// follow a "run once and exit" pattern instead. They print compellingly
// styled output but need no interaction beyond an optional confirmation.
//
// # Components
//
//   - Header: command banner showing the operation name and parameters
//   - Result: success, failure and warning boxes with ordered details
//   - ScanProgress: progress bar for a channel scan run from the shell
//   - Printer: writes the above, and tables, to an io.Writer
//
// When stdout is not a terminal, the Printer drops boxes and colour and
// prints tables tab separated so the output can be piped.
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Tuners", "tunerdash tuners",
//	    ui.Detail{Key: "Backend", Value: baseURL})
//	p.PrintTable([]string{"Tuner", "Channel"}, rows)
//
// # Logging Integration
//
// Logging is controlled by the TUNERDASH_LOG_LEVEL environment variable or
// the --log-level flag. When unset, zap logging is silent so that the
// curated output is displayed cleanly.
package ui
