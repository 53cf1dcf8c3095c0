// Package signal classifies tuner signal metrics into display tiers.
//
// A receiver reports three metrics per tuner, each on a 0-100 scale:
//   - Signal strength (ss)
//   - Signal-to-noise quality (snq)
//   - Symbol error quality (seq)
//
// Each metric has its own breakpoints. Signal strength is deliberately
// inverted at the top of the scale: a reading of 97 or more means the
// front end is overdriven and is reported as Critical. Symbol error
// quality is effectively ternary (100, 99, anything else).
//
// All functions are pure. Nil inputs classify as Unknown so callers can
// pass through fields the backend left out without checking them first.
package signal
