// Package tunerapi is a client for the tuner backend's HTTP API.
//
// The backend fronts a multi-tuner network TV receiver and exposes a small
// JSON API: device status, the tuner list with signal metrics, channel
// scans, tuning, per-program transport stream bitrate and a force-unlock.
//
// # Usage Example
//
//	client := tunerapi.NewClient("http://192.168.1.20:5070")
//
//	tuners, err := client.Tuners(ctx)
//	if err != nil {
//	    fmt.Println(tunerapi.ShortMessage(err))
//	    return
//	}
//
//	programs, err := client.Tune(ctx, 1, 8)
//	if tunerapi.IsEmpty(err) {
//	    // tuned, but nothing is broadcast on channel 8
//	}
//
// # Errors
//
// Every failure is an *Error with one of three kinds:
//   - KindNetwork: no HTTP response was received
//   - KindProtocol: a non-success status or a body that does not decode
//   - KindEmpty: a well-formed answer with nothing in it
//
// Calls never retry. Callers that poll simply try again on the next tick.
package tunerapi
