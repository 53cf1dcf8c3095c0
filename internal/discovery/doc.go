// Package discovery finds HDHomeRun tuner receivers on the local network
// over multicast DNS.
//
// Receivers advertise "_http._tcp" services under hostnames of the form
// HDHR-XXXXXXXX.local, where XXXXXXXX is the device id. Units that
// advertise a generic "hdhomerun" name carry the id in a deviceid TXT
// record instead.
//
//	devices, err := discovery.NewScanner().ScanForDevices(ctx)
//
// Cache wraps a scanner so that repeated lookups within a minute reuse the
// last result, and Record copies what was found into the config registry.
//
// Discovery only sees receivers on the same segment, and needs UDP 5353
// open for multicast.
package discovery
