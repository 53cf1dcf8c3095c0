package discovery

import (
	"fmt"
	"strconv"
	"time"
)

// Device is a receiver seen on the network
type Device struct {
	ID       string // eight hex digits, upper case
	Hostname string
	IP       string // IPv4 preferred
	Port     int

	// Metadata holds the TXT records, keys lowercased
	Metadata map[string]string

	DiscoveredAt time.Time
}

func (d *Device) String() string {
	return fmt.Sprintf("HDHomeRun %s (%s) at %s:%d", d.ID, d.Hostname, d.IP, d.Port)
}

// BaseURL is the receiver's HTTP root
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata returns a TXT value, "" when absent
func (d *Device) GetMetadata(key string) string {
	return d.Metadata[key]
}

func (d *Device) Model() string {
	return d.GetMetadata("model")
}

// TunerCount is the advertised tuner count, 0 when missing or malformed
func (d *Device) TunerCount() int {
	if n, err := strconv.Atoi(d.GetMetadata("tunercount")); err == nil && n > 0 {
		return n
	}
	return 0
}
