package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/tunerdash/internal/logging"
)

const (
	// ServiceType is what receivers advertise over mDNS
	ServiceType   = "_http._tcp"
	ServiceDomain = "local."

	DefaultScanTimeout = 5 * time.Second
	DefaultPort        = 80

	// drainGrace bounds the wait for the resolver to close its channel
	drainGrace = 500 * time.Millisecond
)

// hostPattern captures the device id from names like "HDHR-1052ABCD.local."
var hostPattern = regexp.MustCompile(`(?i)^hdhr-([0-9a-f]{8})\.local\.?$`)

// Scanner browses the local network for receivers
type Scanner struct {
	Timeout time.Duration
}

func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// browse runs one mDNS browse bounded by the scanner timeout and hands each
// receiver to visit. Returning false from visit ends the browse early.
// visit is never called after browse returns.
func (s *Scanner) browse(ctx context.Context, visit func(*Device) bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var (
		mu   sync.Mutex
		done bool
	)
	entries := make(chan *zeroconf.ServiceEntry)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for entry := range entries {
			d := parseServiceEntry(entry)
			if d == nil {
				continue
			}
			mu.Lock()
			if !done && !visit(d) {
				done = true
				cancel()
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	<-ctx.Done()

	select {
	case <-drained:
	case <-time.After(drainGrace):
	}
	mu.Lock()
	done = true
	mu.Unlock()
	return nil
}

// ScanForDevices lists every receiver that answers before the timeout,
// in the order they first answered
func (s *Scanner) ScanForDevices(ctx context.Context) ([]*Device, error) {
	byID := make(map[string]int)
	var devices []*Device

	err := s.browse(ctx, func(d *Device) bool {
		logging.Debug("Receiver found", zap.String("device_id", d.ID), zap.String("ip", d.IP))
		// Receivers with several interfaces answer more than once
		if i, ok := byID[d.ID]; ok {
			devices[i] = d
			return true
		}
		byID[d.ID] = len(devices)
		devices = append(devices, d)
		return true
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// WaitForDevice browses until the receiver with the given id answers
func (s *Scanner) WaitForDevice(ctx context.Context, id string) (*Device, error) {
	var found *Device
	err := s.browse(ctx, func(d *Device) bool {
		if strings.EqualFold(d.ID, id) {
			found = d
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("receiver %s not found within %s", id, s.Timeout)
	}
	return found, nil
}

// parseServiceEntry maps an mDNS answer onto a Device, or nil when the
// answer is not from a receiver or carries no address
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil || entry.HostName == "" {
		return nil
	}
	txt := parseTXT(entry.Text)

	id := ""
	if m := hostPattern.FindStringSubmatch(entry.HostName); m != nil {
		id = m[1]
	} else if strings.Contains(strings.ToLower(entry.HostName+" "+entry.Instance), "hdhomerun") {
		// generic names carry the id in TXT
		id = txt["deviceid"]
	}
	if id == "" {
		return nil
	}

	var ip string
	switch {
	case len(entry.AddrIPv4) > 0:
		ip = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		ip = entry.AddrIPv6[0].String()
	default:
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Device{
		ID:           strings.ToUpper(id),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     txt,
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits key=value records, lowercasing keys. A bare key maps to "".
func parseTXT(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, rec := range records {
		key, value, _ := strings.Cut(rec, "=")
		out[strings.ToLower(key)] = value
	}
	return out
}
