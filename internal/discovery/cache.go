package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/muurk/tunerdash/internal/config"
)

// DefaultCacheTTL is how long a scan result is reused
const DefaultCacheTTL = 60 * time.Second

// ScanFunc performs one discovery scan
type ScanFunc func(ctx context.Context) ([]*Device, error)

// Cache reuses the last scan result for TTL so that repeated lookups do
// not browse the network each time. Failed scans are not cached.
type Cache struct {
	TTL  time.Duration
	Scan ScanFunc
	Now  func() time.Time

	mu      sync.Mutex
	devices []*Device
	at      time.Time
	valid   bool
}

// NewCache wraps a scanner with the default TTL
func NewCache(s *Scanner) *Cache {
	return &Cache{
		TTL:  DefaultCacheTTL,
		Scan: s.ScanForDevices,
		Now:  time.Now,
	}
}

// Devices returns the cached devices, scanning when the cache is empty
// or older than TTL
func (c *Cache) Devices(ctx context.Context) ([]*Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	if c.valid && now.Sub(c.at) < c.TTL {
		return c.devices, nil
	}

	devices, err := c.Scan(ctx)
	if err != nil {
		return nil, err
	}
	c.devices = devices
	c.at = now
	c.valid = true
	return devices, nil
}

// Invalidate forces the next lookup to scan
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// Record stores the devices in the registry as last seen now
func Record(reg *config.Registry, devices []*Device) {
	for _, d := range devices {
		reg.UpdateDeviceLastSeen(d.ID, d.IP)
		entry := reg.EnsureDevice(d.ID)
		if model := d.Model(); model != "" {
			entry.Model = model
		}
		if n := d.TunerCount(); n > 0 {
			entry.TunerCount = n
		}
	}
}
