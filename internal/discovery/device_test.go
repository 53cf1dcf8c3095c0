package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muurk/tunerdash/internal/config"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		ID:       "1052ABCD",
		Hostname: "HDHR-1052ABCD.local.",
		IP:       "192.168.1.50",
		Port:     80,
	}

	expected := "HDHomeRun 1052ABCD (HDHR-1052ABCD.local.) at 192.168.1.50:80"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_BaseURL(t *testing.T) {
	device := &Device{IP: "10.0.0.5", Port: 5004}
	if got := device.BaseURL(); got != "http://10.0.0.5:5004" {
		t.Errorf("Device.BaseURL() = %v", got)
	}
}

func TestDevice_Metadata(t *testing.T) {
	device := &Device{Metadata: map[string]string{"model": "HDHR5-4US", "tunercount": "4"}}

	if device.Model() != "HDHR5-4US" {
		t.Errorf("Model() = %v", device.Model())
	}
	if device.TunerCount() != 4 {
		t.Errorf("TunerCount() = %v, want 4", device.TunerCount())
	}

	empty := &Device{}
	if empty.GetMetadata("model") != "" || empty.TunerCount() != 0 {
		t.Error("a nil metadata map should read as empty")
	}

	bad := &Device{Metadata: map[string]string{"tunercount": "four"}}
	if bad.TunerCount() != 0 {
		t.Errorf("TunerCount() = %v, want 0 for a malformed value", bad.TunerCount())
	}
}

func TestCacheReusesWithinTTL(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	scans := 0
	cache := &Cache{
		TTL: time.Minute,
		Now: func() time.Time { return now },
		Scan: func(context.Context) ([]*Device, error) {
			scans++
			return []*Device{{ID: "1052ABCD"}}, nil
		},
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.Devices(context.Background()); err != nil {
			t.Fatalf("Devices() error = %v", err)
		}
	}
	if scans != 1 {
		t.Errorf("scans = %d, want 1 within the TTL", scans)
	}

	now = now.Add(time.Minute)
	if _, err := cache.Devices(context.Background()); err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if scans != 2 {
		t.Errorf("scans = %d, want 2 after the TTL", scans)
	}

	cache.Invalidate()
	_, _ = cache.Devices(context.Background())
	if scans != 3 {
		t.Errorf("scans = %d, want 3 after Invalidate", scans)
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	fail := true
	scans := 0
	cache := &Cache{
		TTL: time.Minute,
		Now: time.Now,
		Scan: func(context.Context) ([]*Device, error) {
			scans++
			if fail {
				return nil, errors.New("no multicast")
			}
			return nil, nil
		},
	}

	if _, err := cache.Devices(context.Background()); err == nil {
		t.Fatal("Devices() should return the scan error")
	}
	fail = false
	if _, err := cache.Devices(context.Background()); err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if scans != 2 {
		t.Errorf("scans = %d, want 2", scans)
	}
}

func TestRecord(t *testing.T) {
	reg := config.NewRegistry()
	Record(reg, []*Device{{
		ID:       "1052ABCD",
		IP:       "192.168.1.50",
		Metadata: map[string]string{"model": "HDHR5-4US", "tunercount": "4"},
	}})

	device := reg.GetDevice("1052ABCD")
	if device == nil {
		t.Fatal("Record() should add the device")
	}
	if device.LastIP != "192.168.1.50" || device.Model != "HDHR5-4US" || device.TunerCount != 4 {
		t.Errorf("device = %+v", device)
	}
	if device.LastSeen.IsZero() {
		t.Error("LastSeen should be set")
	}
}
