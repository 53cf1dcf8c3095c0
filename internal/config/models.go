package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/muurk/tunerdash/internal/poll"
	"github.com/muurk/tunerdash/internal/tunerapi"
)

// Registry represents the entire user configuration file.
// It stores dashboard preferences and the receivers seen on the network.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by device id
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents what is known about one network tuner.
// This is keyed by the device id (e.g. "1052ABCD") in the Registry.
type Device struct {
	Nickname   string    `yaml:"nickname,omitempty"`    // User-friendly name
	LastIP     string    `yaml:"last_ip,omitempty"`     // Last known IP address
	LastSeen   time.Time `yaml:"last_seen,omitempty"`   // Last discovery time
	Model      string    `yaml:"model,omitempty"`       // Model reported in TXT records
	TunerCount int       `yaml:"tuner_count,omitempty"` // Tuners reported by the device
}

// Preferences represents application-wide user preferences.
// Zero values fall back to the defaults below.
type Preferences struct {
	BackendURL    string        `yaml:"backend_url"`
	Timeout       time.Duration `yaml:"timeout"`
	Poll          *PollPrefs    `yaml:"poll,omitempty"`
	ChannelMin    int           `yaml:"channel_min"`
	ChannelMax    int           `yaml:"channel_max"`
	ToastDuration time.Duration `yaml:"toast_duration"`
	ChartPoints   int           `yaml:"chart_points"`

	MetricsAddr string `yaml:"metrics_addr,omitempty"` // Empty disables the metrics endpoint
	LogLevel    string `yaml:"log_level,omitempty"`    // Empty disables logging
	LogFile     string `yaml:"log_file,omitempty"`     // Rotated log file, stderr if empty

	AutoDiscover    bool `yaml:"auto_discover"`    // Record receivers found by discover
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS browse timeout in seconds
}

// PollPrefs holds the period of each background stream
type PollPrefs struct {
	TunerList   time.Duration `yaml:"tuner_list"`
	ChartSample time.Duration `yaml:"chart_sample"`
	ScanStatus  time.Duration `yaml:"scan_status"`
	ProgramInfo time.Duration `yaml:"program_info"`
}

// Default preference values
const (
	DefaultTimeout         = 10 * time.Second
	DefaultToastDuration   = 3 * time.Second
	DefaultChartPoints     = 300
	DefaultDiscoverTimeout = 5
)

func defaultPreferences() *Preferences {
	periods := poll.DefaultPeriods()
	return &Preferences{
		BackendURL: tunerapi.DefaultBaseURL,
		Timeout:    DefaultTimeout,
		Poll: &PollPrefs{
			TunerList:   periods.TunerList,
			ChartSample: periods.ChartSample,
			ScanStatus:  periods.ScanStatus,
			ProgramInfo: periods.ProgramInfo,
		},
		ChannelMin:      tunerapi.MinChannel,
		ChannelMax:      tunerapi.MaxChannel,
		ToastDuration:   DefaultToastDuration,
		ChartPoints:     DefaultChartPoints,
		AutoDiscover:    true,
		DiscoverTimeout: DefaultDiscoverTimeout,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// PollPeriods converts the poll preferences. Unset periods stay zero and
// take the scheduler's defaults.
func (p *Preferences) PollPeriods() poll.Periods {
	if p.Poll == nil {
		return poll.Periods{}
	}
	return poll.Periods{
		TunerList:   p.Poll.TunerList,
		ChartSample: p.Poll.ChartSample,
		ScanStatus:  p.Poll.ScanStatus,
		ProgramInfo: p.Poll.ProgramInfo,
	}
}

// Validate checks the preferences for values the dashboard cannot use
func (p *Preferences) Validate() error {
	if err := validateBackendURL(p.BackendURL); err != nil {
		return err
	}
	if p.ChannelMin != 0 || p.ChannelMax != 0 {
		if p.ChannelMin < tunerapi.MinChannel || p.ChannelMax > tunerapi.MaxChannel || p.ChannelMin > p.ChannelMax {
			return fmt.Errorf("channel range %d-%d must lie within %d-%d",
				p.ChannelMin, p.ChannelMax, tunerapi.MinChannel, tunerapi.MaxChannel)
		}
	}
	if p.ChartPoints < 0 {
		return fmt.Errorf("chart_points must not be negative, got %d", p.ChartPoints)
	}
	if p.Timeout < 0 || p.ToastDuration < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func validateBackendURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend_url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("backend_url %q has no host", raw)
	}
	return nil
}

// SetBackendURL validates and stores the backend base URL
func (r *Registry) SetBackendURL(raw string) error {
	if err := validateBackendURL(raw); err != nil {
		return err
	}
	r.ensurePreferences().BackendURL = raw
	return nil
}

func (r *Registry) ensurePreferences() *Preferences {
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	return r.Preferences
}

// GetDevice retrieves device metadata by device id.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(id string) *Device {
	return r.Devices[id]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(id string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[id]; exists {
		return device
	}

	device := &Device{}
	r.Devices[id] = device
	return device
}

// UpdateDeviceLastSeen updates the last seen timestamp and IP for a device.
func (r *Registry) UpdateDeviceLastSeen(id, ip string) {
	device := r.EnsureDevice(id)
	device.LastSeen = time.Now()
	device.LastIP = ip
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(id, nickname string) {
	device := r.EnsureDevice(id)
	device.Nickname = nickname
}
