// Package config stores tunerdash preferences and known receivers in a
// single YAML file.
//
// Preferences cover the backend URL, per-stream poll periods, the scan
// channel range, logging and the metrics listener. The Devices map records
// every receiver discovery has seen, keyed by device id, along with an
// optional nickname.
//
// The file lives at $XDG_CONFIG_HOME/tunerdash/config.yaml (falling back to
// ~/.config) on Linux, ~/.config/tunerdash/config.yaml on macOS and
// %LOCALAPPDATA%\tunerdash\config.yaml on Windows. SetConfigPath points it
// elsewhere.
//
//	reg, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//	reg.UpdateDeviceLastSeen("1052ABCD", "192.168.1.50")
//	return reg.Save()
//
// LoadRegistry reads the file once per process. Save replaces it through a
// temporary file and rename.
package config
