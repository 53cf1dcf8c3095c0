package version

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		commit      string
		settings    map[string]string
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "ldflags win",
			version:     "v0.3.0",
			commit:      "abc1234",
			settings:    map[string]string{"vcs.revision": "ffffffffffff"},
			wantVersion: "v0.3.0",
			wantCommit:  "abc1234",
		},
		{
			name:        "vcs fallback",
			settings:    map[string]string{"vcs.revision": "0123456789abcdef", "vcs.time": "2025-06-01T20:30:00Z", "vcs.modified": "true"},
			wantVersion: "dev-20250601",
			wantCommit:  "0123456-dirty",
		},
		{
			name:        "module version",
			settings:    map[string]string{"main.version": "v1.0.1"},
			wantVersion: "v1.0.1",
			wantCommit:  "unknown",
		},
		{
			name:        "nothing known",
			settings:    map[string]string{},
			wantVersion: "dev",
			wantCommit:  "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.settings)
			if got.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if got.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", got.Commit, tt.wantCommit)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	if !strings.HasPrefix(UserAgent(), "tunerdash/") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
