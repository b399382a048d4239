// ABOUTME: Tests for version constants
// ABOUTME: Checks the identification reported to watchers
package version

import (
	"strings"
	"testing"
)

func TestIdentification(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"version", Version},
		{"product", Product},
		{"manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Fatalf("%s should not be empty", tt.name)
			}
			if len(tt.value) > 64 {
				t.Errorf("%s is unreasonably long: %q", tt.name, tt.value)
			}
		})
	}
}

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("Version %q should have three dot-separated parts", Version)
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			t.Errorf("Version %q has a non-numeric part %q", Version, p)
		}
	}
}
