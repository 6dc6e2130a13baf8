// Package toolchain locates the Maven and JDK executables a project build
// needs, based on user-managed settings. It never spawns anything; all checks
// are filesystem-only so callers can validate synchronously.
package toolchain

import (
	"fmt"
	"strings"
)

// Settings is the process-wide toolchain configuration. It is owned and
// mutated by the settings store; this package only ever reads snapshots.
type Settings struct {
	// WorkspaceRoot is the absolute path holding all projects.
	WorkspaceRoot string `json:"workspaceRoot" yaml:"workspaceRoot"`
	// MavenHome is the absolute path of the Maven installation.
	MavenHome string `json:"mavenHome" yaml:"mavenHome"`
	// JDKs maps a normalized version string (e.g. "17") to the absolute
	// path of that JDK's java executable.
	JDKs map[string]string `json:"jdks" yaml:"jdks"`
}

// Clone returns a deep copy so a snapshot cannot alias the store's map.
func (s Settings) Clone() Settings {
	out := s
	if s.JDKs != nil {
		out.JDKs = make(map[string]string, len(s.JDKs))
		for k, v := range s.JDKs {
			out.JDKs[k] = v
		}
	}
	return out
}

// Toolchain component kinds reported in configuration errors.
const (
	ComponentBuildTool = "build-tool"
	ComponentRuntime   = "runtime"
)

// ConfigError identifies which toolchain component is missing or invalid.
// It is a reported value, not control flow: callers convert it into a
// structured notification for the client.
type ConfigError struct {
	// Component is ComponentBuildTool or ComponentRuntime.
	Component string
	// RequiredVersion is set for runtime errors.
	RequiredVersion string
	// Message is human-readable and safe to show to the client.
	Message string
}

func (e *ConfigError) Error() string {
	if e.RequiredVersion != "" {
		return fmt.Sprintf("%s %s: %s", e.Component, e.RequiredVersion, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

// NormalizeVersion maps legacy "1.X" JDK version strings to "X" and trims
// whitespace. "1.8" becomes "8", "11" stays "11".
func NormalizeVersion(version string) string {
	v := strings.TrimSpace(version)
	if strings.HasPrefix(v, "1.") && len(v) > 2 {
		return v[2:]
	}
	return v
}
