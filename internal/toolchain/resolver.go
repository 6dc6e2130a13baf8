package toolchain

import (
	"os"
	"path/filepath"
	"runtime"
)

// executableName appends the platform suffix for a named executable. All
// platform-specific path conventions live here; nothing else in the engine
// inspects runtime.GOOS.
func executableName(name string) string {
	if runtime.GOOS == "windows" {
		if name == "mvn" {
			return "mvn.cmd"
		}
		return name + ".exe"
	}
	return name
}

// isExecutableFile reports whether path is a regular file the current user
// could execute.
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}

// ResolveMaven maps the configured Maven home to the concrete mvn executable.
// It fails with a ConfigError when the home is unset or the executable under
// <home>/bin is missing or not executable.
func ResolveMaven(mavenHome string) (string, error) {
	if mavenHome == "" {
		return "", &ConfigError{
			Component: ComponentBuildTool,
			Message:   "Maven home is not configured",
		}
	}
	path := filepath.Join(mavenHome, "bin", executableName("mvn"))
	if !isExecutableFile(path) {
		return "", &ConfigError{
			Component: ComponentBuildTool,
			Message:   "no Maven executable at " + path,
		}
	}
	return path, nil
}

// ResolveJDK maps a required runtime version to the configured java
// executable. The version is normalized before lookup, so "1.8" and "8"
// address the same entry.
func ResolveJDK(settings Settings, requiredVersion string) (string, error) {
	version := NormalizeVersion(requiredVersion)
	path, ok := settings.JDKs[version]
	if !ok || path == "" {
		return "", &ConfigError{
			Component:       ComponentRuntime,
			RequiredVersion: version,
			Message:         "no JDK configured for version " + version,
		}
	}
	if !isExecutableFile(path) {
		return "", &ConfigError{
			Component:       ComponentRuntime,
			RequiredVersion: version,
			Message:         "configured JDK path is not an executable: " + path,
		}
	}
	return path, nil
}

// RuntimeHome derives the JDK home directory from its java executable path
// (<home>/bin/java). The build subprocess receives it as JAVA_HOME.
func RuntimeHome(javaPath string) string {
	return filepath.Dir(filepath.Dir(javaPath))
}
