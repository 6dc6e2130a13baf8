package builder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// outputDirName is the project-relative Maven build output directory.
const outputDirName = "target"

// errNoArtifact means the build succeeded but produced nothing runnable.
var errNoArtifact = errors.New("no runnable artifact in build output")

// findArtifact scans the project's build output directory (non-recursive)
// for a packaged jar, excluding sources and javadoc archives. When multiple
// jars exist the first in directory enumeration order wins; well-formed
// single-module projects produce exactly one.
func findArtifact(projectDir string) (string, error) {
	outputDir := filepath.Join(projectDir, outputDirName)
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", errNoArtifact
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jar") {
			continue
		}
		if strings.HasSuffix(name, "-sources.jar") || strings.HasSuffix(name, "-javadoc.jar") {
			continue
		}
		return filepath.Join(outputDir, name), nil
	}
	return "", errNoArtifact
}
