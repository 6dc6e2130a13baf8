package toolchain

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/anvil-ide/anvil/internal/notify"
)

// ManifestName is the build manifest every eligible project must contain.
const ManifestName = "pom.xml"

// DefaultJDKVersion is used when a project declares no runtime version.
const DefaultJDKVersion = "17"

// HasManifest reports whether dir contains a build manifest.
func HasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestName))
	return err == nil && !info.IsDir()
}

type pomProperties struct {
	JavaVersion     string `xml:"java.version"`
	CompilerSource  string `xml:"maven.compiler.source"`
	CompilerRelease string `xml:"maven.compiler.release"`
}

type pomProject struct {
	XMLName    xml.Name      `xml:"project"`
	Properties pomProperties `xml:"properties"`
}

// DiagnosticSink receives advisory records about how the version was chosen.
// It is diagnostic only and never affects the resolved value.
type DiagnosticSink func(rec notify.DiagnosticRecord)

// RequiredJDKVersion reads the project's pom.xml and returns the normalized
// JDK version the project requires. Property precedence, first match wins:
// java.version, then maven.compiler.source, then maven.compiler.release.
// It never fails: a missing or unreadable manifest falls back to
// DefaultJDKVersion, with the reason reported through the optional sink.
func RequiredJDKVersion(projectDir string, sink DiagnosticSink) string {
	emit := func(rec notify.DiagnosticRecord) {
		if sink != nil {
			sink(rec)
		}
	}

	data, err := os.ReadFile(filepath.Join(projectDir, ManifestName))
	if err != nil {
		emit(notify.Diagnosticf(notify.SeverityWarning,
			"cannot read %s, defaulting to JDK %s", ManifestName, DefaultJDKVersion))
		return DefaultJDKVersion
	}

	var pom pomProject
	if err := xml.Unmarshal(data, &pom); err != nil {
		emit(notify.Diagnosticf(notify.SeverityWarning,
			"cannot parse %s (%v), defaulting to JDK %s", ManifestName, err, DefaultJDKVersion))
		return DefaultJDKVersion
	}

	candidates := []struct {
		property string
		value    string
	}{
		{"java.version", pom.Properties.JavaVersion},
		{"maven.compiler.source", pom.Properties.CompilerSource},
		{"maven.compiler.release", pom.Properties.CompilerRelease},
	}
	for _, c := range candidates {
		if v := NormalizeVersion(c.value); v != "" {
			emit(notify.Diagnosticf(notify.SeverityInfo,
				"using JDK %s from %s property %s", v, ManifestName, c.property))
			return v
		}
	}

	emit(notify.Diagnosticf(notify.SeverityWarning,
		"no JDK version declared in %s, defaulting to %s", ManifestName, DefaultJDKVersion))
	return DefaultJDKVersion
}
