package toolchain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anvil-ide/anvil/internal/notify"
)

func writePom(t *testing.T, dir, properties string) {
	t.Helper()
	pom := `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
	<modelVersion>4.0.0</modelVersion>
	<groupId>com.example</groupId>
	<artifactId>demo</artifactId>
	<version>1.0.0</version>
	<properties>` + properties + `</properties>
</project>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(pom), 0o644))
}

func collectDiagnostics(recs *[]notify.DiagnosticRecord) DiagnosticSink {
	return func(rec notify.DiagnosticRecord) {
		*recs = append(*recs, rec)
	}
}

func TestRequiredJDKVersion_JavaVersionWins(t *testing.T) {
	dir := t.TempDir()
	writePom(t, dir, `
		<java.version>21</java.version>
		<maven.compiler.source>11</maven.compiler.source>
		<maven.compiler.release>8</maven.compiler.release>`)

	var recs []notify.DiagnosticRecord
	got := RequiredJDKVersion(dir, collectDiagnostics(&recs))

	require.Equal(t, "21", got)
	require.Len(t, recs, 1)
	require.Equal(t, notify.SeverityInfo, recs[0].Severity)
	require.Contains(t, recs[0].Message, "java.version")
}

func TestRequiredJDKVersion_CompilerSourceSecond(t *testing.T) {
	dir := t.TempDir()
	writePom(t, dir, `
		<maven.compiler.source>11</maven.compiler.source>
		<maven.compiler.release>8</maven.compiler.release>`)

	got := RequiredJDKVersion(dir, nil)
	require.Equal(t, "11", got)
}

func TestRequiredJDKVersion_CompilerReleaseThird(t *testing.T) {
	dir := t.TempDir()
	writePom(t, dir, `<maven.compiler.release>8</maven.compiler.release>`)

	got := RequiredJDKVersion(dir, nil)
	require.Equal(t, "8", got)
}

func TestRequiredJDKVersion_NormalizesLegacyForm(t *testing.T) {
	dir := t.TempDir()
	writePom(t, dir, `<java.version>1.8</java.version>`)

	got := RequiredJDKVersion(dir, nil)
	require.Equal(t, "8", got)
}

func TestRequiredJDKVersion_NoDeclarationFallsBack(t *testing.T) {
	dir := t.TempDir()
	writePom(t, dir, ``)

	var recs []notify.DiagnosticRecord
	got := RequiredJDKVersion(dir, collectDiagnostics(&recs))

	require.Equal(t, DefaultJDKVersion, got)
	require.Len(t, recs, 1)
	require.Equal(t, notify.SeverityWarning, recs[0].Severity)
}

func TestRequiredJDKVersion_MissingManifestFallsBack(t *testing.T) {
	dir := t.TempDir()

	var recs []notify.DiagnosticRecord
	got := RequiredJDKVersion(dir, collectDiagnostics(&recs))

	require.Equal(t, DefaultJDKVersion, got)
	require.Len(t, recs, 1)
	require.Equal(t, notify.SeverityWarning, recs[0].Severity)
}

func TestRequiredJDKVersion_UnparseableManifestFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("<project><oops"), 0o644))

	got := RequiredJDKVersion(dir, nil)
	require.Equal(t, DefaultJDKVersion, got)
}

func TestHasManifest(t *testing.T) {
	dir := t.TempDir()
	require.False(t, HasManifest(dir))

	writePom(t, dir, ``)
	require.True(t, HasManifest(dir))
}
