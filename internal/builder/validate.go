package builder

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/anvil-ide/anvil/internal/toolchain"
)

// ErrInvalidProject marks a project that fails structural eligibility: it is
// terminal and non-retryable, unlike a configuration error which the user
// can fix in settings.
var ErrInvalidProject = errors.New("invalid project")

// validate performs all checks that must pass before any asynchronous work
// is queued. Filesystem and path checks only; no subprocess is spawned.
func validate(project string, snapshot toolchain.Settings) error {
	// The name must stay inside the workspace root; anything absolute or
	// with ".." segments is not a project.
	if !filepath.IsLocal(project) {
		return fmt.Errorf("%w: %q is not a project name", ErrInvalidProject, project)
	}
	projectDir := filepath.Join(snapshot.WorkspaceRoot, project)
	if !toolchain.HasManifest(projectDir) {
		return fmt.Errorf("%w: %s contains no %s", ErrInvalidProject, project, toolchain.ManifestName)
	}
	if _, err := toolchain.ResolveMaven(snapshot.MavenHome); err != nil {
		return err
	}
	version := toolchain.RequiredJDKVersion(projectDir, nil)
	if _, err := toolchain.ResolveJDK(snapshot, version); err != nil {
		return err
	}
	return nil
}
