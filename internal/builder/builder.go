// Package builder is the validate → build → locate artifact → run pipeline.
// Requests are validated synchronously, then executed one at a time on a
// single-worker queue so builds never overlap.
package builder

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anvil-ide/anvil/internal/command"
	"github.com/anvil-ide/anvil/internal/history"
	"github.com/anvil-ide/anvil/internal/logger"
	"github.com/anvil-ide/anvil/internal/notify"
	"github.com/anvil-ide/anvil/internal/toolchain"
)

// mavenGoals is the fixed clean-build command line: clean, full install,
// force-update dependencies.
var mavenGoals = []string{"clean", "install", "-U"}

// mainClass is the fixed entry point of generated projects.
const mainClass = "Main"

// utf8Flag guarantees consistent text decoding regardless of host locale.
const utf8Flag = "-Dfile.encoding=UTF-8"

// queueCapacity bounds pending build requests behind the in-flight one.
const queueCapacity = 64

// SettingsSource provides consistent settings snapshots.
type SettingsSource interface {
	Snapshot() toolchain.Settings
}

// SessionStarter launches the built program under supervision.
type SessionStarter interface {
	Start(argv []string, workingDir string) error
}

// HistoryStore records build outcomes.
type HistoryStore interface {
	RecordStart(id, project string, startedAt int64) error
	RecordFinish(id string, finishedAt int64, exitCode int, outcome, artifact string) error
}

// Orchestrator coordinates one build request end to end.
type Orchestrator struct {
	settings SettingsSource
	runner   command.Runner
	sessions SessionStarter
	notifier notify.Notifier
	history  HistoryStore

	tasks     chan buildTask
	startOnce sync.Once
}

type buildTask struct {
	id      string
	project string
}

// New creates an orchestrator. history may be nil to disable persistence.
func New(settings SettingsSource, runner command.Runner, sessions SessionStarter, notifier notify.Notifier, history HistoryStore) *Orchestrator {
	return &Orchestrator{
		settings: settings,
		runner:   runner,
		sessions: sessions,
		notifier: notifier,
		history:  history,
		tasks:    make(chan buildTask, queueCapacity),
	}
}

// Submit validates the request synchronously and, if it passes, queues the
// build. The returned id identifies the request in history and logs. A
// ConfigError here is also pushed to the client as an environment-error
// notification; the async stage re-validates with fresh settings before the
// actual spawn, so a user can still fix settings while queued.
func (o *Orchestrator) Submit(project string) (string, error) {
	snapshot := o.settings.Snapshot()
	if err := validate(project, snapshot); err != nil {
		o.reportValidation(project, err)
		return "", err
	}

	task := buildTask{id: uuid.NewString(), project: project}
	o.recordStart(task)

	o.startOnce.Do(func() { go o.worker() })
	select {
	case o.tasks <- task:
	default:
		// The row just inserted must not stay open forever.
		o.recordFinish(task, command.ExitFailure, history.OutcomeRejected, "")
		return "", fmt.Errorf("build queue is full")
	}

	logger.Infof("build %s queued for project %s", task.id, project)
	return task.id, nil
}

// worker drains the queue with exactly one concurrent build.
func (o *Orchestrator) worker() {
	for task := range o.tasks {
		o.run(task)
	}
}

// run executes the asynchronous pipeline for one accepted request. Every
// failure path ends in a notification and a terminal history record; nothing
// escapes the worker.
func (o *Orchestrator) run(task buildTask) {
	snapshot := o.settings.Snapshot()
	projectDir := filepath.Join(snapshot.WorkspaceRoot, task.project)

	// Settings may have changed since validation; resolve again right
	// before spawning so last-minute fixes are picked up.
	mvn, err := toolchain.ResolveMaven(snapshot.MavenHome)
	if err != nil {
		o.failConfiguration(task, err)
		return
	}
	version := toolchain.RequiredJDKVersion(projectDir, o.diagnosticSink())
	java, err := toolchain.ResolveJDK(snapshot, version)
	if err != nil {
		o.failConfiguration(task, err)
		return
	}

	o.notifier.BuildLog(fmt.Sprintf("Building %s with JDK %s...", task.project, version))

	argv := append([]string{mvn}, mavenGoals...)
	done := o.runner.Start(command.Spec{
		Argv: argv,
		Dir:  projectDir,
		Env:  map[string]string{"JAVA_HOME": toolchain.RuntimeHome(java)},
	}, o.notifier.BuildLog)
	exitCode := <-done

	if exitCode != 0 {
		logger.Warnf("build %s failed with exit code %d", task.id, exitCode)
		o.notifier.RunLog([]string{fmt.Sprintf("Build failed with exit code %d.", exitCode)})
		o.recordFinish(task, exitCode, history.OutcomeBuildFailed, "")
		return
	}

	artifact, err := findArtifact(projectDir)
	if err != nil {
		logger.Warnf("build %s: %v", task.id, err)
		o.notifier.RunLog([]string{"Build succeeded but no runnable artifact was found in " + outputDirName + "/."})
		o.recordFinish(task, exitCode, history.OutcomeArtifactNotFound, "")
		return
	}

	o.notifier.RunLog([]string{fmt.Sprintf("Found artifact %s.", filepath.Base(artifact))})
	launch := []string{java, utf8Flag, "-cp", artifact, mainClass}
	if err := o.sessions.Start(launch, projectDir); err != nil {
		o.notifier.RunLog([]string{fmt.Sprintf("Failed to launch program: %v", err)})
		o.recordFinish(task, exitCode, history.OutcomeLaunchFailed, filepath.Base(artifact))
		return
	}

	o.recordFinish(task, exitCode, history.OutcomeSuccess, filepath.Base(artifact))
}

// failConfiguration reports a toolchain misconfiguration discovered in the
// asynchronous stage.
func (o *Orchestrator) failConfiguration(task buildTask, err error) {
	logger.Warnf("build %s rejected: %v", task.id, err)
	o.notifyConfigError(err)
	o.notifier.BuildLog("Build aborted: " + err.Error())
	o.recordFinish(task, command.ExitFailure, history.OutcomeConfigurationError, "")
}

// reportValidation emits the structured notification for a synchronous
// rejection. The caller still receives the error directly.
func (o *Orchestrator) reportValidation(project string, err error) {
	logger.Warnf("project %s rejected: %v", project, err)
	o.notifyConfigError(err)
	o.notifier.BuildLog("Cannot build " + project + ": " + err.Error())
}

func (o *Orchestrator) notifyConfigError(err error) {
	var configErr *toolchain.ConfigError
	if errors.As(err, &configErr) {
		o.notifier.EnvironmentError(notify.EnvironmentError{
			Component:       configErr.Component,
			RequiredVersion: configErr.RequiredVersion,
			Message:         configErr.Message,
		})
	}
}

func (o *Orchestrator) diagnosticSink() toolchain.DiagnosticSink {
	return func(rec notify.DiagnosticRecord) {
		o.notifier.BuildLog(rec.String())
	}
}

func (o *Orchestrator) recordStart(task buildTask) {
	if o.history == nil {
		return
	}
	if err := o.history.RecordStart(task.id, task.project, time.Now().UnixMilli()); err != nil {
		logger.Warnf("failed to record build start: %v", err)
	}
}

func (o *Orchestrator) recordFinish(task buildTask, exitCode int, outcome, artifact string) {
	if o.history == nil {
		return
	}
	if err := o.history.RecordFinish(task.id, time.Now().UnixMilli(), exitCode, outcome, artifact); err != nil {
		logger.Warnf("failed to record build finish: %v", err)
	}
}
