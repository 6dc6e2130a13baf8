// Package notify defines the event contract between the engine and the one
// connected client. Delivery is fire-and-forget: emitters never learn whether
// a client was listening.
package notify

import "fmt"

// Topic names as they appear on the wire.
const (
	TopicBuildLog         = "build-log"
	TopicRunLog           = "run-log"
	TopicRunState         = "run-state"
	TopicEnvironmentError = "environment-error"
)

// Severity classifies a diagnostic line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticRecord is a structured line item describing one problem or one
// log line the engine chooses to elevate as structured feedback.
type DiagnosticRecord struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String renders the record the way it is shown in a plain log stream.
func (d DiagnosticRecord) String() string {
	switch d.Severity {
	case SeverityWarning:
		return "[WARNING] " + d.Message
	case SeverityError:
		return "[ERROR] " + d.Message
	default:
		return "[INFO] " + d.Message
	}
}

// EnvironmentError is the structured payload sent when the toolchain is
// misconfigured, so the client can render an actionable settings prompt.
type EnvironmentError struct {
	Component       string `json:"component"`
	RequiredVersion string `json:"requiredVersion,omitempty"`
	Message         string `json:"message"`
}

// RunState describes the lifecycle of the supervised run session.
type RunState struct {
	SessionID string `json:"sessionId"`
	Running   bool   `json:"running"`
	ExitCode  *int   `json:"exitCode,omitempty"`
	StartedAt int64  `json:"startedAt,omitempty"`
}

// LineSink accepts one line of subprocess or advisory output.
type LineSink func(line string)

// Notifier delivers named events to the one connected client.
type Notifier interface {
	// BuildLog forwards one line of build tool output.
	BuildLog(line string)
	// RunLog forwards a batch of program output lines, order preserved.
	RunLog(lines []string)
	// RunState reports a run session starting or exiting.
	RunState(state RunState)
	// EnvironmentError reports a toolchain misconfiguration.
	EnvironmentError(envErr EnvironmentError)
}

// Nop is a Notifier that discards everything.
type Nop struct{}

func (Nop) BuildLog(string)                   {}
func (Nop) RunLog([]string)                   {}
func (Nop) RunState(RunState)                 {}
func (Nop) EnvironmentError(EnvironmentError) {}

var _ Notifier = Nop{}

// Diagnosticf builds an info or warning record from a format string.
func Diagnosticf(severity Severity, format string, args ...any) DiagnosticRecord {
	return DiagnosticRecord{Severity: severity, Message: fmt.Sprintf(format, args...)}
}
