// Package command executes external commands and streams their combined
// output line by line to a caller-supplied sink.
package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/anvil-ide/anvil/internal/logger"
	"github.com/anvil-ide/anvil/internal/notify"
)

// ExitFailure is the sentinel exit code reported when a process could not be
// spawned or waited on.
const ExitFailure = -1

// maxLineBytes bounds a single output line; Maven stack traces can be long.
const maxLineBytes = 1024 * 1024

// Spec describes one command invocation. Argv is always an explicit list,
// never a shell string, so paths with spaces need no quoting.
type Spec struct {
	Argv []string
	Dir  string
	// Env entries are appended to the parent environment.
	Env map[string]string
}

// Runner executes a command asynchronously. The sink may be called many
// times before the returned channel delivers the exit code.
type Runner interface {
	Start(spec Spec, sink notify.LineSink) <-chan int
}

// ExecRunner runs commands as real OS processes with merged stdout/stderr.
// Merge order between the two streams is whatever the OS delivers.
type ExecRunner struct{}

// Start spawns the command and returns a channel that delivers the exit code
// exactly once. All failures are converted into ExitFailure plus a sink line;
// nothing escapes the runner's boundary.
func (ExecRunner) Start(spec Spec, sink notify.LineSink) <-chan int {
	done := make(chan int, 1)

	if len(spec.Argv) == 0 {
		sink("no command to execute")
		done <- ExitFailure
		return done
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		sink(fmt.Sprintf("failed to open output pipe: %v", err))
		done <- ExitFailure
		return done
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		sink(fmt.Sprintf("failed to start %s: %v", spec.Argv[0], err))
		done <- ExitFailure
		return done
	}

	logger.Debugf("started %s (pid %d) in %s", spec.Argv[0], cmd.Process.Pid, spec.Dir)

	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			sink(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			sink(fmt.Sprintf("error reading output of %s: %v", spec.Argv[0], err))
			// Keep draining, or a child blocked writing to a full pipe
			// would never exit and Wait below would hang.
			_, _ = io.Copy(io.Discard, stdout)
		}

		err := cmd.Wait()
		switch e := err.(type) {
		case nil:
			done <- 0
		case *exec.ExitError:
			done <- e.ExitCode()
		default:
			sink(fmt.Sprintf("failed to wait for %s: %v", spec.Argv[0], err))
			done <- ExitFailure
		}
	}()

	return done
}

var _ Runner = ExecRunner{}
