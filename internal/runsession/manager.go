// Package runsession supervises at most one user program process at a time,
// batching its output into run-log notifications.
package runsession

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/anvil-ide/anvil/internal/logger"
	"github.com/anvil-ide/anvil/internal/notify"
)

const (
	// flushInterval bounds how long an output line can sit unflushed.
	flushInterval = 200 * time.Millisecond
	// flushThreshold flushes early under high-throughput output.
	flushThreshold = 100
	// maxLineBytes bounds a single program output line.
	maxLineBytes = 1024 * 1024
)

// Session is the live state of one supervised program process. Its log
// buffer is owned exclusively by the session loop; the running flag is
// shared with the manager.
type Session struct {
	ID        string
	StartedAt int64

	cmd     *exec.Cmd
	running atomic.Bool
}

// Running reports whether the session's process is still supervised.
func (s *Session) Running() bool {
	return s.running.Load()
}

func (s *Session) kill() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

// Manager owns the single run session slot. Starting a new session
// implicitly retires any previous one; the manager never supervises two
// processes simultaneously.
type Manager struct {
	notifier notify.Notifier

	mu     sync.Mutex
	active *Session
}

// NewManager creates a run session manager reporting through notifier.
func NewManager(notifier notify.Notifier) *Manager {
	return &Manager{notifier: notifier}
}

// Start spawns argv in workingDir with merged stdout/stderr and begins
// supervising it. A previous active session is killed first.
func (m *Manager) Start(argv []string, workingDir string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty run command")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		logger.Infof("retiring previous run session %s", m.active.ID)
		m.active.kill()
		m.active = nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workingDir
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open output pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		m.notifier.RunLog([]string{fmt.Sprintf("failed to start %s: %v", argv[0], err)})
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UnixMilli(),
		cmd:       cmd,
	}
	sess.running.Store(true)
	m.active = sess

	logger.Infof("run session %s started (pid %d)", sess.ID, cmd.Process.Pid)
	m.notifier.RunState(notify.RunState{
		SessionID: sess.ID,
		Running:   true,
		StartedAt: sess.StartedAt,
	})

	lines := make(chan string, 256)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if scanner.Err() != nil {
			// Keep draining, or a child blocked writing to a full pipe
			// would never exit and Wait in finish would hang.
			_, _ = io.Copy(io.Discard, stdout)
		}
	}()
	go m.loop(sess, lines)

	return nil
}

// loop batches output lines and flushes them as single notifications. It
// ends when the process's output stream closes, which happens on exit or
// kill; the final flush then races a kill by at most one buffer of output.
func (m *Manager) loop(sess *Session, lines <-chan string) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var batch []string
	flush := func() {
		if len(batch) == 0 {
			return
		}
		m.notifier.RunLog(batch)
		batch = nil
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				flush()
				m.finish(sess)
				return
			}
			batch = append(batch, line)
			if len(batch) >= flushThreshold {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (m *Manager) finish(sess *Session) {
	exitCode := 0
	if err := sess.cmd.Wait(); err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			exitCode = -1
		}
	}
	sess.running.Store(false)

	m.mu.Lock()
	if m.active == sess {
		m.active = nil
	}
	m.mu.Unlock()

	logger.Infof("run session %s exited with code %d", sess.ID, exitCode)
	m.notifier.RunState(notify.RunState{
		SessionID: sess.ID,
		Running:   false,
		ExitCode:  &exitCode,
		StartedAt: sess.StartedAt,
	})
}

// Stop kills the active session's process, if any. The running flag flips
// once the reader loop drains and performs its final flush.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		logger.Infof("stopping run session %s", m.active.ID)
		m.active.kill()
	}
}

// Active returns the live session, or nil when none is supervised.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}
