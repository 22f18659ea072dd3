package mencoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"sync"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

const lineBuffer = 256

// Process is a launched mencoder or mplayer. It is observed by polling
// Exited rather than by blocking on Wait.
type Process struct {
	cmd *exec.Cmd
	// Args holds the arguments the process was launched with.
	Args []string

	stdin  io.WriteCloser
	output   io.ReadCloser
	lines    chan string
	complete bool
	done     chan struct{}
	err      error

	mu     sync.Mutex
	killed bool
}

// Options control how a process is started.
type Options struct {
	// Env is merged over the current environment.
	Env map[string]string
	// Control opens a pipe to the process's stdin for slave commands.
	Control bool
	// Capture sends combined stdout and stderr to Lines.
	Capture bool
	// Complete delivers every captured line, holding up the process
	// until Lines is read. Without it lines are dropped when the reader
	// falls behind.
	Complete bool
}

func environ(extra map[string]string) []string {
	if len(extra) == 0 {
		return nil
	}
	env := os.Environ()
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

func NewProcess(ctx context.Context, c *Command, opts Options) (*Process, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("no binary given")
	}
	result := &Process{
		Args:     slices.Clone(c.Args),
		complete: opts.Complete,
		done:     make(chan struct{}),
	}
	result.cmd = exec.CommandContext(ctx, c.Path, result.Args...)
	result.cmd.Env = environ(opts.Env)
	if opts.Control {
		stdin, err := result.cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		result.stdin = stdin
	}
	if opts.Capture {
		r, w := io.Pipe()
		result.cmd.Stdout = w
		result.cmd.Stderr = w
		result.output = r
	}
	return result, nil
}

// Start launches the process and begins reaping it in the background.
func (m *Process) Start() error {
	if err := m.cmd.Start(); err != nil {
		return err
	}
	if m.output != nil {
		m.lines = make(chan string, lineBuffer)
		go m.scan()
	}
	go func() {
		m.err = m.cmd.Wait()
		if w, ok := m.cmd.Stdout.(*io.PipeWriter); ok {
			w.Close() //nolint:errcheck
		}
		close(m.done)
	}()
	return nil
}

// Pid is the process id, or 0 before Start.
func (m *Process) Pid() int {
	if m.cmd.Process == nil {
		return 0
	}
	return m.cmd.Process.Pid
}

// Exited reports, without blocking, whether the process has ended.
func (m *Process) Exited() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// Done is closed once the process has ended.
func (m *Process) Done() <-chan struct{} {
	return m.done
}

// Err is the result of Wait. It is only meaningful after Done.
func (m *Process) Err() error {
	<-m.done
	return m.err
}

// Killed reports whether Kill was called while the process was alive.
func (m *Process) Killed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.killed
}

// Kill asks the process to terminate. Killing a process that is already
// gone is not an error.
func (m *Process) Kill() {
	if m.cmd.Process == nil || m.Exited() {
		return
	}
	m.mu.Lock()
	m.killed = true
	m.mu.Unlock()
	// SIGTERM lets mencoder finish writing the index.
	if err := m.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		m.cmd.Process.Kill() //nolint:errcheck
	}
}

// Send writes one line to the process's stdin.
func (m *Process) Send(line string) error {
	if m.stdin == nil {
		return fmt.Errorf("process was started without a control pipe")
	}
	if m.Exited() {
		return fmt.Errorf("process %d has exited", m.Pid())
	}
	_, err := io.WriteString(m.stdin, line+"\n")
	return err
}

// scanLines splits on either '\n' or '\r', since mencoder redraws its
// status line with carriage returns.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// scan feeds captured output into the lines channel. Unless every line
// was asked for, lines are dropped rather than blocking the process
// when nobody keeps up.
func (m *Process) scan() {
	defer close(m.lines)
	scanner := bufio.NewScanner(m.output)
	scanner.Split(scanLines)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if m.complete {
			m.lines <- line
			continue
		}
		select {
		case m.lines <- line:
		default:
		}
	}
	// Keep draining so the writer never blocks.
	io.Copy(io.Discard, m.output) //nolint:errcheck
}

// Lines streams captured output, one line at a time, and is closed
// after the process exits. It is nil if output was not captured.
func (m *Process) Lines() <-chan string {
	return m.lines
}

// Stats is a snapshot of a running process's resource use.
type Stats struct {
	CPUPercent float64
	RSS        uint64
}

// Stats samples CPU and memory use of the running process.
func (m *Process) Stats() (*Stats, error) {
	pid := m.Pid()
	if pid == 0 || m.Exited() {
		return nil, fmt.Errorf("process is not running")
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return nil, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return nil, err
	}
	return &Stats{CPUPercent: cpu, RSS: mem.RSS}, nil
}
