package capture

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFileExists means the resolved output file is already there and
	// overwriting it was not accepted.
	ErrFileExists = errors.New("output file already exists")
	// ErrAlreadyRunning means the process is already being managed.
	ErrAlreadyRunning = errors.New("already running")
	// ErrNotRunning means there is nothing to stop or control.
	ErrNotRunning = errors.New("not running")
	// ErrScheduled means a scheduled start is already pending.
	ErrScheduled = errors.New("a recording is already scheduled")
)

// State is where a managed process is in its life.
type State int

const (
	NotStarted State = iota
	Running
	// Exited means the process was observed to have ended on its own.
	Exited
	// Killed means the process was terminated on request.
	Killed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Killed:
		return "killed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Events passed to Config.OnEvent. They are delivered outside the
// controller's lock, so handlers may call back into the Controller.

// StateChanged reports a transition of one managed process.
type StateChanged struct {
	Role  string
	State State
	Pid   int
}

// Progress is sent once per poll while the recorder runs.
type Progress struct {
	File    string
	Elapsed time.Duration
}

// Countdown is sent once per poll while a start is scheduled.
type Countdown struct {
	At        time.Time
	Remaining time.Duration
}

// ScheduleCancelled is sent when a pending start is called off.
type ScheduleCancelled struct {
	At time.Time
}

// Output is one line printed by a managed process.
type Output struct {
	Role string
	Line string
}

// Problem reports a failure that did not stop the operation, such as
// a failing hook.
type Problem struct {
	Role string
	Err  error
}

// RecordingEnded is sent after the recorder is gone and cleanup ran.
type RecordingEnded struct {
	File    string
	State   State
	Elapsed time.Duration
}

// FormatElapsed renders whole seconds as hh:mm:ss.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
