package capture

import (
	"context"
	"fmt"

	"github.com/achernya/tvcapture/mencoder"
)

// Handle is a launched process as the controller sees it.
// *mencoder.Process satisfies it.
type Handle interface {
	Pid() int
	Exited() bool
	Kill()
	Send(line string) error
	// Lines may be nil when output is not captured.
	Lines() <-chan string
}

// Launcher starts processes. Tests replace it with a fake.
type Launcher interface {
	Launch(ctx context.Context, c *mencoder.Command, opts mencoder.Options) (Handle, error)
	// Run runs argv to completion.
	Run(ctx context.Context, argv []string, env map[string]string) error
}

// ExecLauncher launches real processes.
type ExecLauncher struct{}

func (ExecLauncher) Launch(ctx context.Context, c *mencoder.Command, opts mencoder.Options) (Handle, error) {
	p, err := mencoder.NewProcess(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("could not start %s: %w", c.Path, err)
	}
	return p, nil
}

func (ExecLauncher) Run(ctx context.Context, argv []string, env map[string]string) error {
	if len(argv) == 0 {
		return nil
	}
	p, err := mencoder.NewProcess(ctx, &mencoder.Command{Path: argv[0], Args: argv[1:]}, mencoder.Options{Env: env})
	if err != nil {
		return err
	}
	if err := p.Start(); err != nil {
		return err
	}
	if err := p.Err(); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

var _ Launcher = ExecLauncher{}

