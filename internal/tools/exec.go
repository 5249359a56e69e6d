package tools

import (
	"context"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// realCmd adapts exec.Cmd to the execCmd interface.
type realCmd struct {
	cmd *exec.Cmd
}

func (p *Process) newExecCmd(ctx context.Context) execCmd {
	cmd := exec.CommandContext(ctx, p.binary, p.args...) //#nosec G204 -- command lines are built from task definitions, not user input
	cmd.Dir = p.dir

	if len(p.env) > 0 {
		cmd.Env = append(os.Environ(), p.env...)
	}

	// Context cancellation follows the same two-phase discipline as
	// Interrupt: SIGTERM first, SIGKILL once the grace period runs out.
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return os.ErrProcessDone
		}
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = p.grace

	return &realCmd{cmd: cmd}
}

func (c *realCmd) Start() error { return c.cmd.Start() }
func (c *realCmd) Wait() error  { return c.cmd.Wait() }

func (c *realCmd) StdoutPipe() (io.ReadCloser, error) { return c.cmd.StdoutPipe() }
func (c *realCmd) StderrPipe() (io.ReadCloser, error) { return c.cmd.StderrPipe() }

func (c *realCmd) Signal(sig syscall.Signal) error {
	if c.cmd.Process == nil {
		return os.ErrProcessDone
	}
	return c.cmd.Process.Signal(sig)
}
