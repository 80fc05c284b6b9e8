package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes one-shot external commands.
//
// note: fault injection point
type Runner interface {
	// Output runs the command to completion and returns its combined output.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Stream copies the command's output into `w` until it exits or ctx is done.
	Stream(ctx context.Context, w io.Writer, name string, args ...string) error
}

// CommandError carries the raw diagnostic output of a failed command.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	output := strings.TrimSpace(e.Output)
	if output == "" {
		return fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", strings.Join(e.Args, " "), e.Err, output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands on the host from inside Dir.
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) command(ctx context.Context, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	return cmd
}

func (r ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := r.command(ctx, name, args)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err != nil {
		return out.String(), &CommandError{
			Args:   append([]string{name}, args...),
			Output: out.String(),
			Err:    err,
		}
	}
	return out.String(), nil
}

func (r ExecRunner) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	cmd := r.command(ctx, name, args)
	cmd.Stdout = w
	cmd.Stderr = w
	err := cmd.Run()
	if err != nil {
		return &CommandError{Args: append([]string{name}, args...), Err: err}
	}
	return nil
}
