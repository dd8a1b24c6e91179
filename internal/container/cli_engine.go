package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ExecCommandFunc creates exec.Cmd values. Tests replace it to avoid
// invoking real runtimes.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// cliEngine runs a runtime executable as a child process.
type cliEngine struct {
	binaryPath  string
	execCommand ExecCommandFunc
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

func newCLIEngine(binaryPath string, execCommand ExecCommandFunc) *cliEngine {
	if execCommand == nil {
		execCommand = exec.CommandContext
	}
	return &cliEngine{
		binaryPath:  binaryPath,
		execCommand: execCommand,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
}

// command creates an exec.Cmd for the given arguments.
func (e *cliEngine) command(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// output executes a command and returns its trimmed stdout.
func (e *cliEngine) output(ctx context.Context, args ...string) (string, error) {
	cmd := e.command(ctx, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(errOut.String()); msg != "" {
			return "", fmt.Errorf("%s %s: %w: %s", e.binaryPath, strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("%s %s: %w", e.binaryPath, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(out.String()), nil
}

// interactive runs a command attached to the engine's stdio and returns the
// child's exit code. env is added to the child's environment. Only failures to
// start or wait produce an error.
func (e *cliEngine) interactive(ctx context.Context, env []string, args ...string) (int, error) {
	cmd := e.command(ctx, args...)
	if len(env) > 0 {
		base := cmd.Env
		if base == nil {
			base = os.Environ()
		}
		cmd.Env = append(append([]string(nil), base...), env...)
	}
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctx.Err() != nil {
		return exitInterrupted, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("failed to run %s: %w", e.binaryPath, err)
}

// exitCode returns the exit status carried by err, or -1 when err did not
// come from a process that ran.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
