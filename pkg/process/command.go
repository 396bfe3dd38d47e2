// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

var log = logf.Log.WithName("process")

// Command is a local command to execute.
type Command struct {
	executable string
	workDir    string
	env        []string
	args       []string
}

// Result holds the outcome of a command that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError is returned when the command exited with a non zero code.
type ExitError struct {
	Command string
	Result  Result
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.Result.ExitCode, strings.TrimSpace(e.Result.Stderr))
}

// Execute runs the command and returns its output.
// Standard output and error are drained concurrently while waiting for the process to exit.
func (c *Command) Execute(ctx context.Context) (Result, error) {
	cmd := exec.CommandContext(ctx, c.executable, c.args...)
	cmd.Dir = c.workDir
	cmd.Env = append(os.Environ(), c.env...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, err
	}
	log.V(1).Info("Executing command", "command", c.String(), "dir", c.workDir)
	if err := cmd.Start(); err != nil {
		return Result{}, errors.Wrapf(err, "while starting %s", c)
	}

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(drain(&stdout, stdoutPipe))
	g.Go(drain(&stderr, stderrPipe))
	// pipes must be fully read before calling Wait
	drainErr := g.Wait()
	waitErr := cmd.Wait()

	result := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: cmd.ProcessState.ExitCode()}
	var exitErr *exec.ExitError
	switch {
	case errors.As(waitErr, &exitErr):
		return result, &ExitError{Command: c.String(), Result: result}
	case waitErr != nil:
		return result, errors.Wrapf(waitErr, "while running %s", c)
	case drainErr != nil:
		return result, errors.Wrapf(drainErr, "while reading output of %s", c)
	}
	return result, nil
}

func drain(dst *bytes.Buffer, src io.Reader) func() error {
	return func() error {
		_, err := io.Copy(dst, src)
		return err
	}
}

func (c *Command) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", c.executable, strings.Join(c.args, " ")))
}

// Decorator allows optional modifications to a Command.
// See https://preslav.me/2019/07/07/implementing-a-functional-style-builder-in-go/ for details about the pattern.
type Decorator func(*Command) *Command

// New creates a command with the given arguments.
// Call Build() on the returned value to obtain the final command.
func New(executable string, args ...string) Decorator {
	return func(cmd *Command) *Command {
		cmd.executable = executable
		cmd.args = args
		return cmd
	}
}

// WithEnv sets the environment variables to use with this command.
// Each variable must be defined in the form k=v.
func (cd Decorator) WithEnv(env ...string) Decorator {
	return func(cmd *Command) *Command {
		cd(cmd).env = env
		return cmd
	}
}

// WithWorkDir sets the working directory of the command.
func (cd Decorator) WithWorkDir(dir string) Decorator {
	return func(cmd *Command) *Command {
		cd(cmd).workDir = dir
		return cmd
	}
}

// Build builds the final command with all the decorators applied.
func (cd Decorator) Build() *Command {
	return cd(&Command{})
}
