// Package runner executes external tools as plain request values.
//
// Every invocation of xcrun, xcodegen, xcodebuild, security or cargo flows
// through here so that callers describe the command they want as data and
// tests can substitute an Executor without touching os/exec.
package runner

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Command describes a single external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory for the process. Empty means inherit.
	Dir string
}

// String renders the command roughly as it would be typed in a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Output holds the captured streams of a finished process.
type Output struct {
	Stdout string
	Stderr string
}

// Executor runs commands synchronously. Calls block until the process
// exits; there is no timeout or cancellation here.
type Executor interface {
	// Run executes cmd and captures its output. A non-zero exit status
	// is reported as *ExitError carrying the captured streams.
	Run(cmd Command) (Output, error)

	// RunInteractive executes cmd with the parent's stdio attached.
	// Used for long build-tool invocations whose progress the user
	// should see live.
	RunInteractive(cmd Command) error
}

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Cmd    string
	Stdout string
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command `%s` failed:\n%s\n%s", e.Cmd, e.Stdout, e.Stderr)
}

type systemExecutor struct{}

// System returns the Executor backed by os/exec.
func System() Executor {
	return systemExecutor{}
}

func (systemExecutor) Run(cmd Command) (Output, error) {
	log.Trace().Str("cmd", cmd.String()).Str("dir", cmd.Dir).Msg("running command")

	var stdout, stderr bytes.Buffer
	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return out, &ExitError{Cmd: cmd.String(), Stdout: out.Stdout, Stderr: out.Stderr}
		}
		return out, fmt.Errorf("failed to run `%s`: %w", cmd.String(), err)
	}
	return out, nil
}

func (systemExecutor) RunInteractive(cmd Command) error {
	log.Trace().Str("cmd", cmd.String()).Str("dir", cmd.Dir).Msg("running command interactively")

	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return &ExitError{Cmd: cmd.String()}
		}
		return fmt.Errorf("failed to run `%s`: %w", cmd.String(), err)
	}
	return nil
}
