// Package runner executes external tools and streams their output.
package runner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Sink receives one non-empty line of subprocess output as it arrives.
type Sink func(line string)

// command is the subset of exec.Cmd the runner needs; swappable for tests.
type command interface {
	StdoutPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
}

// Runner spawns an executable directly (no shell pass-through), forwards its
// standard output line by line to a sink, and blocks until it exits.
//
// A separate goroutine drains the stdout pipe while the caller blocks on
// process exit; reading synchronously can deadlock against a subprocess
// producing unbounded output. Lines reach the sink in emission order. There
// is no timeout and no retry: a run completes or is killed externally, and
// the exit-code classification upstream accounts for signal deaths.
type Runner struct {
	execCommand func(name string, args ...string) command
}

func New() *Runner {
	return &Runner{
		execCommand: func(name string, args ...string) command {
			c := exec.Command(name, args...)
			c.Stderr = os.Stderr

			return c
		},
	}
}

// Run executes the given path with arguments and returns the raw exit code.
// The error return covers failures to launch or read, not non-zero exits.
func (r *Runner) Run(path string, args []string, sink Sink) (int, error) {
	cmd := r.execCommand(path, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("failed to open stdout pipe for %s: %w", path, err)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start %s: %w", path, err)
	}

	drained := make(chan struct{})

	go func() {
		defer close(drained)

		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			if line := scanner.Text(); line != "" && sink != nil {
				sink(line)
			}
		}
	}()

	<-drained

	err = cmd.Wait()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}

		return -1, fmt.Errorf("failed to run %s: %w", path, err)
	}

	return 0, nil
}
