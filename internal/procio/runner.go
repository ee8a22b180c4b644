// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Package procio runs external commands and exposes their output as a
// line stream. Stderr is merged into stdout so progress chatter from
// tools like pg_dump (which reports on stderr) arrives in order.
package procio

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ErrWaitTimeout is returned by Wait when the process has not exited
// within the given timeout. The process is left running; there is no
// escalation path.
var ErrWaitTimeout = errors.New("timed out waiting for process exit")

// Process is a started subprocess with a drainable line stream.
type Process interface {
	// Lines calls fn for each output line until EOF or until fn returns
	// an error. The stream is finite and not restartable. Callers must
	// drain it before Wait to avoid blocking the child on a full pipe.
	Lines(fn func(line string) error) error

	// Wait blocks until the process exits or the timeout elapses.
	Wait(timeout time.Duration) error
}

// Starter spawns subprocesses. The pipeline and tailers depend on this
// seam rather than on os/exec directly.
type Starter interface {
	Start(name string, args []string, extraEnv []string) (Process, error)
}

// ExecStarter starts real OS processes.
type ExecStarter struct{}

// Handle wraps a running command and its merged output pipe.
type Handle struct {
	cmd *exec.Cmd
	out *os.File
}

// Start spawns name with args, appending extraEnv ("KEY=value" entries)
// to the inherited environment. Stdout and stderr share one pipe.
func (ExecStarter) Start(name string, args []string, extraEnv []string) (Process, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("open output pipe: %w", err)
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	// The child holds the write end now; closing ours lets the read end
	// see EOF when the child exits.
	pw.Close()

	return &Handle{cmd: cmd, out: pr}, nil
}

// Lines drains the merged output stream line by line.
func (h *Handle) Lines(fn func(line string) error) error {
	defer h.out.Close()

	scanner := bufio.NewScanner(h.out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Wait blocks until exit or timeout. On timeout the child keeps running
// and its eventual exit status is discarded.
func (h *Handle) Wait(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return ErrWaitTimeout
	}
}
