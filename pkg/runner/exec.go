package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout applies when neither the Command nor the ExecRunner sets one.
const DefaultTimeout = 30 * time.Second

// ExecRunner runs commands as child processes of the current process.
type ExecRunner struct {
	timeout time.Duration
	logger  zerolog.Logger
}

// NewExecRunner creates an ExecRunner. A zero timeout selects DefaultTimeout.
func NewExecRunner(timeout time.Duration, logger zerolog.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{
		timeout: timeout,
		logger:  logger.With().Str("component", "runner").Logger(),
	}
}

// Run spawns exactly one child, drains stdout and stderr, and waits for exit.
func (r *ExecRunner) Run(ctx context.Context, c Command) Result {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.Program, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren holding the pipes open must not stall Wait forever.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case err == nil:
		res.Succeeded = true
		res.ExitCode = 0
	case ctx.Err() != nil:
		res.ExitCode = -1
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("%s: %v", c.Program, ctx.Err()))
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("%s timed out after %s", c.Program, timeout))
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Spawn failure: binary missing, permission denied, ...
			res.ExitCode = -1
			res.Stderr = appendLine(res.Stderr, err.Error())
		}
	}

	r.logger.Debug().
		Str("command", c.String()).
		Int("exit_code", res.ExitCode).
		Dur("elapsed", elapsed).
		Msg("command finished")

	return res
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	if s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s + line
}
