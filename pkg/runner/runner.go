// Package runner executes external programs and captures their output.
//
// A Runner never returns an error: spawn failures, non-zero exits, timeouts
// and cancellation all surface as a Result with Succeeded=false. Arguments
// are always passed as a list, never through a shell.
package runner

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Command describes one external program invocation.
type Command struct {
	Program string
	Args    []string

	// Timeout bounds the invocation. Zero means the runner default.
	Timeout time.Duration

	// Redact lists argument values masked when the command is logged.
	Redact []string
}

// String renders the command for logs with redacted values masked.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Program)
	for _, a := range c.Args {
		if a != "" && slices.Contains(c.Redact, a) {
			a = "****"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Line renders the command verbatim, without redaction.
func (c Command) Line() string {
	return strings.Join(append([]string{c.Program}, c.Args...), " ")
}

// Result is the captured outcome of a Command.
type Result struct {
	Succeeded bool
	Stdout    string
	Stderr    string
	ExitCode  int
}

// Diagnostic returns the most specific failure text available: stderr,
// then stdout, then a generic exit-code message.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}
	if r.Succeeded {
		return ""
	}
	return "exited with code " + strconv.Itoa(r.ExitCode)
}

// Runner runs external programs.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// Cmd is shorthand for a Command with the default timeout.
func Cmd(program string, args ...string) Command {
	return Command{Program: program, Args: args}
}
