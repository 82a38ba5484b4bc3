package runner

import (
	"context"
	"strings"
	"sync"
)

// Fake is a scripted Runner for tests. Responses are matched on the verbatim
// command line; unmatched commands behave like a missing binary.
type Fake struct {
	mu       sync.Mutex
	exact    map[string]Result
	prefixes []prefixResponse
	calls    []Command
	hook     func(Command)
}

type prefixResponse struct {
	prefix string
	result Result
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{exact: make(map[string]Result)}
}

// OK is a successful Result with the given stdout.
func OK(stdout string) Result {
	return Result{Succeeded: true, Stdout: stdout}
}

// Fail is a failed Result with the given exit code and stderr.
func Fail(exitCode int, stderr string) Result {
	return Result{ExitCode: exitCode, Stderr: stderr}
}

// Respond scripts the result for an exact program and argument list.
func (f *Fake) Respond(res Result, program string, args ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[Cmd(program, args...).Line()] = res
	return f
}

// RespondPrefix scripts the result for any command line starting with
// program followed by args.
func (f *Fake) RespondPrefix(res Result, program string, args ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefixResponse{prefix: Cmd(program, args...).Line(), result: res})
	return f
}

// OnRun registers a hook invoked with every command before it is answered.
func (f *Fake) OnRun(hook func(Command)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = hook
	return f
}

// Run records the command and returns the scripted result.
func (f *Fake) Run(ctx context.Context, c Command) Result {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	hook := f.hook
	line := c.Line()
	res, ok := f.exact[line]
	if !ok {
		for _, p := range f.prefixes {
			if strings.HasPrefix(line, p.prefix) {
				res, ok = p.result, true
				break
			}
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook(c)
	}
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1, Stderr: err.Error()}
	}
	if !ok {
		return Result{ExitCode: -1, Stderr: "exec: \"" + c.Program + "\": executable file not found in $PATH"}
	}
	if res.Succeeded {
		res.ExitCode = 0
	} else if res.ExitCode == 0 {
		res.ExitCode = 1
	}
	return res
}

// Calls returns every command run so far.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the verbatim command lines run so far.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Line()
	}
	return out
}
