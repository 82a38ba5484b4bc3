package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(timeout time.Duration) *ExecRunner {
	return NewExecRunner(timeout, zerolog.Nop())
}

func TestExecRunner_Success(t *testing.T) {
	r := newTestRunner(5 * time.Second)

	res := r.Run(context.Background(), Cmd("sh", "-c", "echo out; echo err 1>&2"))

	assert.True(t, res.Succeeded)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := newTestRunner(5 * time.Second)

	res := r.Run(context.Background(), Cmd("sh", "-c", "echo boom 1>&2; exit 3"))

	assert.False(t, res.Succeeded)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "boom", res.Diagnostic())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := newTestRunner(5 * time.Second)

	res := r.Run(context.Background(), Cmd("definitely-not-a-real-binary-7f3a"))

	assert.False(t, res.Succeeded)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "definitely-not-a-real-binary-7f3a")
}

func TestExecRunner_ArgumentsAreNotShellExpanded(t *testing.T) {
	r := newTestRunner(5 * time.Second)

	res := r.Run(context.Background(), Cmd("echo", "$HOME", "a;b"))

	require.True(t, res.Succeeded)
	assert.Equal(t, "$HOME a;b\n", res.Stdout)
}

func TestExecRunner_Timeout(t *testing.T) {
	r := newTestRunner(5 * time.Second)

	start := time.Now()
	res := r.Run(context.Background(), Command{Program: "sleep", Args: []string{"10"}, Timeout: 100 * time.Millisecond})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, res.Succeeded)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "timed out after 100ms")
}

func TestExecRunner_ParentCancellation(t *testing.T) {
	r := newTestRunner(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res := r.Run(ctx, Cmd("sleep", "10"))

	assert.False(t, res.Succeeded)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "context canceled")
}

func TestExecRunner_DrainsLargeOutput(t *testing.T) {
	r := newTestRunner(10 * time.Second)

	// Well beyond a pipe buffer on both streams.
	res := r.Run(context.Background(), Cmd("sh", "-c", "head -c 262144 /dev/zero | tr '\\0' a; head -c 262144 /dev/zero | tr '\\0' b 1>&2"))

	require.True(t, res.Succeeded)
	assert.Len(t, res.Stdout, 262144)
	assert.Len(t, res.Stderr, 262144)
}

func TestCommand_StringRedacts(t *testing.T) {
	c := Command{
		Program: "chip-tool",
		Args:    []string{"pairing", "ble-wifi", "3840", "20202021", "home", "hunter2"},
		Redact:  []string{"hunter2"},
	}

	assert.Equal(t, "chip-tool pairing ble-wifi 3840 20202021 home ****", c.String())
	assert.True(t, strings.HasSuffix(c.Line(), "hunter2"))
}

func TestResult_Diagnostic(t *testing.T) {
	assert.Equal(t, "exited with code 2", Result{ExitCode: 2}.Diagnostic())
	assert.Equal(t, "only stdout", Result{ExitCode: 1, Stdout: "only stdout\n"}.Diagnostic())
	assert.Equal(t, "", Result{Succeeded: true}.Diagnostic())
}
