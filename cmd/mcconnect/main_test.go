package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codemob-dev/mc-connect/internal/handler"
	"github.com/codemob-dev/mc-connect/internal/server"
	"github.com/codemob-dev/mc-connect/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the agent goroutines and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startAgent(t *testing.T, out *lockedBuffer) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv, err := server.New(server.Config{}, handler.NewAgentMux(handler.Options{Out: out}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-errc:
		case <-time.After(5 * time.Second):
			t.Errorf("agent did not stop")
		}
	})
	return ln.Addr().String()
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPrintCommands(t *testing.T) {
	testlog.Start(t)
	var agentOut lockedBuffer
	addr := startAgent(t, &agentOut)

	out, err := runCLI(t, "--addr", addr, "print", "hello", "world")
	require.NoError(t, err)
	require.Equal(t, "acknowledge\n", out)

	_, err = runCLI(t, "--addr", addr, "println", "again")
	require.NoError(t, err)
	require.Equal(t, "hello worldagain\n", agentOut.String())
}

func TestInvokeReportsFailure(t *testing.T) {
	testlog.Start(t)
	var agentOut lockedBuffer
	addr := startAgent(t, &agentOut)

	out, err := runCLI(t, "--addr", addr, "invoke", "java/lang/System", "gc", "()V")
	require.ErrorIs(t, err, errFailure)
	require.True(t, strings.HasPrefix(out, "failure"))
}

func TestLaunchRejectsBadEnv(t *testing.T) {
	testlog.Start(t)
	var agentOut lockedBuffer
	addr := startAgent(t, &agentOut)

	_, err := runCLI(t, "--addr", addr, "launch", "/bin/true", "--env", "NOEQUALS")
	require.Error(t, err)

	// launch is disabled by default, so the agent refuses it
	_, err = runCLI(t, "--addr", addr, "launch", "/bin/true", "--env", "A=1", "--unset", "B")
	require.ErrorIs(t, err, errFailure)
}

func TestBench(t *testing.T) {
	testlog.Start(t)
	var agentOut lockedBuffer
	addr := startAgent(t, &agentOut)

	out, err := runCLI(t, "--addr", addr, "bench", "-n", "50", "--concurrency", "5", "--body", "x")
	require.NoError(t, err)
	require.Contains(t, out, "requests=50")
	require.Contains(t, out, "failures=0")
	require.Equal(t, strings.Repeat("x", 50), agentOut.String())
}

func TestZeroTimeoutWaitsIndefinitely(t *testing.T) {
	testlog.Start(t)
	cc := &commandContext{}
	ctx, cancel := cc.callContext(context.Background())
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	require.False(t, hasDeadline)
	require.NoError(t, ctx.Err())

	cc.timeout = time.Minute
	ctx, cancel = cc.callContext(context.Background())
	defer cancel()
	_, hasDeadline = ctx.Deadline()
	require.True(t, hasDeadline)
}

func TestBenchWithZeroTimeout(t *testing.T) {
	testlog.Start(t)
	var agentOut lockedBuffer
	addr := startAgent(t, &agentOut)

	out, err := runCLI(t, "--addr", addr, "--timeout", "0", "bench", "-n", "20", "--concurrency", "4", "--body", "y")
	require.NoError(t, err)
	require.Contains(t, out, "requests=20")
	require.Contains(t, out, "failures=0")
}
