package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/nspcc-dev/zkp-registry/cli/app"
	"github.com/nspcc-dev/zkp-registry/cli/registry"
	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/nspcc-dev/zkp-registry/pkg/core"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/services/rpcsrv"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"go.uber.org/zap/zaptest"
)

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// Host is a registry instance (can be empty).
	Host *core.Host
	// RPC is an RPC server to query (can be empty).
	RPC *rpcsrv.Server
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
	// In contains command input.
	In *bytes.Buffer
}

func testAddress(t *testing.T, b byte) string {
	raw := make([]byte, 20)
	raw[0] = b
	s, err := address.Bech32{Prefix: "wasm"}.Encode(raw)
	require.NoError(t, err)
	return s
}

func newTestHost(t *testing.T, f func(*config.Config)) (*core.Host, *rpcsrv.Server) {
	cfg := config.Default()
	cfg.ApplicationConfiguration.RPC.Enabled = true
	cfg.ApplicationConfiguration.RPC.Addresses = []string{"127.0.0.1:0"}
	if f != nil {
		f(&cfg)
	}

	logger := zaptest.NewLogger(t)
	host, err := core.NewHost(storage.NewMemoryStore(), cfg.ProtocolConfiguration, 0, logger)
	require.NoError(t, err, "could not create registry")

	rpcServer := rpcsrv.New(host, cfg.ProtocolConfiguration, cfg.ApplicationConfiguration.RPC, logger, make(chan error, 1))
	require.NoError(t, rpcServer.Start())
	return host, rpcServer
}

func newExecutor(t *testing.T, needHost bool) *executor {
	return newExecutorWithConfig(t, needHost, nil)
}

func newExecutorWithConfig(t *testing.T, needHost bool, f func(*config.Config)) *executor {
	e := &executor{
		CLI: app.New(),
		Out: bytes.NewBuffer(nil),
		Err: bytes.NewBuffer(nil),
		In:  bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	registry.Stdin = e.In
	if needHost {
		e.Host, e.RPC = newTestHost(t, f)
	}
	t.Cleanup(func() {
		registry.Stdin = os.Stdin
		e.Close(t)
	})
	return e
}

func (e *executor) Close(t *testing.T) {
	if e.RPC != nil {
		e.RPC.Shutdown()
	}
	if e.Host != nil {
		require.NoError(t, e.Host.Close())
	}
}

// Endpoint returns HTTP RPC endpoint of the test node.
func (e *executor) Endpoint() string {
	return "http://" + e.RPC.Addresses()[0]
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	return e.CLI.Run(args)
}
