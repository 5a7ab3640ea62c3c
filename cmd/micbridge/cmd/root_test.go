package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-drift/micbridge/cmd/micbridge/internal/config"
	"github.com/go-drift/micbridge/cmd/micbridge/internal/server"
	"github.com/go-drift/micbridge/pkg/errors"
	"github.com/go-drift/micbridge/pkg/microphone"
	"github.com/go-drift/micbridge/pkg/microphone/simsession"
	"github.com/go-drift/micbridge/pkg/platform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	expected := []string{"serve", "request", "call", "reset", "version"}
	commands := rootCmd.Commands()
	names := make(map[string]bool)
	for _, cmd := range commands {
		names[cmd.Name()] = true
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestRootCommandHasVersion(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("expected version to be set")
	}
}

// runCLI executes the root command with args in an isolated home and
// working directory and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Cleanup(func() { errors.SetHandler(nil) })

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default; cobra keeps flag values
// between executions of the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func startHost(t *testing.T, granted bool) string {
	t.Helper()
	platform.SetupTestDispatch(t.Cleanup)
	platform.RegisterPlugins(microphone.NewPermissionBridge(
		microphone.SessionFunc(func(done func(bool)) { done(granted) }),
	))
	ts := httptest.NewServer(server.New(config.ServerConfig{}, nil, prometheus.NewRegistry()).Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "micbridge "+rootCmd.Version+"\n", out)
}

func TestRequestCommand(t *testing.T) {
	url := startHost(t, true)
	out, err := runCLI(t, "request", "--url", url)
	require.NoError(t, err)
	assert.Equal(t, "granted\n", out)

	url = startHost(t, false)
	out, err = runCLI(t, "request", "--url", url)
	require.NoError(t, err)
	assert.Equal(t, "denied\n", out)
}

func TestRequestCommandConnectionFailure(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ts.Close()

	_, err := runCLI(t, "request", "--url", url, "--timeout", "2s")
	assert.ErrorContains(t, err, "connect to")
	assert.ErrorIs(t, err, platform.ErrNotConnected)
}

func TestCallCommand(t *testing.T) {
	url := startHost(t, true)

	out, err := runCLI(t, "call", "requestPermission", "--url", url, "--args", `{"reason":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = runCLI(t, "call", "openSettings", "--url", url)
	require.NoError(t, err)
	assert.Equal(t, "not implemented\n", out)

	out, err = runCLI(t, "call", "requestPermission", "--url", url, "--channel", "camera_permission")
	require.NoError(t, err)
	assert.Equal(t, "not implemented\n", out)
}

func TestCallCommandRejectsBadArgs(t *testing.T) {
	_, err := runCLI(t, "call", "requestPermission", "--args", "{not json")
	assert.ErrorContains(t, err, "--args")
}

func TestResetCommand(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "permissions.yaml")
	t.Setenv("MICBRIDGE_SESSION_STATE_FILE", stateFile)

	out, err := runCLI(t, "reset", "--state", "denied")
	require.NoError(t, err)
	assert.Equal(t, "microphone: denied ("+stateFile+")\n", out)

	state, err := simsession.New(simsession.NewFileStore(simsession.WithPath(stateFile)), nil).Status()
	require.NoError(t, err)
	assert.Equal(t, simsession.StateDenied, state)

	out, err = runCLI(t, "reset")
	require.NoError(t, err)
	assert.Equal(t, "microphone: not_determined ("+stateFile+")\n", out)

	_, err = runCLI(t, "reset", "--state", "maybe")
	assert.Error(t, err)
}

func TestBuildSession(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "permissions.yaml")
	base := config.SessionConfig{StateFile: stateFile, Prompt: config.PromptAllow}

	sim := base
	sim.Backend = config.BackendSimulated
	session, err := buildSession(sim, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &simsession.Session{}, session)

	granted := make(chan bool, 1)
	session.RequestRecordPermission(func(g bool) { granted <- g })
	assert.True(t, <-granted)
	_, err = os.Stat(stateFile)
	assert.NoError(t, err)

	if runtime.GOOS == "darwin" {
		t.Skip("native session is available on darwin")
	}

	auto := base
	auto.Backend = config.BackendAuto
	session, err = buildSession(auto, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &simsession.Session{}, session)

	native := base
	native.Backend = config.BackendNative
	_, err = buildSession(native, zap.NewNop())
	assert.ErrorIs(t, err, platform.ErrPlatformUnavailable)
}

func TestBuildPrompter(t *testing.T) {
	p, err := buildPrompter(config.SessionConfig{Prompt: config.PromptDeny})
	require.NoError(t, err)
	granted, err := p.PromptRecordPermission()
	require.NoError(t, err)
	assert.False(t, granted)

	p, err = buildPrompter(config.SessionConfig{Prompt: config.PromptTerminal, AppName: "demo"})
	require.NoError(t, err)
	assert.IsType(t, &simsession.TerminalPrompter{}, p)

	_, err = buildPrompter(config.SessionConfig{Prompt: "sometimes"})
	assert.Error(t, err)
}
