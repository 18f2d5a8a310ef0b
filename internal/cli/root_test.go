package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacapoday/share/internal/cli"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	tc := cli.NewRootCmd("test_share", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	tc.SetArgs(args)
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScenarioCmds(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args []string
		want string
	}{
		"tree chain": {
			args: []string{"tree", "--depth", "3"},
			want: "nodes=3 finalized=3 dangling=0\n",
		},
		"tree fanout": {
			args: []string{"tree", "--depth=5", "--fanout=2"},
			want: "nodes=15 finalized=15 dangling=0\n",
		},
		"counter": {
			args: []string{"counter", "--threads", "4", "--iterations", "250"},
			want: "want=1000 got=1000\n",
		},
		"pipeline": {
			args: []string{"pipeline", "--producers", "3", "--messages", "50"},
			want: "received=150 producers=3\n",
		},
		"json logs": {
			args: []string{"counter", "--threads=2", "--iterations=5", "--log-format=json", "--log-level=error"},
			want: "want=10 got=10\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stdout, stderr, err := run(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, stdout)
			assert.Empty(t, stderr, "stderr should be empty")
		})
	}
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "share.yaml")
	err := os.WriteFile(path, []byte("counter:\n  threads: 3\n  iterations: 7\n"), 0o600)
	require.NoError(t, err)

	stdout, _, err := run(t, "counter", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "want=21 got=21\n", stdout)

	// Flags win over the file.
	stdout, _, err = run(t, "counter", "--config", path, "--threads", "1")
	require.NoError(t, err)
	assert.Equal(t, "want=7 got=7\n", stdout)
}

func TestInvalidArgs(t *testing.T) {
	t.Parallel()

	tcs := map[string][]string{
		"zero depth":      {"tree", "--depth", "0"},
		"negative fanout": {"tree", "--fanout=-1"},
		"bad log level":   {"tree", "--log-level", "loud"},
		"bad log format":  {"tree", "--log-format", "xml"},
		"missing config":  {"pipeline", "--config", "/nonexistent/share.yaml"},
		"no producers":    {"pipeline", "--producers", "0"},
		"positional arg":  {"counter", "extra"},
		"unknown command": {"nope"},
	}

	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := run(t, args...)
			require.Error(t, err)
		})
	}
}
