package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/jj/internal/errs"
)

const instancesDoc = `[
  {"instance_type": "t3.micro", "vCPU": 2, "clock_speed_ghz": 2.5, "memory": 1.0,
   "pricing": {"us-west-2": {"linux": {"ondemand": "0.0104"}}}},
  {"instance_type": "t3.small", "vCPU": 2, "clock_speed_ghz": 2.5, "memory": 2.0,
   "pricing": {"us-east-1": {"linux": {"ondemand": "0.0208"}}}}
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestScrapeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, instancesDoc)
	}))
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "instances.txt")
	_, err := execute(t, "scrape", "--url", srv.URL, "--output", output, "--region", "us-west-2", "--quiet")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "t3.micro")
	assert.Contains(t, string(data), "$0.0104/hr")
	assert.NotContains(t, string(data), "t3.small")
}

func TestScrapeCommandUnknownZone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, instancesDoc)
	}))
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "instances.txt")
	_, err := execute(t, "scrape", "--url", srv.URL, "--output", output, "--region", "us-west-2-lax-1", "--quiet")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRenderCommand(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "instances.json"), []byte(instancesDoc), 0o644))

	out, err := execute(t, "render", "--data-dir", dataDir, "--regions", "us-west-2,eu-west-1")
	require.NoError(t, err)
	assert.Contains(t, out, "us-west-2")
	assert.Contains(t, out, "eu-west-1")

	west, err := os.ReadFile(filepath.Join(dataDir, "us-west-2-instances-table.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(west), "t3.micro")

	eu, err := os.ReadFile(filepath.Join(dataDir, "eu-west-1-instances-table.txt"))
	require.NoError(t, err)
	assert.Empty(t, eu)
}

func TestRenderCommandFromEnv(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "instances.json"), []byte(instancesDoc), 0o644))
	t.Setenv("JJ_DATA_DIR", dataDir)
	t.Setenv("JJ_REGIONS", "us-east-1")

	_, err := execute(t, "render", "-q")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "us-east-1-instances-table.txt"))
	assert.NoFileExists(t, filepath.Join(dataDir, "us-west-2-instances-table.txt"))
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		kind errs.Kind
	}{
		{name: "missing cached document", args: []string{"render", "--data-dir", dir, "-q"}, kind: errs.KindIO},
		{name: "malformed region", args: []string{"render", "--data-dir", dir, "--regions", "Oregon"}, kind: errs.KindConfig},
		{name: "bad log level", args: []string{"render", "--data-dir", dir, "--log-level", "loud"}, kind: errs.KindConfig},
		{name: "resize without instance", args: []string{"resize", "--hostname", "devbox"}, kind: errs.KindConfig},
		{name: "price without type", args: []string{"price"}, kind: errs.KindConfig},
		{name: "price in zone without pricing location", args: []string{"price", "-t", "m5.large", "--region", "us-west-2-lax-1"}, kind: errs.KindConfig},
		{name: "missing config file", args: []string{"render", "--config", filepath.Join(dir, "nope.yaml")}, kind: errs.KindConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestReportFailureFollowsLogFormat(t *testing.T) {
	tests := []struct {
		name string
		args []string
		json bool
	}{
		{name: "json", args: []string{"render", "--data-dir", t.TempDir(), "--log-format", "json", "-q"}, json: true},
		{name: "console default", args: []string{"render", "--data-dir", t.TempDir(), "-q"}},
		{name: "invalid format falls back to console", args: []string{"render", "--data-dir", t.TempDir(), "--log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCommand()
			root.SetArgs(tt.args)
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			cmd, err := root.ExecuteContextC(context.Background())
			require.Error(t, err)

			var buf bytes.Buffer
			reportFailure(cmd, &buf, err)

			var entry map[string]interface{}
			if !tt.json {
				assert.Error(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Contains(t, buf.String(), "jj failed")
				return
			}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "error", entry["level"])
			assert.Equal(t, string(errs.KindOf(err)), entry["kind"])
			assert.Equal(t, "jj failed", entry["message"])
		})
	}
}

func TestResizeRejectsUnlistedType(t *testing.T) {
	table := filepath.Join(t.TempDir(), "instances.txt")
	require.NoError(t, os.WriteFile(table, []byte("t3.micro  2 vCPU  2.5  1Gb  $0.0104/hr\n"), 0o644))

	_, err := execute(t, "resize", "--instance-id", "i-0abc", "--hostname", "devbox", "--table", table, "--type", "p4d.24xlarge", "-q")
	require.Error(t, err)
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
	assert.Contains(t, err.Error(), "p4d.24xlarge")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jj version dev")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "dev"`)
}
