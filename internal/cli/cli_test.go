package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypromo/connect-sdk-test/internal/config"
	"github.com/mypromo/connect-sdk-test/internal/twin"
)

// execute runs the root command with args and fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	envFile, listTables = "", ""
	runFormat, runOnly, runVerbose, runNoColor = "text", nil, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// useTwin points the configuration at a fresh twin with the default clients.
func useTwin(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(twin.New(twin.Options{}))
	t.Cleanup(srv.Close)

	t.Setenv(config.KeyEndpointURL, srv.URL)
	t.Setenv(config.KeyMerchantID, twin.DefaultMerchantID)
	t.Setenv(config.KeyMerchantSecret, twin.DefaultMerchantSecret)
	t.Setenv(config.KeyFulfillerID, twin.DefaultFulfillerID)
	t.Setenv(config.KeyFulfillerSecret, twin.DefaultFulfillerSecret)
	t.Setenv(config.KeyShopURL, "https://mypromo-demo.myshopify.com")
	t.Setenv(config.KeyChildSKU, "MP-F10011-C0000001")
	t.Setenv(config.KeyStamp, "2024-03-01 09:00:00")
	t.Setenv(config.KeyPreviewDir, t.TempDir())
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sdktest version dev\n", out)
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 16)
	assert.True(t, strings.HasPrefix(lines[0], "general-routes"))
	assert.Contains(t, lines[1], "Client Settings Merchant")
	assert.Contains(t, lines[7], "Design Module")
	assert.True(t, strings.HasPrefix(lines[15], "admin-routes"))
}

func TestListRejectsMissingTables(t *testing.T) {
	_, err := execute(t, "list", "--field-tables", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunText(t *testing.T) {
	useTwin(t)

	out, err := execute(t, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenarios: 16 run, 16 completed, 0 aborted, 0 skipped")
	assert.Contains(t, out, "Results: 44 passed, 0 failed, 44 total")
	assert.Contains(t, out, "PASS")
}

func TestRunJSONOnly(t *testing.T) {
	useTwin(t)

	out, err := execute(t, "--format", "json", "--only", "design,orders")
	require.NoError(t, err)

	var got struct {
		ExitCode  int `json:"exit_code"`
		Scenarios []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 0, got.ExitCode)
	require.Len(t, got.Scenarios, 2)
	assert.Equal(t, "design", got.Scenarios[0].Name)
	assert.Equal(t, "orders", got.Scenarios[1].Name)
}

func TestRunFailureReturnsSentinel(t *testing.T) {
	useTwin(t)
	t.Setenv(config.KeyMerchantSecret, "wrong")

	_, err := execute(t, "--no-color", "--only", "miscellaneous")
	assert.ErrorIs(t, err, errRunFailed)
}

func TestRunRejectsBadInput(t *testing.T) {
	useTwin(t)

	_, err := execute(t, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "--only", "nope")
	assert.ErrorContains(t, err, "nope")
}

func TestRunRequiresEndpoint(t *testing.T) {
	t.Setenv(config.KeyEndpointURL, "")
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("LOG_LEVEL=info\n"), 0o644))

	_, err := execute(t, "--env-file", envPath)
	assert.ErrorContains(t, err, config.KeyEndpointURL)
}
