package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(KeyEndpointURL, "https://connect.example.com/")

	cfg, err := LoadFrom(viper.New(), "", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "https://connect.example.com", cfg.EndpointURL)
	assert.Equal(t, defaultSKU, cfg.Fixtures.ParentSKU)
	assert.Equal(t, defaultSKU, cfg.Fixtures.ChildSKU)
	assert.Equal(t, "customize", cfg.Fixtures.Intent)
	assert.Equal(t, 10, cfg.Fixtures.Quantity)
	assert.Equal(t, "2024-03-01 09:00:00", cfg.Fixtures.Stamp)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, ".", cfg.PreviewDir)
	assert.Equal(t, 0, cfg.CropResponses)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.EnvFile)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeEnv(t, `CONNECT_ENDPOINT_URL=https://sandbox.connect.example.com
CONNECT_CLIENT_MERCHANT_ID=m-1
CONNECT_CLIENT_MERCHANT_SECRET=m-secret
CONNECT_TEST_QUANTITY=3
CONNECT_TIMEOUT=5s
CONNECT_CROP_RESPONSES=200
LOG_LEVEL=DEBUG
`)

	cfg, err := LoadFrom(viper.New(), path, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.EnvFile)
	assert.Equal(t, Credentials{ClientID: "m-1", ClientSecret: "m-secret"}, cfg.Merchant)
	assert.Equal(t, Credentials{}, cfg.Fulfiller)
	assert.Equal(t, 3, cfg.Fixtures.Quantity)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 200, cfg.CropResponses)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvironmentOverridesEnvFile(t *testing.T) {
	path := writeEnv(t, "CONNECT_ENDPOINT_URL=https://file.example.com\nCONNECT_TEST_INTENT=upload\n")
	t.Setenv(KeyEndpointURL, "http://127.0.0.1:8080")

	cfg, err := LoadFrom(viper.New(), path, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.EndpointURL)
	assert.Equal(t, "upload", cfg.Fixtures.Intent)
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	_, err := LoadFrom(viper.New(), filepath.Join(t.TempDir(), "missing.env"), fixedNow)
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing endpoint", map[string]string{}, KeyEndpointURL + " is required"},
		{"relative endpoint", map[string]string{KeyEndpointURL: "connect.example.com"}, "http or https"},
		{"quantity not a number", map[string]string{KeyEndpointURL: "https://x.test", KeyQuantity: "ten"}, "must be an integer"},
		{"quantity too low", map[string]string{KeyEndpointURL: "https://x.test", KeyQuantity: "0"}, "at least 1"},
		{"negative crop", map[string]string{KeyEndpointURL: "https://x.test", KeyCropResponses: "-1"}, "must not be negative"},
		{"bad timeout", map[string]string{KeyEndpointURL: "https://x.test", KeyTimeout: "soon"}, KeyTimeout},
		{"zero timeout", map[string]string{KeyEndpointURL: "https://x.test", KeyTimeout: "0s"}, "must be positive"},
		{"bad log level", map[string]string{KeyEndpointURL: "https://x.test", KeyLogLevel: "chatty"}, KeyLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(KeyEndpointURL, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(viper.New(), "", fixedNow)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSessionsAndVars(t *testing.T) {
	cfg := &Config{
		EndpointURL: "https://connect.example.com",
		Merchant:    Credentials{ClientID: "m", ClientSecret: "ms"},
		Fixtures: Fixtures{
			ParentSKU: "P",
			ChildSKU:  "C",
			Intent:    "upload",
			Quantity:  2,
			ShopURL:   "https://shop.example.com",
			Stamp:     "2024-03-01 09:00:00",
		},
	}

	sessions := cfg.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "merchant", string(sessions[0].Role))
	assert.Equal(t, "m", sessions[0].ClientID)
	assert.Equal(t, "fulfiller", string(sessions[1].Role))
	assert.Empty(t, sessions[1].ClientID)

	vars := cfg.Vars()
	assert.Equal(t, "P", vars["fixture.parent_sku"])
	assert.Equal(t, "2", vars["fixture.quantity"])
	assert.Equal(t, "https://shop.example.com", vars["fixture.shop_url"])
	assert.Equal(t, "2024-03-01 09:00:00", vars["fixture.stamp"])
}
