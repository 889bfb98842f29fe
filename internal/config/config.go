// Package config loads the harness settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

// Environment keys.
const (
	KeyEndpointURL       = "CONNECT_ENDPOINT_URL"
	KeyMerchantID        = "CONNECT_CLIENT_MERCHANT_ID"
	KeyMerchantSecret    = "CONNECT_CLIENT_MERCHANT_SECRET"
	KeyFulfillerID       = "CONNECT_CLIENT_FULFILLER_ID"
	KeyFulfillerSecret   = "CONNECT_CLIENT_FULFILLER_SECRET"
	KeyShopURL           = "CONNECT_SHOP_URL"
	KeyCallbackURL       = "CALLBACK_URL"
	KeyParentSKU         = "CONNECT_TEST_PARENT_SKU"
	KeyChildSKU          = "CONNECT_TEST_CHILD_SKU"
	KeyIntent            = "CONNECT_TEST_INTENT"
	KeyQuantity          = "CONNECT_TEST_QUANTITY"
	KeyStamp             = "CONNECT_TEST_STAMP"
	KeyTimeout           = "CONNECT_TIMEOUT"
	KeyPreviewDir        = "CONNECT_PREVIEW_DIR"
	KeyCropResponses     = "CONNECT_CROP_RESPONSES"
	KeyFieldTables       = "CONNECT_FIELD_TABLES"
	KeyLogLevel          = "LOG_LEVEL"
	defaultSKU           = "MP-F10005-C0000001"
	stampLayout          = "2006-01-02 15:04:05"
	defaultTimeout       = 30 * time.Second
	defaultQuantity      = 10
	defaultIntent        = "customize"
	defaultLogLevel      = "info"
	defaultPreviewDir    = "."
	defaultCropResponses = 0
)

// Credentials identify one API client.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Fixtures are the test data values scenarios send to the API.
type Fixtures struct {
	ParentSKU   string
	ChildSKU    string
	Intent      string
	Quantity    int
	ShopURL     string
	CallbackURL string
	// Stamp makes generated names unique per run.
	Stamp string
}

// Config is the resolved harness configuration.
type Config struct {
	EndpointURL   string
	Merchant      Credentials
	Fulfiller     Credentials
	Fixtures      Fixtures
	Timeout       time.Duration
	PreviewDir    string
	CropResponses int
	FieldTables   string
	LogLevel      string
	// EnvFile is the .env file that was read, if any.
	EnvFile string
}

// Load reads configuration from the environment. envFile names an explicit
// .env file; when empty, .env is searched in the working directory and its
// parent and a missing file is not an error.
func Load(envFile string) (*Config, error) {
	return LoadFrom(viper.New(), envFile, time.Now())
}

// LoadFrom is Load with an injected viper instance and the time used for
// the default run stamp.
func LoadFrom(v *viper.Viper, envFile string, now time.Time) (*Config, error) {
	v.SetConfigType("env")
	if envFile != "" {
		v.SetConfigFile(envFile)
	} else {
		v.SetConfigName(".env")
		v.AddConfigPath(".")
		v.AddConfigPath("..")
	}

	v.SetDefault(KeyParentSKU, defaultSKU)
	v.SetDefault(KeyChildSKU, defaultSKU)
	v.SetDefault(KeyIntent, defaultIntent)
	v.SetDefault(KeyQuantity, defaultQuantity)
	v.SetDefault(KeyTimeout, defaultTimeout.String())
	v.SetDefault(KeyPreviewDir, defaultPreviewDir)
	v.SetDefault(KeyCropResponses, defaultCropResponses)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyStamp, now.UTC().Format(stampLayout))

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if envFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading env file: %w", err)
		}
	}

	quantity, err := intValue(v, KeyQuantity)
	if err != nil {
		return nil, err
	}
	crop, err := intValue(v, KeyCropResponses)
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(str(v, KeyTimeout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyTimeout, err)
	}

	cfg := &Config{
		EndpointURL: strings.TrimRight(str(v, KeyEndpointURL), "/"),
		Merchant:    Credentials{ClientID: str(v, KeyMerchantID), ClientSecret: str(v, KeyMerchantSecret)},
		Fulfiller:   Credentials{ClientID: str(v, KeyFulfillerID), ClientSecret: str(v, KeyFulfillerSecret)},
		Fixtures: Fixtures{
			ParentSKU:   str(v, KeyParentSKU),
			ChildSKU:    str(v, KeyChildSKU),
			Intent:      str(v, KeyIntent),
			Quantity:    quantity,
			ShopURL:     strings.TrimRight(str(v, KeyShopURL), "/"),
			CallbackURL: str(v, KeyCallbackURL),
			Stamp:       str(v, KeyStamp),
		},
		Timeout:       timeout,
		PreviewDir:    str(v, KeyPreviewDir),
		CropResponses: crop,
		FieldTables:   str(v, KeyFieldTables),
		LogLevel:      strings.ToLower(str(v, KeyLogLevel)),
		EnvFile:       v.ConfigFileUsed(),
	}
	return cfg, cfg.Validate()
}

func str(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func intValue(v *viper.Viper, key string) (int, error) {
	n, err := strconv.Atoi(str(v, key))
	if err != nil {
		return 0, fmt.Errorf("%s: must be an integer, got %q", key, v.GetString(key))
	}
	return n, nil
}

// Validate reports the first configuration problem. Role credentials are
// optional: a role without them is skipped at run time.
func (c *Config) Validate() error {
	if c.EndpointURL == "" {
		return fmt.Errorf("%s is required", KeyEndpointURL)
	}
	u, err := url.Parse(c.EndpointURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http or https url, got %q", KeyEndpointURL, c.EndpointURL)
	}
	if c.Fixtures.Quantity < 1 {
		return fmt.Errorf("%s must be at least 1", KeyQuantity)
	}
	if c.CropResponses < 0 {
		return fmt.Errorf("%s must not be negative", KeyCropResponses)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyTimeout)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return nil
}

// Sessions returns the session specs for both roles in run order.
func (c *Config) Sessions() []scenario.SessionSpec {
	return []scenario.SessionSpec{
		{Role: scenario.RoleMerchant, ClientID: c.Merchant.ClientID, ClientSecret: c.Merchant.ClientSecret},
		{Role: scenario.RoleFulfiller, ClientID: c.Fulfiller.ClientID, ClientSecret: c.Fulfiller.ClientSecret},
	}
}

// Vars exposes the fixtures to field table templates as {{fixture.name}}.
func (c *Config) Vars() scenario.Vars {
	f := c.Fixtures
	return scenario.Vars{
		"fixture.parent_sku":   f.ParentSKU,
		"fixture.child_sku":    f.ChildSKU,
		"fixture.intent":       f.Intent,
		"fixture.quantity":     strconv.Itoa(f.Quantity),
		"fixture.shop_url":     f.ShopURL,
		"fixture.callback_url": f.CallbackURL,
		"fixture.stamp":        f.Stamp,
		"fixture.endpoint_url": c.EndpointURL,
	}
}
