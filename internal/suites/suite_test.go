package suites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypromo/connect-sdk-test/internal/config"
	"github.com/mypromo/connect-sdk-test/internal/connect"
	"github.com/mypromo/connect-sdk-test/internal/scenario"
	"github.com/mypromo/connect-sdk-test/internal/twin"
	"github.com/mypromo/connect-sdk-test/pkg/testutil"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

var testFixtures = config.Fixtures{
	ParentSKU:   "MP-F10005-C0000001",
	ChildSKU:    "MP-F10011-C0000001",
	Intent:      "customize",
	Quantity:    10,
	ShopURL:     "https://mypromo-demo.myshopify.com",
	CallbackURL: "https://mypromo-demo.myshopify.com/connect/callback",
	Stamp:       "2024-03-01 09:00:00",
}

func defaultSessions() []scenario.SessionSpec {
	return []scenario.SessionSpec{
		{Role: scenario.RoleMerchant, ClientID: twin.DefaultMerchantID, ClientSecret: twin.DefaultMerchantSecret},
		{Role: scenario.RoleFulfiller, ClientID: twin.DefaultFulfillerID, ClientSecret: twin.DefaultFulfillerSecret},
	}
}

func buildSuite(t *testing.T, previewDir string) []Scenario {
	t.Helper()
	cfg := &config.Config{EndpointURL: "https://connect.example.com", Fixtures: testFixtures}
	tables, err := Tables("", cfg.Vars())
	require.NoError(t, err)
	scenarios, err := Build(Options{Fixtures: testFixtures, PreviewDir: previewDir, Tables: tables})
	require.NoError(t, err)
	return scenarios
}

// runAgainstTwin runs the whole suite against a fresh twin.
func runAgainstTwin(t *testing.T, sessions []scenario.SessionSpec) (*scenario.Report, string) {
	t.Helper()
	srv := httptest.NewServer(twin.New(twin.Options{}))
	t.Cleanup(srv.Close)

	client, err := connect.NewClient(srv.URL, connect.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	dir := t.TempDir()
	report := scenario.NewRunner[Session](client).Run(context.Background(), sessions, buildSuite(t, dir))
	return report, dir
}

func TestBuildOrder(t *testing.T) {
	names := Names(buildSuite(t, ""))
	assert.Equal(t, []string{
		"general-routes",
		"client-settings-merchant",
		"client-settings-fulfiller",
		"client-connectors-list",
		"client-connectors-shopify",
		"client-connectors-magento",
		"client-jobs",
		"design",
		"orders",
		"products",
		"product-export",
		"product-import",
		"product-configurator",
		"production",
		"miscellaneous",
		"admin-routes",
	}, names)
}

func TestSuitePassesAgainstTwin(t *testing.T) {
	report, dir := runAgainstTwin(t, defaultSessions())

	for _, f := range report.Failures() {
		t.Errorf("failed assertion in %s: %s", f.Scenario, f.Message)
	}
	for _, sc := range report.Scenarios {
		assert.NotEqual(t, scenario.StatusAborted, sc.Status, "%s aborted: %s", sc.Name, sc.Reason)
	}
	assert.Equal(t, 0, report.ExitCode())

	c := report.Counts()
	assert.Equal(t, 16, c.Scenarios)
	assert.Equal(t, 16, c.Completed)
	assert.Equal(t, 44, c.Assertions)

	magento, ok := report.Scenario("client-connectors-magento")
	require.True(t, ok)
	assert.Equal(t, scenario.StepTolerated, magento.Steps[0].Status)
	assert.Contains(t, magento.Steps[0].Details, "configuration.instance_url")

	draft, ok := report.Scenario("admin-routes")
	require.True(t, ok)
	assert.Equal(t, scenario.StepSkipped, draft.Steps[0].Status)
	assert.Equal(t, "admin routes are in draft", draft.Steps[0].Reason)

	data, err := os.ReadFile(filepath.Join(dir, "preview.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestSuiteIsDeterministic(t *testing.T) {
	first, _ := runAgainstTwin(t, defaultSessions())
	second, _ := runAgainstTwin(t, defaultSessions())
	assert.Equal(t, first, second)
}

func TestEmptyCatalogSkipsProductSteps(t *testing.T) {
	srv := httptest.NewServer(twin.New(twin.Options{}))
	t.Cleanup(srv.Close)
	admin := testutil.NewAdminClient(testutil.NewTwinClient(t, srv))
	admin.InjectFault("/v1/products", twincore.FaultConfig{
		StatusCode: http.StatusOK,
		Method:     http.MethodGet,
		Body:       `{"data":[],"current_page":1,"per_page":5,"last_page":1,"total":0}`,
	}).AssertStatus(http.StatusOK)

	client, err := connect.NewClient(srv.URL, connect.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	scenarios, err := Select(buildSuite(t, t.TempDir()), []string{"products"})
	require.NoError(t, err)

	report := scenario.NewRunner[Session](client).Run(context.Background(), defaultSessions(), scenarios)
	assert.Equal(t, 0, report.ExitCode())

	sc, ok := report.Scenario("products")
	require.True(t, ok)
	assert.Equal(t, scenario.StatusCompleted, sc.Status)
	assert.Empty(t, sc.Assertions)

	skipped := map[string]string{}
	for _, st := range sc.Steps {
		if st.Status == scenario.StepSkipped {
			skipped[st.Name] = st.Reason
		}
	}
	assert.Equal(t, map[string]string{
		"check all data[0].shipping_from": "no products listed",
		"find":                            "no products listed",
		"variants":                        "no variants listed for the first product",
	}, skipped)
}

func TestMerchantSessionFailureSkipsMerchantScenarios(t *testing.T) {
	sessions := defaultSessions()
	sessions[0].ClientSecret = "wrong"

	report, _ := runAgainstTwin(t, sessions)
	assert.Equal(t, 1, report.ExitCode())
	assert.Len(t, report.Scenarios, 16, "every scenario is reported once")

	for _, name := range []string{"client-settings-merchant", "design", "orders", "products", "miscellaneous"} {
		sc, ok := report.Scenario(name)
		require.True(t, ok, name)
		assert.Equal(t, scenario.StatusSkipped, sc.Status, name)
	}
	for _, name := range []string{"client-settings-fulfiller", "production"} {
		sc, ok := report.Scenario(name)
		require.True(t, ok, name)
		assert.Equal(t, scenario.StatusCompleted, sc.Status, name)
		for _, a := range sc.Assertions {
			assert.True(t, a.Passed, a.Message)
		}
	}
}

func TestSelect(t *testing.T) {
	all := buildSuite(t, "")

	picked, err := Select(all, []string{"production", "design"})
	require.NoError(t, err)
	assert.Equal(t, []string{"design", "production"}, Names(picked), "suite order is kept")

	same, err := Select(all, nil)
	require.NoError(t, err)
	assert.Len(t, same, len(all))

	_, err = Select(all, []string{"design", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestTablesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tables:
  fulfiller_settings:
    - field: has_to_supply_carrier
      value: false
`), 0o644))

	vars := scenario.Vars{"fixture.stamp": "now", "fixture.shop_url": "https://shop.test"}
	tables, err := Tables(path, vars)
	require.NoError(t, err)

	rows, err := tables.Table("fulfiller_settings")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, false, rows[0].Value)

	shopify, err := tables.Table("shopify_connector")
	require.NoError(t, err)
	assert.Contains(t, shopify, scenario.FieldRow{Field: "configuration.shop_url", Value: "https://shop.test"})

	_, err = Tables(filepath.Join(t.TempDir(), "missing.yaml"), vars)
	assert.Error(t, err)
}

func TestBuildMissingTable(t *testing.T) {
	_, err := Build(Options{Fixtures: testFixtures, Tables: scenario.FieldTables{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merchant_settings")
}
