package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
	"github.com/mypromo/connect-sdk-test/internal/twin"
)

type env struct {
	srv       *httptest.Server
	client    *Client
	merchant  *Session
	fulfiller *Session
}

func setup(t *testing.T) *env {
	t.Helper()
	srv := httptest.NewServer(twin.New(twin.Options{}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ctx := context.Background()
	m, err := c.Connect(ctx, twin.DefaultMerchantID, twin.DefaultMerchantSecret)
	require.NoError(t, err)
	f, err := c.Connect(ctx, twin.DefaultFulfillerID, twin.DefaultFulfillerSecret)
	require.NoError(t, err)

	return &env{srv: srv, client: c, merchant: m, fulfiller: f}
}

func num(t *testing.T, p Payload, key string) int {
	t.Helper()
	v, ok := p[key].(float64)
	require.Truef(t, ok, "expected numeric %q in %v", key, p)
	return int(v)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := NewClient("http://example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.BaseURL())
}

func TestConnect(t *testing.T) {
	e := setup(t)
	assert.Equal(t, twin.DefaultMerchantID, e.merchant.ClientID())

	status, err := e.merchant.Misc().APIStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", status["message"])
	assert.Equal(t, "merchant", status["client_type"])
}

func TestConnectFailures(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.client.Connect(ctx, twin.DefaultMerchantID, "wrong")
	require.Error(t, err)
	assert.Equal(t, apierr.KindResponse, apierr.KindOf(err))
	assert.Equal(t, "invalid_client", apierr.CodeOf(err))

	_, err = e.client.Connect(ctx, " ", "")
	require.Error(t, err)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
	assert.Contains(t, apierr.DetailsOf(err), "client_id")
	assert.Contains(t, apierr.DetailsOf(err), "client_secret")
}

func TestConnectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)
	_, err = c.Connect(context.Background(), "id", "secret")
	require.Error(t, err)
	assert.Equal(t, apierr.KindRequest, apierr.KindOf(err))
}

func TestConnectRejectsStatusNotOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"t","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"MAINTENANCE"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	_, err = c.Connect(context.Background(), "id", "secret")
	require.Error(t, err)
	assert.Equal(t, "status_not_ok", apierr.CodeOf(err))
}

func TestDecodeResponseError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
		fields  []string
	}{
		{"validation payload", 422, `{"message":"The given data was invalid.","code":"validation_failed","errors":{"sku":["bad"]}}`, "validation_failed", "The given data was invalid.", []string{"sku"}},
		{"numeric code", 404, `{"message":"Not found","code":404}`, "404", "Not found", nil},
		{"missing code", 409, `{"message":"Conflict"}`, "409", "Conflict", nil},
		{"plain text", 502, `upstream down`, "502", "Bad Gateway", nil},
		{"empty body", 500, ``, "500", "Internal Server Error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeResponseError(tt.status, []byte(tt.body))
			var re *apierr.ResponseError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.Status)
			assert.Equal(t, tt.code, re.Code)
			assert.Equal(t, tt.message, re.Message)
			for _, f := range tt.fields {
				assert.Contains(t, re.Errors, f)
			}
		})
	}
}

func TestSettings(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.merchant.ClientSettings().UpdateMerchant(ctx, MerchantSettings{
		ActivateNewProducts:   Bool(true),
		AdjustMaxUpPercentage: Int(0),
	})
	require.NoError(t, err)

	got, err := e.merchant.ClientSettings().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, got["activate_new_products"])
	assert.EqualValues(t, 0, got["adjust_max_up_percentage"])

	_, err = e.merchant.ClientSettings().UpdateMerchant(ctx, MerchantSettings{AdjustMaxUpPercentage: Int(101)})
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	_, err = e.fulfiller.ClientSettings().UpdateFulfiller(ctx, FulfillerSettings{HasToSupplyCarrier: Bool(true)})
	require.NoError(t, err)
	got, err = e.fulfiller.ClientSettings().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, got["has_to_supply_carrier"])
	assert.NotContains(t, got, "price_reset_logic")
}

func TestConnectorsAndJobs(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.merchant.ClientConnectors().Update(ctx, ClientConnector{
		ConnectorKey: "shopify",
		Target:       TargetSalesChannel,
		Configuration: ShopifyConfiguration{
			ShopName: "demo",
			Token:    "shpat_1",
			ShopURL:  "https://demo.myshopify.com",
		},
	})
	require.NoError(t, err)

	list, err := e.merchant.ClientConnectors().All(ctx, ConnectorOptions{ConnectorKey: "shopify"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list["total"])

	_, err = e.merchant.ClientConnectors().Update(ctx, ClientConnector{ConnectorKey: "magento", Target: TargetSalesChannel,
		Configuration: MagentoConfiguration{InstanceURL: "url", APIUsername: "u", APIPassword: "p"}})
	require.Error(t, err)
	assert.Contains(t, apierr.DetailsOf(err), "configuration.instance_url")

	_, err = e.merchant.ClientConnectors().Update(ctx, ClientConnector{})
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	jobs, err := e.merchant.ClientJobs().All(ctx, PageOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, jobs["total"])

	job, err := e.merchant.ClientJobs().Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "done", job["status"])

	_, err = e.merchant.ClientJobs().Find(ctx, 3)
	assert.Equal(t, apierr.KindResponse, apierr.KindOf(err), "jobs of another client are not visible")

	_, err = e.merchant.ClientJobs().Find(ctx, 0)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
}

func TestRoleRestrictions(t *testing.T) {
	e := setup(t)
	_, err := e.fulfiller.Orders().Find(context.Background(), 1)
	var re *apierr.ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusForbidden, re.Status)
}
