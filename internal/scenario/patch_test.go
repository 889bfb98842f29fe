package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

type settingsModel struct {
	CarrierRequired *bool `json:"carrier_required,omitempty"`
	ResetLogic      *int  `json:"price_reset_logic,omitempty"`
	Nested          *struct {
		Currency string `json:"currency,omitempty"`
	} `json:"nested,omitempty"`
}

type settingsSession struct {
	stored map[string]any
	// override forces a value on read-back regardless of what was patched.
	override map[string]any
}

func settingsProvider(override map[string]any) Provider[*settingsSession] {
	return ProviderFunc[*settingsSession](func(context.Context, string, string) (*settingsSession, error) {
		return &settingsSession{stored: map[string]any{}, override: override}, nil
	})
}

func settingsScenario(t *testing.T, rows FieldTable) Scenario[*settingsSession] {
	t.Helper()
	sc, err := PatchVerify[*settingsSession, settingsModel]{
		Name:       "settings",
		Role:       RoleMerchant,
		Rows:       rows,
		ReadPrefix: "data",
		Patch: func(_ context.Context, s *settingsSession, m settingsModel) (any, error) {
			doc, err := normalize(m)
			if err != nil {
				return nil, err
			}
			for k, v := range doc.(map[string]any) {
				s.stored[k] = v
			}
			return map[string]any{"data": s.stored}, nil
		},
		Get: func(_ context.Context, s *settingsSession) (any, error) {
			out := map[string]any{}
			for k, v := range s.stored {
				out[k] = v
			}
			for k, v := range s.override {
				out[k] = v
			}
			return map[string]any{"data": out}, nil
		},
	}.Build()
	require.NoError(t, err)
	return sc
}

var carrierRow = FieldTable{{Field: "carrier_required", Value: true}}

func TestPatchVerify_RoundTrip(t *testing.T) {
	rows := FieldTable{
		{Field: "carrier_required", Value: true},
		{Field: "price_reset_logic", Value: 1},
		{Field: "nested.currency", Value: "EUR"},
	}
	sc := settingsScenario(t, rows)
	names := make([]string, 0, len(sc.Steps))
	for _, st := range sc.Steps {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"patch", "get", "verify carrier_required", "verify price_reset_logic", "verify nested.currency"}, names)

	report := NewRunner(settingsProvider(nil)).Run(context.Background(), bothRoles, []Scenario[*settingsSession]{sc})
	res := report.Scenarios[0]
	assert.Equal(t, StatusCompleted, res.Status)
	require.Len(t, res.Assertions, 3)
	for _, a := range res.Assertions {
		assert.True(t, a.Passed, a.Message)
	}
	assert.Equal(t, 0, report.ExitCode())
}

func TestPatchVerify_NoVerifyRowsAreSentOnly(t *testing.T) {
	sc := settingsScenario(t, FieldTable{
		{Field: "carrier_required", Value: true},
		{Field: "price_reset_logic", Value: 2, NoVerify: true},
	})
	require.Len(t, sc.Steps, 3)

	var session *settingsSession
	provider := ProviderFunc[*settingsSession](func(ctx context.Context, id, secret string) (*settingsSession, error) {
		s, err := settingsProvider(nil).Connect(ctx, id, secret)
		session = s
		return s, err
	})
	report := NewRunner[*settingsSession](provider).Run(context.Background(), []SessionSpec{{Role: RoleMerchant}}, []Scenario[*settingsSession]{sc})
	require.Len(t, report.Scenarios[0].Assertions, 1)
	assert.EqualValues(t, 2, session.stored["price_reset_logic"])
}

func TestPatchVerify_ReadBackMismatch(t *testing.T) {
	sc := settingsScenario(t, carrierRow)
	report := NewRunner(settingsProvider(map[string]any{"carrier_required": false})).
		Run(context.Background(), bothRoles, []Scenario[*settingsSession]{sc})

	res := report.Scenarios[0]
	require.Len(t, res.Assertions, 1)
	a := res.Assertions[0]
	assert.False(t, a.Passed)
	assert.Contains(t, a.Message, "false")
	assert.Contains(t, a.Message, "true")
	assert.Equal(t, 1, report.ExitCode())
}

func TestPatchVerify_SetterErrorIsValidation(t *testing.T) {
	sc := settingsScenario(t, FieldTable{{Field: "carrier_required", Value: "not-a-bool"}})
	report := NewRunner(settingsProvider(nil)).Run(context.Background(), bothRoles, []Scenario[*settingsSession]{sc})

	res := report.Scenarios[0]
	assert.Equal(t, StatusAborted, res.Status)
	assert.Equal(t, apierr.KindValidation, res.Steps[0].Kind)
	assert.Contains(t, res.Steps[0].Details, "carrier_required")
}

func TestPatchVerify_TolerantPatch(t *testing.T) {
	sc, err := PatchVerify[*settingsSession, map[string]any]{
		Name:          "connectors",
		Role:          RoleMerchant,
		Rows:          carrierRow,
		TolerantPatch: true,
		Patch: func(context.Context, *settingsSession, map[string]any) (any, error) {
			return nil, &apierr.ResponseError{Status: 422, Message: "rejected"}
		},
		Get: func(context.Context, *settingsSession) (any, error) {
			return map[string]any{"carrier_required": "1"}, nil
		},
	}.Build()
	require.NoError(t, err)

	report := NewRunner(settingsProvider(nil)).Run(context.Background(), bothRoles, []Scenario[*settingsSession]{sc})
	res := report.Scenarios[0]
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, StepTolerated, res.Steps[0].Status)
	assert.True(t, res.Assertions[0].Passed)
}

func TestPatchVerify_BuildErrors(t *testing.T) {
	_, err := PatchVerify[*settingsSession, settingsModel]{Name: "x", Rows: carrierRow}.Build()
	assert.Error(t, err)

	_, err = PatchVerify[*settingsSession, settingsModel]{
		Name:  "x",
		Patch: func(context.Context, *settingsSession, settingsModel) (any, error) { return nil, nil },
		Get:   func(context.Context, *settingsSession) (any, error) { return nil, nil },
	}.Build()
	assert.Error(t, err)
}

func TestJSONSetter(t *testing.T) {
	var m settingsModel
	require.NoError(t, JSONSetter(&m, "carrier_required", true))
	require.NoError(t, JSONSetter(&m, "nested.currency", "EUR"))
	require.NotNil(t, m.CarrierRequired)
	assert.True(t, *m.CarrierRequired)
	require.NotNil(t, m.Nested)
	assert.Equal(t, "EUR", m.Nested.Currency)

	assert.Error(t, JSONSetter(&m, "unknown_field", 1))
	assert.Error(t, JSONSetter(&m, "price_reset_logic", "one"))

	var mm map[string]any
	require.NoError(t, JSONSetter(&mm, "a.b", 1))
	assert.Equal(t, map[string]any{"a": map[string]any{"b": float64(1)}}, mm)
}
