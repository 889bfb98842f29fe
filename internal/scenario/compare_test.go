package scenario

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		actual   any
		expected any
		want     bool
	}{
		{"bool equal", true, true, true},
		{"bool differs", false, true, false},
		{"bool from string true", "true", true, true},
		{"bool from string one", "1", true, true},
		{"bool from string zero", "0", false, true},
		{"bool from number", float64(1), true, true},
		{"bool from number zero", float64(0), false, true},
		{"bool from number two", float64(2), true, false},
		{"bool from junk string", "yes", true, false},
		{"number equal", float64(1), 1, true},
		{"number from numeric string", "0", 0, true},
		{"number from decimal string", "12.50", 12.5, true},
		{"number differs", float64(2), 1, false},
		{"number vs bool", true, 1, false},
		{"json number", json.Number("5"), 5, true},
		{"large ints differ", int64(9007199254740993), int64(9007199254740992), false},
		{"large json number vs int", json.Number("9007199254740993"), int64(9007199254740992), false},
		{"large numeric string vs uint", "18446744073709551615", uint64(18446744073709551614), false},
		{"large ints equal", uint64(9007199254740993), int64(9007199254740993), true},
		{"nested large ints differ", map[string]any{"id": int64(9007199254740993)}, map[string]any{"id": int64(9007199254740992)}, false},
		{"string equal", "EUR", "EUR", true},
		{"string differs", "USD", "EUR", false},
		{"string vs number", float64(1), "1", true},
		{"string vs bool", true, "true", true},
		{"string vs nil", nil, "EUR", false},
		{"nil equal", nil, nil, true},
		{"nil vs value", "x", nil, false},
		{"map equal", map[string]any{"a": float64(1)}, map[string]any{"a": 1}, true},
		{"map differs", map[string]any{"a": float64(2)}, map[string]any{"a": 1}, false},
		{"slice equal", []any{"DE", "FR"}, []string{"DE", "FR"}, true},
		{"slice order matters", []any{"FR", "DE"}, []string{"DE", "FR"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare("field", tt.actual, tt.expected)
			assert.Equal(t, tt.want, got.Passed, got.Message)
		})
	}
}

func TestCompareIdentity(t *testing.T) {
	ch := make(chan int)
	values := []any{
		nil, true, false, 0, 1.5, "", "text",
		int64(math.MaxInt64), uint64(math.MaxUint64),
		map[string]any{"nested": []any{1, "two", false}},
		[]any{map[string]any{"id": "x"}},
		ch,
		struct{ C chan int }{ch},
	}
	for _, v := range values {
		out := Compare("self", v, v)
		assert.True(t, out.Passed, "Compare(x, x) failed for %v: %s", v, out.Message)
	}
}

func TestCompareNaNNeverMatches(t *testing.T) {
	assert.False(t, Compare("nan", math.NaN(), math.NaN()).Passed)
}

func TestCompareFailureMessage(t *testing.T) {
	out := Compare("carrier_required", false, true)
	require.False(t, out.Passed)
	for _, want := range []string{"carrier_required", "false", "true"} {
		assert.Contains(t, out.Message, want)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{"EUR", `"EUR"`},
		{1.5, "1.5"},
		{map[string]any{"a": 1}, `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
