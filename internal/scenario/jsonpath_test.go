package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	doc := map[string]any{
		"data": map[string]any{
			"id":   float64(42),
			"tags": []any{"a", "b"},
			"items": []any{
				map[string]any{"sku": "MP-1", "sizes": []any{[]any{"S", "M"}}},
			},
		},
		"message": "OK",
	}

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{"root", "", doc, true},
		{"dollar root", "$", doc, true},
		{"plain field", "message", "OK", true},
		{"dollar field", "$.message", "OK", true},
		{"nested", "data.id", float64(42), true},
		{"array index", "data.tags[1]", "b", true},
		{"array then field", "data.items[0].sku", "MP-1", true},
		{"double index", "data.items[0].sizes[0][1]", "M", true},
		{"missing field", "data.missing", nil, false},
		{"index out of range", "data.tags[5]", nil, false},
		{"index on non-array", "message[0]", nil, false},
		{"field on scalar", "message.x", nil, false},
		{"bad index", "data.tags[x]", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(doc, tt.path)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.True(t, Compare(tt.path, got, tt.want).Passed, "Lookup(%q) = %v, want %v", tt.path, got, tt.want)
		})
	}
}

func TestLookupStruct(t *testing.T) {
	type settings struct {
		Carrier bool   `json:"has_to_supply_carrier"`
		Logic   int    `json:"price_reset_logic"`
		Name    string `json:"-"`
	}
	v := struct {
		Data settings `json:"data"`
	}{Data: settings{Carrier: true, Logic: 1, Name: "hidden"}}

	got, ok := Lookup(v, "data.has_to_supply_carrier")
	assert.True(t, ok)
	assert.Equal(t, true, got)

	got, ok = Lookup(v, "data.price_reset_logic")
	assert.True(t, ok)
	assert.Equal(t, float64(1), got)

	_, ok = Lookup(v, "data.Name")
	assert.False(t, ok, "json:\"-\" fields are invisible")
}
