package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Outcome is the result of one field comparison.
type Outcome struct {
	Label    string
	Passed   bool
	Actual   any
	Expected any
	Message  string
}

// Compare checks actual against expected after normalizing both the way the
// Connect API serializes JSON:
//
//   - identical values always match, except NaN which matches nothing
//   - an expected bool matches true/false, "true"/"false", "1"/"0" and 1/0
//   - an expected number matches any number or numeric string of equal value;
//     two integers are compared exactly, anything else as float64
//   - an expected string matches the same string, or a number/bool whose
//     canonical text form equals it
//   - nil matches only nil (a missing field is reported as nil)
//   - maps and slices are compared structurally after JSON round-tripping
func Compare(label string, actual, expected any) Outcome {
	o := Outcome{
		Label:    label,
		Actual:   actual,
		Expected: expected,
		Passed:   valuesEqual(actual, expected),
	}
	if o.Passed {
		o.Message = fmt.Sprintf("%s: %s", label, FormatValue(actual))
	} else {
		o.Message = fmt.Sprintf("%s: expected %s, got %s", label, FormatValue(expected), FormatValue(actual))
	}
	return o
}

func valuesEqual(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	switch e := expected.(type) {
	case nil:
		return actual == nil
	case bool:
		b, ok := asBool(actual)
		return ok && b == e
	case string:
		return stringMatches(actual, e)
	}
	if en, ok := asNumber(expected); ok {
		an, ok := asNumber(actual)
		return ok && an.equal(en)
	}

	na, err := normalizeNumbers(actual)
	if err != nil {
		return false
	}
	ne, err := normalizeNumbers(expected)
	if err != nil {
		return false
	}
	return cmp.Equal(na, ne, cmp.Comparer(func(a, b json.Number) bool {
		an, aok := parseNumber(string(a))
		bn, bok := parseNumber(string(b))
		return aok && bok && an.equal(bn)
	}))
}

// normalizeNumbers round-trips v through JSON, keeping numbers as
// json.Number so nested integers stay exact.
func normalizeNumbers(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func stringMatches(actual any, expected string) bool {
	switch a := actual.(type) {
	case string:
		return a == expected
	case bool:
		b, ok := parseBoolString(expected)
		return ok && b == a
	}
	if an, ok := asNumber(actual); ok {
		en, ok := asNumber(expected)
		return ok && an.equal(en)
	}
	return false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return parseBoolString(b)
	}
	if n, ok := asNumber(v); ok {
		switch {
		case n.equal(number{i: big.NewInt(1), f: 1}):
			return true, true
		case n.equal(number{i: new(big.Int), f: 0}):
			return false, true
		}
	}
	return false, false
}

func parseBoolString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// number is a normalized numeric value. i is set for integers, which
// float64 cannot hold exactly past 2^53.
type number struct {
	i *big.Int
	f float64
}

func (n number) equal(o number) bool {
	if n.i != nil && o.i != nil {
		return n.i.Cmp(o.i) == 0
	}
	return n.f == o.f
}

func intNumber(i int64) number   { return number{i: big.NewInt(i), f: float64(i)} }
func uintNumber(u uint64) number { return number{i: new(big.Int).SetUint64(u), f: float64(u)} }

// asNumber accepts Go numeric types, json.Number and numeric strings.
func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case float64:
		return number{f: n}, true
	case float32:
		return number{f: float64(n)}, true
	case int:
		return intNumber(int64(n)), true
	case int8:
		return intNumber(int64(n)), true
	case int16:
		return intNumber(int64(n)), true
	case int32:
		return intNumber(int64(n)), true
	case int64:
		return intNumber(n), true
	case uint:
		return uintNumber(uint64(n)), true
	case uint8:
		return uintNumber(uint64(n)), true
	case uint16:
		return uintNumber(uint64(n)), true
	case uint32:
		return uintNumber(uint64(n)), true
	case uint64:
		return uintNumber(n), true
	case json.Number:
		return parseNumber(string(n))
	case string:
		return parseNumber(n)
	}
	return number{}, false
}

func parseNumber(s string) (number, bool) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return number{}, false
	}
	n := number{f: f}
	if i, ok := new(big.Int).SetString(s, 10); ok {
		n.i = i
	}
	return n, true
}

// FormatValue renders v the way it appears in reports: JSON where possible.
func FormatValue(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
