package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FieldRow is one line of a patch-then-verify table: the request field to
// set, the value to send, and where the value is read back from.
type FieldRow struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
	// Path into the read-back payload. Defaults to Field.
	Path string `yaml:"path,omitempty"`
	// Expected defaults to Value.
	Expected any    `yaml:"expected,omitempty"`
	Label    string `yaml:"label,omitempty"`
	// NoVerify sends the value without asserting it on read-back.
	NoVerify bool `yaml:"no_verify,omitempty"`
}

func (r FieldRow) path() string {
	if r.Path != "" {
		return r.Path
	}
	return r.Field
}

func (r FieldRow) expected() any {
	if r.Expected != nil {
		return r.Expected
	}
	return r.Value
}

func (r FieldRow) label() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Field
}

// FieldTable is an ordered list of rows.
type FieldTable []FieldRow

// FieldTables maps table names to tables.
type FieldTables map[string]FieldTable

type fieldTablesFile struct {
	Tables map[string]FieldTable `yaml:"tables"`
}

// ParseFieldTables decodes a YAML document of the form
//
//	tables:
//	  merchant_settings:
//	    - field: has_to_supply_carrier
//	      value: true
//
// String values (and expectations) are expanded with vars.
func ParseFieldTables(data []byte, vars Vars) (FieldTables, error) {
	var f fieldTablesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing field tables: %w", err)
	}

	tables := make(FieldTables, len(f.Tables))
	for name, rows := range f.Tables {
		out := make(FieldTable, 0, len(rows))
		for i, row := range rows {
			if row.Field == "" {
				return nil, fmt.Errorf("table %s row %d: field is required", name, i)
			}
			v, err := expandValue(row.Value, vars)
			if err != nil {
				return nil, fmt.Errorf("table %s field %s: %w", name, row.Field, err)
			}
			row.Value = v
			if row.Expected != nil {
				e, err := expandValue(row.Expected, vars)
				if err != nil {
					return nil, fmt.Errorf("table %s field %s: %w", name, row.Field, err)
				}
				row.Expected = e
			}
			out = append(out, row)
		}
		tables[name] = out
	}
	return tables, nil
}

// LoadFieldTables reads and parses a YAML field table file.
func LoadFieldTables(path string, vars Vars) (FieldTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field tables %s: %w", path, err)
	}
	return ParseFieldTables(data, vars)
}

// Merge returns a copy of t with every table in o replacing t's table of
// the same name.
func (t FieldTables) Merge(o FieldTables) FieldTables {
	out := make(FieldTables, len(t)+len(o))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Table returns the named table or an error naming the known tables.
func (t FieldTables) Table(name string) (FieldTable, error) {
	rows, ok := t[name]
	if !ok {
		known := make([]string, 0, len(t))
		for k := range t {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("field table %q not found (known: %v)", name, known)
	}
	return rows, nil
}
