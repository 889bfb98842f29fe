package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

// Setter applies one table value to a request model.
type Setter[M any] func(m *M, field string, value any) error

// PatchVerify describes a patch-then-verify scenario: build a request model
// from a field table, send it, read the resource back and assert every
// table row against the read-back payload.
type PatchVerify[S, M any] struct {
	Name  string
	Title string
	Role  Role
	Rows  FieldTable
	// Set defaults to JSONSetter.
	Set   Setter[M]
	Patch func(ctx context.Context, s S, m M) (any, error)
	Get   func(ctx context.Context, s S) (any, error)
	// ReadPrefix is prepended to every row path, e.g. "data".
	ReadPrefix string
	// TolerantPatch continues when the patch returns an API error payload.
	TolerantPatch bool
}

// Build expands the description into an ordered Scenario:
// patch, get, then one assertion per verified row.
func (p PatchVerify[S, M]) Build() (Scenario[S], error) {
	if p.Patch == nil || p.Get == nil {
		return Scenario[S]{}, fmt.Errorf("patch-verify %s: patch and get are required", p.Name)
	}
	if len(p.Rows) == 0 {
		return Scenario[S]{}, fmt.Errorf("patch-verify %s: field table is empty", p.Name)
	}
	set := p.Set
	if set == nil {
		set = JSONSetter[M]
	}
	rows := p.Rows

	steps := []Step[S]{
		{
			Name:                    "patch",
			ContinueOnResponseError: p.TolerantPatch,
			Print:                   true,
			Call: func(ctx context.Context, x *Exec[S]) (any, error) {
				var m M
				verr := &apierr.ValidationError{Message: fmt.Sprintf("cannot build %s request", p.Name)}
				for _, row := range rows {
					if err := set(&m, row.Field, row.Value); err != nil {
						verr.Add(row.Field, err.Error())
					}
				}
				if err := verr.OrNil(); err != nil {
					return nil, err
				}
				return p.Patch(ctx, x.Session(), m)
			},
		},
		{
			Name:  "get",
			Print: true,
			Call: func(ctx context.Context, x *Exec[S]) (any, error) {
				return p.Get(ctx, x.Session())
			},
		},
	}
	for _, row := range rows {
		if row.NoVerify {
			continue
		}
		path := row.path()
		if p.ReadPrefix != "" {
			path = p.ReadPrefix + "." + path
		}
		steps = append(steps, Step[S]{
			Name: "verify " + row.Field,
			Check: &Check{
				Label:    row.label(),
				Key:      "get",
				Path:     path,
				Expected: row.expected(),
			},
		})
	}

	sc := Scenario[S]{Name: p.Name, Title: p.Title, Roles: []Role{p.Role}, Steps: steps}
	return sc, sc.Validate()
}

// JSONSetter sets field (dot-separated for nesting) on m through its JSON
// encoding, so rows use wire field names.
func JSONSetter[M any](m *M, field string, value any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	doc := map[string]any{}
	if string(data) != "null" {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("model is not a JSON object: %w", err)
		}
	}

	parts := strings.Split(field, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value

	data, err = json.Marshal(doc)
	if err != nil {
		return err
	}
	var out M
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return fmt.Errorf("value %s: %w", FormatValue(value), err)
	}
	*m = out
	return nil
}
