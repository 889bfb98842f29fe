// Package scenario runs ordered, named scenarios against remote API sessions
// and records field-level assertion outcomes in a Report.
//
// A Scenario is a list of steps. An action step calls an operation through a
// role's session and stores the returned payload under a key; an assertion
// step reads a field from a stored payload and compares it to an expected
// value. Stored payloads live only for the duration of one scenario. Values a
// later scenario needs are exported explicitly and declared by the consumer
// as Inputs.
package scenario

import (
	"context"
	"fmt"
)

// Role names a remote identity a session authenticates as.
type Role string

const (
	RoleMerchant  Role = "merchant"
	RoleFulfiller Role = "fulfiller"
)

// SessionSpec is what the runner needs to open one session.
type SessionSpec struct {
	Role         Role
	ClientID     string
	ClientSecret string
}

// Provider opens authenticated sessions. S is the session handle type.
type Provider[S any] interface {
	Connect(ctx context.Context, clientID, clientSecret string) (S, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc[S any] func(ctx context.Context, clientID, clientSecret string) (S, error)

func (f ProviderFunc[S]) Connect(ctx context.Context, clientID, clientSecret string) (S, error) {
	return f(ctx, clientID, clientSecret)
}

// Scenario is an immutable, ordered list of steps.
type Scenario[S any] struct {
	Name  string
	Title string
	// Roles lists every role the scenario needs. If any of them failed to
	// connect the scenario is recorded as skipped.
	Roles []Role
	// Inputs names exported values from earlier scenarios this one reads.
	Inputs []string
	Steps  []Step[S]
}

// CallFunc performs one operation. The returned payload is stored under the
// step's key when err is nil.
type CallFunc[S any] func(ctx context.Context, x *Exec[S]) (any, error)

// SkipFunc returns a non-empty reason when a step's precondition is missing.
type SkipFunc[S any] func(x *Exec[S]) string

// Step is either an action (Call set) or an assertion (Check set).
type Step[S any] struct {
	Name string
	// Role selects the session for Call. Defaults to the scenario's first role.
	Role Role
	Call CallFunc[S]
	// Store is the result key. Defaults to Name.
	Store string
	// Export publishes values from this step's result to later scenarios,
	// keyed by export name with a path into the result as value. An empty
	// path exports the whole result.
	Export map[string]string
	// ContinueOnResponseError tolerates an API error payload: the step is
	// recorded and the scenario continues.
	ContinueOnResponseError bool
	Skip                    SkipFunc[S]
	// Print emits the stored payload as a note.
	Print bool

	Check *Check
}

// Check compares the value at Path inside the result stored under Key with
// Expected.
type Check struct {
	Label    string
	Key      string
	Path     string
	Expected any
}

func (s Step[S]) key() string {
	if s.Store != "" {
		return s.Store
	}
	return s.Name
}

func (s Step[S]) validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("step name is required")
	case s.Call == nil && s.Check == nil && s.Skip == nil:
		return fmt.Errorf("step %q: one of call or check is required", s.Name)
	case s.Call != nil && s.Check != nil:
		return fmt.Errorf("step %q: call and check are mutually exclusive", s.Name)
	}
	return nil
}

// Validate reports definition errors: missing names, duplicate step names,
// steps without a call or check.
func (sc Scenario[S]) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %s: at least one step is required", sc.Name)
	}
	seen := make(map[string]bool, len(sc.Steps))
	for _, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if seen[st.Name] {
			return fmt.Errorf("scenario %s: duplicate step %q", sc.Name, st.Name)
		}
		seen[st.Name] = true
	}
	return nil
}

// Exec is the per-scenario execution scope handed to calls and skip checks.
type Exec[S any] struct {
	scenario string
	step     string
	role     Role
	sessions map[Role]S
	results  map[string]any
	inputs   map[string]any
	notes    func(text string)
}

// Session returns the session for the current step's role.
func (x *Exec[S]) Session() S {
	return x.sessions[x.role]
}

// SessionFor returns the session for an arbitrary role.
func (x *Exec[S]) SessionFor(role Role) (S, bool) {
	s, ok := x.sessions[role]
	return s, ok
}

// Result returns a payload stored earlier in this scenario.
func (x *Exec[S]) Result(key string) (any, bool) {
	v, ok := x.results[key]
	return v, ok
}

// Lookup reads a field from a stored payload.
func (x *Exec[S]) Lookup(key, path string) (any, bool) {
	v, ok := x.results[key]
	if !ok {
		return nil, false
	}
	return Lookup(v, path)
}

// Input returns a declared input exported by an earlier scenario.
func (x *Exec[S]) Input(name string) (any, bool) {
	v, ok := x.inputs[name]
	return v, ok
}

// Notef attaches free-form output to the current step.
func (x *Exec[S]) Notef(format string, args ...any) {
	if x.notes != nil {
		x.notes(fmt.Sprintf(format, args...))
	}
}

// NeedResult skips a step unless path resolves to a non-empty value in the
// result stored under key.
func NeedResult[S any](key, path, reason string) SkipFunc[S] {
	return func(x *Exec[S]) string {
		v, ok := x.Lookup(key, path)
		if !ok || isEmpty(v) {
			return reason
		}
		return ""
	}
}

// NeedInput skips a step unless the named input is present.
func NeedInput[S any](name string) SkipFunc[S] {
	return func(x *Exec[S]) string {
		if v, ok := x.Input(name); !ok || isEmpty(v) {
			return fmt.Sprintf("input %s not available", name)
		}
		return ""
	}
}

// Draft marks a step as not implemented yet.
func Draft[S any](reason string) SkipFunc[S] {
	return func(*Exec[S]) string { return reason }
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
