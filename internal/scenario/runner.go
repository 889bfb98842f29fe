package scenario

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

// Option configures a Runner.
type Option func(*options)

type options struct {
	observer Observer
	logger   *zap.Logger
}

// WithObserver streams run events to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(opts *options) {
		if l != nil {
			opts.logger = l
		}
	}
}

// Runner opens sessions and executes scenarios in declared order.
type Runner[S any] struct {
	provider Provider[S]
	observer Observer
	logger   *zap.Logger
}

// NewRunner creates a Runner that opens sessions through p.
func NewRunner[S any](p Provider[S], opts ...Option) *Runner[S] {
	o := options{observer: nopObserver{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Runner[S]{provider: p, observer: o.observer, logger: o.logger}
}

// Run connects every session spec, then runs every scenario. Failures never
// stop the run: each is recorded and the next scenario starts.
func (r *Runner[S]) Run(ctx context.Context, specs []SessionSpec, scenarios []Scenario[S]) *Report {
	report := &Report{}

	sessions := make(map[Role]S, len(specs))
	unavailable := make(map[Role]string)
	for _, spec := range specs {
		res, s := r.connect(ctx, spec)
		report.Sessions = append(report.Sessions, res)
		r.observer.SessionOpened(res)
		if res.OK {
			sessions[spec.Role] = s
		} else {
			unavailable[spec.Role] = fmt.Sprintf("session %s unavailable: %s", spec.Role, res.Message)
		}
	}

	exports := make(map[string]any)
	for _, sc := range scenarios {
		r.observer.ScenarioStarted(sc.Name, sc.Title)

		var res ScenarioResult
		if reason := blocked(sc, sessions, unavailable, exports); reason != "" {
			res = ScenarioResult{Name: sc.Name, Title: sc.Title, Status: StatusSkipped, Reason: reason}
		} else if err := sc.Validate(); err != nil {
			res = ScenarioResult{Name: sc.Name, Title: sc.Title, Status: StatusAborted, Reason: err.Error()}
		} else {
			res = r.runScenario(ctx, sc, sessions, exports)
		}

		r.logger.Debug("scenario finished",
			zap.String("scenario", sc.Name),
			zap.String("status", string(res.Status)),
			zap.Int("assertions", len(res.Assertions)),
		)
		report.Scenarios = append(report.Scenarios, res)
		r.observer.ScenarioFinished(res)
	}
	return report
}

func (r *Runner[S]) connect(ctx context.Context, spec SessionSpec) (res SessionResult, s S) {
	res.Role = spec.Role
	defer func() {
		if p := recover(); p != nil {
			res.OK = false
			res.Kind = apierr.KindUnknown
			res.Message = fmt.Sprintf("panic: %v", p)
		}
	}()

	s, err := r.provider.Connect(ctx, spec.ClientID, spec.ClientSecret)
	if err != nil {
		r.logger.Warn("session failed", zap.String("role", string(spec.Role)), zap.Error(err))
		res.Kind = apierr.KindOf(err)
		res.Message = err.Error()
		res.Code = apierr.CodeOf(err)
		return res, s
	}
	res.OK = true
	return res, s
}

func blocked[S any](sc Scenario[S], sessions map[Role]S, unavailable map[Role]string, exports map[string]any) string {
	for _, role := range sc.Roles {
		if _, ok := sessions[role]; ok {
			continue
		}
		if reason, ok := unavailable[role]; ok {
			return reason
		}
		return fmt.Sprintf("no session configured for role %s", role)
	}
	for _, in := range sc.Inputs {
		if _, ok := exports[in]; !ok {
			return fmt.Sprintf("input %s not available", in)
		}
	}
	return ""
}

func (r *Runner[S]) runScenario(ctx context.Context, sc Scenario[S], sessions map[Role]S, exports map[string]any) ScenarioResult {
	res := ScenarioResult{Name: sc.Name, Title: sc.Title, Status: StatusCompleted}

	inputs := make(map[string]any, len(sc.Inputs))
	for _, in := range sc.Inputs {
		inputs[in] = exports[in]
	}
	x := &Exec[S]{
		scenario: sc.Name,
		sessions: sessions,
		results:  make(map[string]any),
		inputs:   inputs,
	}

	defaultRole := Role("")
	if len(sc.Roles) > 0 {
		defaultRole = sc.Roles[0]
	}

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			res.Status = StatusAborted
			res.Reason = fmt.Sprintf("run cancelled: %v", err)
			res.NotRun = stepNames(sc.Steps[i:])
			return res
		}

		role := st.Role
		if role == "" {
			role = defaultRole
		}
		x.step = st.Name
		x.role = role
		x.notes = func(text string) { r.observer.Note(sc.Name, st.Name, text) }

		rec := StepRecord{Name: st.Name, Role: role}
		if st.Call != nil {
			if _, ok := sessions[role]; !ok {
				rec.Status = StepSkipped
				rec.Reason = fmt.Sprintf("no session for role %s", role)
				r.finishStep(&res, rec)
				continue
			}
		}
		if st.Skip != nil {
			if reason := st.Skip(x); reason != "" {
				rec.Status = StepSkipped
				rec.Reason = reason
				r.finishStep(&res, rec)
				continue
			}
		}

		if st.Check != nil {
			r.runCheck(&res, x, st)
			continue
		}
		if st.Call == nil {
			rec.Status = StepSkipped
			rec.Reason = "not implemented"
			r.finishStep(&res, rec)
			continue
		}

		payload, err := r.call(ctx, st, x)
		if err == nil {
			x.results[st.key()] = payload
			for name, path := range st.Export {
				if v, ok := Lookup(payload, path); ok {
					exports[name] = v
				}
			}
			if st.Print {
				x.Notef("%s", FormatValue(payload))
			}
			rec.Status = StepOK
			r.finishStep(&res, rec)
			continue
		}

		rec.Kind = apierr.KindOf(err)
		rec.Message = err.Error()
		rec.Code = apierr.CodeOf(err)
		rec.Details = apierr.DetailsOf(err)
		if rec.Kind == apierr.KindResponse && st.ContinueOnResponseError {
			rec.Status = StepTolerated
			r.finishStep(&res, rec)
			continue
		}

		rec.Status = StepFailed
		r.finishStep(&res, rec)
		res.Status = StatusAborted
		res.Reason = fmt.Sprintf("step %s: %s error: %s", st.Name, rec.Kind, rec.Message)
		res.NotRun = stepNames(sc.Steps[i+1:])
		return res
	}
	return res
}

// call invokes a step, converting a panic into an unknown-kind error.
func (r *Runner[S]) call(ctx context.Context, st Step[S], x *Exec[S]) (payload any, err error) {
	defer func() {
		if p := recover(); p != nil {
			payload = nil
			err = fmt.Errorf("panic in step %s: %v", st.Name, p)
		}
	}()
	return st.Call(ctx, x)
}

func (r *Runner[S]) runCheck(res *ScenarioResult, x *Exec[S], st Step[S]) {
	c := st.Check
	rec := StepRecord{Name: st.Name, Role: x.role}

	stored, ok := x.results[c.Key]
	if !ok {
		rec.Status = StepSkipped
		rec.Reason = fmt.Sprintf("result %s not available", c.Key)
		r.finishStep(res, rec)
		return
	}

	actual, _ := Lookup(stored, c.Path)
	label := c.Label
	if label == "" {
		label = c.Path
	}
	out := Compare(label, actual, c.Expected)
	a := AssertionRecord{
		Scenario: x.scenario,
		Step:     st.Name,
		Label:    label,
		Key:      c.Key,
		Path:     c.Path,
		Expected: c.Expected,
		Actual:   actual,
		Passed:   out.Passed,
		Message:  out.Message,
	}
	res.Assertions = append(res.Assertions, a)
	r.observer.AssertionFinished(a)

	rec.Status = StepOK
	if !out.Passed {
		rec.Status = StepFailed
		rec.Message = out.Message
	}
	res.Steps = append(res.Steps, rec)
}

func (r *Runner[S]) finishStep(res *ScenarioResult, rec StepRecord) {
	res.Steps = append(res.Steps, rec)
	r.observer.StepFinished(res.Name, rec)
}

func stepNames[S any](steps []Step[S]) []string {
	names := make([]string, 0, len(steps))
	for _, st := range steps {
		names = append(names, st.Name)
	}
	return names
}
