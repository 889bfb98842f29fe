package scenario

import (
	"github.com/samber/lo"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

// Status is the terminal state of a scenario.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
	StatusSkipped   Status = "skipped"
)

// StepStatus is the terminal state of one step.
type StepStatus string

const (
	StepOK        StepStatus = "ok"
	StepFailed    StepStatus = "failed"
	StepTolerated StepStatus = "tolerated"
	StepSkipped   StepStatus = "skipped"
)

// SessionResult records the outcome of opening one role's session.
type SessionResult struct {
	Role    Role        `json:"role"`
	OK      bool        `json:"ok"`
	Kind    apierr.Kind `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// StepRecord records the outcome of one action or assertion step.
type StepRecord struct {
	Name    string              `json:"name"`
	Role    Role                `json:"role,omitempty"`
	Status  StepStatus          `json:"status"`
	Kind    apierr.Kind         `json:"kind,omitempty"`
	Message string              `json:"message,omitempty"`
	Code    string              `json:"code,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
	Reason  string              `json:"reason,omitempty"`
}

// AssertionRecord records one field comparison.
type AssertionRecord struct {
	Scenario string `json:"scenario"`
	Step     string `json:"step"`
	Label    string `json:"label"`
	Key      string `json:"key"`
	Path     string `json:"path"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message"`
}

// ScenarioResult records everything that happened in one scenario.
type ScenarioResult struct {
	Name       string            `json:"name"`
	Title      string            `json:"title,omitempty"`
	Status     Status            `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	Steps      []StepRecord      `json:"steps"`
	Assertions []AssertionRecord `json:"assertions"`
	// NotRun lists steps never attempted because the scenario aborted.
	NotRun []string `json:"not_run,omitempty"`
}

// Report is the full outcome of a run. It contains no timing data, so two
// runs against the same deterministic API compare equal.
type Report struct {
	Sessions  []SessionResult  `json:"sessions"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// Counts summarizes a Report.
type Counts struct {
	Scenarios        int `json:"scenarios"`
	Completed        int `json:"completed"`
	Aborted          int `json:"aborted"`
	Skipped          int `json:"skipped"`
	Assertions       int `json:"assertions"`
	AssertionsPassed int `json:"assertions_passed"`
	AssertionsFailed int `json:"assertions_failed"`
	StepsTolerated   int `json:"steps_tolerated"`
	StepsSkipped     int `json:"steps_skipped"`
	SessionFailures  int `json:"session_failures"`
}

// Counts tallies scenarios, assertions, steps and sessions.
func (r *Report) Counts() Counts {
	c := Counts{Scenarios: len(r.Scenarios)}
	c.SessionFailures = lo.CountBy(r.Sessions, func(s SessionResult) bool { return !s.OK })
	for _, sc := range r.Scenarios {
		switch sc.Status {
		case StatusCompleted:
			c.Completed++
		case StatusAborted:
			c.Aborted++
		case StatusSkipped:
			c.Skipped++
		}
		c.Assertions += len(sc.Assertions)
		c.AssertionsPassed += lo.CountBy(sc.Assertions, func(a AssertionRecord) bool { return a.Passed })
		c.StepsTolerated += lo.CountBy(sc.Steps, func(s StepRecord) bool { return s.Status == StepTolerated })
		c.StepsSkipped += lo.CountBy(sc.Steps, func(s StepRecord) bool { return s.Status == StepSkipped })
	}
	c.AssertionsFailed = c.Assertions - c.AssertionsPassed
	return c
}

// Failed reports whether any assertion failed, any scenario aborted or any
// session could not be opened. Tolerated and skipped steps are not failures.
func (r *Report) Failed() bool {
	c := r.Counts()
	return c.AssertionsFailed > 0 || c.Aborted > 0 || c.SessionFailures > 0
}

// ExitCode is the process exit status for the run.
func (r *Report) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Scenario returns the named scenario result.
func (r *Report) Scenario(name string) (ScenarioResult, bool) {
	return lo.Find(r.Scenarios, func(s ScenarioResult) bool { return s.Name == name })
}

// Failures lists every failed assertion in run order.
func (r *Report) Failures() []AssertionRecord {
	return lo.Filter(lo.FlatMap(r.Scenarios, func(s ScenarioResult, _ int) []AssertionRecord {
		return s.Assertions
	}), func(a AssertionRecord, _ int) bool { return !a.Passed })
}

// Observer receives run events as they happen. The text reporter implements
// it to stream output; the Report is built independently.
type Observer interface {
	SessionOpened(SessionResult)
	ScenarioStarted(name, title string)
	StepFinished(scenario string, step StepRecord)
	AssertionFinished(AssertionRecord)
	Note(scenario, step, text string)
	ScenarioFinished(ScenarioResult)
}

type nopObserver struct{}

func (nopObserver) SessionOpened(SessionResult)       {}
func (nopObserver) ScenarioStarted(string, string)    {}
func (nopObserver) StepFinished(string, StepRecord)   {}
func (nopObserver) AssertionFinished(AssertionRecord) {}
func (nopObserver) Note(string, string, string)       {}
func (nopObserver) ScenarioFinished(ScenarioResult)   {}
