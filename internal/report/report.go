// Package report renders scenario runs for humans and machines. Reporter
// streams text as the runner emits events; WriteJSON dumps a finished
// Report.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

var titler = cases.Title(language.English)

// Option configures a Reporter.
type Option func(*Reporter)

// WithTheme overrides the theme chosen from the writer.
func WithTheme(t Theme) Option {
	return func(r *Reporter) { r.theme = t }
}

// WithCrop limits printed notes to n characters. Zero disables cropping.
func WithCrop(n int) Option {
	return func(r *Reporter) {
		if n > 0 {
			r.crop = n
		}
	}
}

// WithVerbose prints successful action steps too.
func WithVerbose(v bool) Option {
	return func(r *Reporter) { r.verbose = v }
}

// Reporter writes a line per event to w. It implements scenario.Observer.
type Reporter struct {
	w       io.Writer
	theme   Theme
	crop    int
	verbose bool
}

var _ scenario.Observer = (*Reporter)(nil)

// New creates a Reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w, theme: ThemeFor(w)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// SessionOpened prints the connection outcome of one role.
func (r *Reporter) SessionOpened(s scenario.SessionResult) {
	if s.OK {
		r.printf("%s session %s connected\n", tag(r.theme.Pass, "OK"), s.Role)
		return
	}
	r.printf("%s session %s [%s] %s%s\n", tag(r.theme.Fail, "FAIL"), s.Role, s.Kind, s.Message, codeSuffix(s.Code))
}

// ScenarioStarted prints the scenario banner.
func (r *Reporter) ScenarioStarted(name, title string) {
	r.printf("\n%s\n", r.theme.Banner.Render("=== "+Banner(name, title)+" ==="))
}

// Banner is the display title of a scenario: its title, or its name with
// dashes turned into spaces, in title case.
func Banner(name, title string) string {
	if title == "" {
		title = strings.ReplaceAll(name, "-", " ")
	}
	return titler.String(title)
}

// StepFinished prints failed, tolerated and skipped steps. Successful steps
// are printed only in verbose mode.
func (r *Reporter) StepFinished(_ string, st scenario.StepRecord) {
	switch st.Status {
	case scenario.StepOK:
		if r.verbose {
			r.printf("  %s %s\n", tag(r.theme.Muted, "ok"), st.Name)
		}
	case scenario.StepSkipped:
		r.printf("  %s %s: %s\n", tag(r.theme.Skip, "SKIP"), st.Name, st.Reason)
	case scenario.StepTolerated:
		r.printf("  %s %s [%s] %s%s\n", tag(r.theme.Warn, "WARN"), st.Name, st.Kind, st.Message, codeSuffix(st.Code))
		r.details(st.Details)
	case scenario.StepFailed:
		r.printf("  %s %s [%s] %s%s\n", tag(r.theme.Fail, "FAIL"), st.Name, st.Kind, st.Message, codeSuffix(st.Code))
		r.details(st.Details)
	}
}

func (r *Reporter) details(d map[string][]string) {
	for _, field := range sortedKeys(d) {
		r.printf("       %s %s: %s\n", r.theme.Muted.Render("-"), field, strings.Join(d[field], "; "))
	}
}

// AssertionFinished prints one PASS or FAIL line.
func (r *Reporter) AssertionFinished(a scenario.AssertionRecord) {
	if a.Passed {
		r.printf("  %s %s\n", tag(r.theme.Pass, "PASS"), a.Message)
		return
	}
	r.printf("  %s %s\n", tag(r.theme.Fail, "FAIL"), a.Message)
}

// Note prints free text produced by a step, cropped when configured.
func (r *Reporter) Note(_, step, text string) {
	r.printf("  %s %s: %s\n", tag(r.theme.Muted, "info"), step, Crop(text, r.crop))
}

// ScenarioFinished prints the status line of aborted and skipped scenarios.
func (r *Reporter) ScenarioFinished(res scenario.ScenarioResult) {
	switch res.Status {
	case scenario.StatusAborted:
		r.printf("  %s scenario aborted: %s\n", tag(r.theme.Fail, "FAIL"), res.Reason)
		if len(res.NotRun) > 0 {
			r.printf("       %s not run: %s\n", r.theme.Muted.Render("-"), strings.Join(res.NotRun, ", "))
		}
	case scenario.StatusSkipped:
		r.printf("  %s scenario skipped: %s\n", tag(r.theme.Skip, "SKIP"), res.Reason)
	}
}

// Summary prints the final counts of a run.
func (r *Reporter) Summary(rep *scenario.Report) {
	c := rep.Counts()
	r.printf("\n%s\n", r.theme.Bold.Render(fmt.Sprintf("Scenarios: %d run, %d completed, %d aborted, %d skipped",
		c.Scenarios, c.Completed, c.Aborted, c.Skipped)))
	line := fmt.Sprintf("Results: %d passed, %d failed, %d total", c.AssertionsPassed, c.AssertionsFailed, c.Assertions)
	if rep.Failed() {
		r.printf("%s\n", r.theme.Fail.Render(line))
	} else {
		r.printf("%s\n", r.theme.Pass.Render(line))
	}
	if c.StepsTolerated > 0 || c.StepsSkipped > 0 || c.SessionFailures > 0 {
		r.printf("%s\n", r.theme.Muted.Render(fmt.Sprintf("Steps: %d tolerated, %d skipped; sessions failed: %d",
			c.StepsTolerated, c.StepsSkipped, c.SessionFailures)))
	}
}

// Crop shortens s to n runes, marking the cut. n <= 0 returns s unchanged.
func Crop(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + fmt.Sprintf("... (%d more)", len(runes)-n)
}

// tag renders a status label padded to a fixed width.
func tag(style lipgloss.Style, label string) string {
	return style.Render(label) + strings.Repeat(" ", 4-len(label))
}

func codeSuffix(code string) string {
	if code == "" {
		return ""
	}
	return " (code " + code + ")"
}
