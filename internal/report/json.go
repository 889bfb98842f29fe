package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

// Version of the JSON summary layout.
const Version = "1"

type jsonOutput struct {
	Version   string                     `json:"version"`
	Counts    scenario.Counts            `json:"counts"`
	ExitCode  int                        `json:"exit_code"`
	Sessions  []scenario.SessionResult   `json:"sessions"`
	Scenarios []scenario.ScenarioResult  `json:"scenarios"`
	Failures  []scenario.AssertionRecord `json:"failures"`
}

// WriteJSON writes the structured summary of rep to w.
func WriteJSON(w io.Writer, rep *scenario.Report) error {
	out := jsonOutput{
		Version:   Version,
		Counts:    rep.Counts(),
		ExitCode:  rep.ExitCode(),
		Sessions:  rep.Sessions,
		Scenarios: rep.Scenarios,
		Failures:  rep.Failures(),
	}
	if out.Sessions == nil {
		out.Sessions = []scenario.SessionResult{}
	}
	if out.Scenarios == nil {
		out.Scenarios = []scenario.ScenarioResult{}
	}
	if out.Failures == nil {
		out.Failures = []scenario.AssertionRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
