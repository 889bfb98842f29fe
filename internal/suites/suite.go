// Package suites defines the Connect SDK scenario suite: one scenario per
// API section, run in declared order against a merchant and a fulfiller
// session.
package suites

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/mypromo/connect-sdk-test/internal/config"
	"github.com/mypromo/connect-sdk-test/internal/connect"
	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

// Session is the handle every suite step calls through.
type Session = *connect.Session

type (
	Scenario = scenario.Scenario[Session]
	Step     = scenario.Step[Session]
	Exec     = scenario.Exec[Session]
)

const (
	merchant  = scenario.RoleMerchant
	fulfiller = scenario.RoleFulfiller
)

//go:embed field_tables.yaml
var defaultTables []byte

// Options parameterize the suite.
type Options struct {
	Fixtures config.Fixtures
	// PreviewDir receives the downloaded design preview.
	PreviewDir string
	Tables     scenario.FieldTables
}

// Tables returns the embedded field tables, with every table defined in the
// override file replacing its embedded counterpart.
func Tables(override string, vars scenario.Vars) (scenario.FieldTables, error) {
	tables, err := scenario.ParseFieldTables(defaultTables, vars)
	if err != nil {
		return nil, fmt.Errorf("embedded field tables: %w", err)
	}
	if override == "" {
		return tables, nil
	}
	extra, err := scenario.LoadFieldTables(override, vars)
	if err != nil {
		return nil, err
	}
	return tables.Merge(extra), nil
}

// Build returns the suite's scenarios in run order.
func Build(opts Options) ([]Scenario, error) {
	if opts.PreviewDir == "" {
		opts.PreviewDir = "."
	}

	settingsMerchant, err := merchantSettings(opts.Tables)
	if err != nil {
		return nil, err
	}
	settingsFulfiller, err := fulfillerSettings(opts.Tables)
	if err != nil {
		return nil, err
	}
	shopify, err := shopifyConnector(opts.Tables)
	if err != nil {
		return nil, err
	}
	magento, err := magentoConnector(opts.Tables)
	if err != nil {
		return nil, err
	}

	scenarios := []Scenario{
		draft("general-routes", "General routes", "general routes are in draft"),
		settingsMerchant,
		settingsFulfiller,
		connectorsList(),
		shopify,
		magento,
		clientJobs(),
		design(opts),
		orders(opts.Fixtures),
		products(),
		productExport(opts.Fixtures),
		productImport(opts.Fixtures),
		draft("product-configurator", "Product configurator", "configurator routes are not supported by the client yet"),
		production(),
		miscellaneous(),
		draft("admin-routes", "Admin routes", "admin routes are in draft"),
	}
	for _, sc := range scenarios {
		if err := sc.Validate(); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

// Names lists scenario names in order.
func Names(scenarios []Scenario) []string {
	return lo.Map(scenarios, func(sc Scenario, _ int) string { return sc.Name })
}

// Select keeps the named scenarios in suite order. An empty selection keeps
// all of them.
func Select(scenarios []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return scenarios, nil
	}
	known := Names(scenarios)
	if unknown := lo.Without(names, known...); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown scenario(s) %s (known: %s)", strings.Join(unknown, ", "), strings.Join(known, ", "))
	}
	return lo.Filter(scenarios, func(sc Scenario, _ int) bool { return lo.Contains(names, sc.Name) }), nil
}

// draft is a scenario whose single step is skipped with reason.
func draft(name, title, reason string) Scenario {
	return Scenario{
		Name:  name,
		Title: title,
		Roles: []scenario.Role{merchant},
		Steps: []Step{{Name: name, Skip: scenario.Draft[Session](reason)}},
	}
}

// check asserts the value at path of the result stored under key.
func check(key, path string, expected any) Step {
	return Step{
		Name:  "check " + key + " " + path,
		Check: &scenario.Check{Label: key + "." + path, Key: key, Path: path, Expected: expected},
	}
}

// checkIf is check, skipped with the reason skip returns.
func checkIf(skip scenario.SkipFunc[Session], key, path string, expected any) Step {
	st := check(key, path, expected)
	st.Skip = skip
	return st
}

func intAt(x *Exec, key, path string) int {
	v, _ := x.Lookup(key, path)
	n, _ := v.(float64)
	return int(n)
}

func stringAt(x *Exec, key, path string) string {
	v, _ := x.Lookup(key, path)
	s, _ := v.(string)
	return s
}

// fileSummary describes a downloaded file without dumping its bytes.
func fileSummary(data []byte) connect.Payload {
	return connect.Payload{"bytes": len(data), "signature": string(data[:min(len(data), 5)])}
}

// callback returns nil for an empty url so the request omits it.
func callback(url string) *connect.Callback {
	if url == "" {
		return nil
	}
	return &connect.Callback{URL: url}
}

// list is the paging used by every listing step.
var list = connect.PageOptions{Page: 1, PerPage: 5, Pagination: connect.Bool(false)}
