package suites

import (
	"context"

	"github.com/mypromo/connect-sdk-test/internal/connect"
	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

func getSettings(ctx context.Context, s Session) (any, error) {
	return s.ClientSettings().Get(ctx)
}

// withInitialRead prepends a read of the unmodified resource.
func withInitialRead(sc Scenario, get func(ctx context.Context, s Session) (any, error)) Scenario {
	first := Step{
		Name:  "get-initial",
		Print: true,
		Call:  func(ctx context.Context, x *Exec) (any, error) { return get(ctx, x.Session()) },
	}
	sc.Steps = append([]Step{first}, sc.Steps...)
	return sc
}

func merchantSettings(tables scenario.FieldTables) (Scenario, error) {
	rows, err := tables.Table("merchant_settings")
	if err != nil {
		return Scenario{}, err
	}
	sc, err := scenario.PatchVerify[Session, connect.MerchantSettings]{
		Name:          "client-settings-merchant",
		Title:         "Client settings merchant",
		Role:          merchant,
		Rows:          rows,
		TolerantPatch: true,
		Patch: func(ctx context.Context, s Session, m connect.MerchantSettings) (any, error) {
			return s.ClientSettings().UpdateMerchant(ctx, m)
		},
		Get: getSettings,
	}.Build()
	if err != nil {
		return Scenario{}, err
	}
	return withInitialRead(sc, getSettings), nil
}

func fulfillerSettings(tables scenario.FieldTables) (Scenario, error) {
	rows, err := tables.Table("fulfiller_settings")
	if err != nil {
		return Scenario{}, err
	}
	sc, err := scenario.PatchVerify[Session, connect.FulfillerSettings]{
		Name:          "client-settings-fulfiller",
		Title:         "Client settings fulfiller",
		Role:          fulfiller,
		Rows:          rows,
		TolerantPatch: true,
		Patch: func(ctx context.Context, s Session, f connect.FulfillerSettings) (any, error) {
			return s.ClientSettings().UpdateFulfiller(ctx, f)
		},
		Get: getSettings,
	}.Build()
	if err != nil {
		return Scenario{}, err
	}
	return withInitialRead(sc, getSettings), nil
}

func connectorsList() Scenario {
	return Scenario{
		Name:  "client-connectors-list",
		Roles: []scenario.Role{merchant},
		Steps: []Step{{
			Name:  "list",
			Print: true,
			Call: func(ctx context.Context, x *Exec) (any, error) {
				return x.Session().ClientConnectors().All(ctx, connect.ConnectorOptions{PageOptions: list})
			},
		}},
	}
}

// connector builds the patch-then-verify scenario of one connector. The
// read-back lists only that connector.
func connector(tables scenario.FieldTables, key, table string, tolerant bool) (Scenario, error) {
	rows, err := tables.Table(table)
	if err != nil {
		return Scenario{}, err
	}
	return scenario.PatchVerify[Session, connect.ClientConnector]{
		Name:          "client-connectors-" + key,
		Role:          merchant,
		Rows:          rows,
		TolerantPatch: tolerant,
		ReadPrefix:    "data[0]",
		Patch: func(ctx context.Context, s Session, c connect.ClientConnector) (any, error) {
			return s.ClientConnectors().Update(ctx, c)
		},
		Get: func(ctx context.Context, s Session) (any, error) {
			return s.ClientConnectors().All(ctx, connect.ConnectorOptions{ConnectorKey: key})
		},
	}.Build()
}

func shopifyConnector(tables scenario.FieldTables) (Scenario, error) {
	return connector(tables, "shopify", "shopify_connector", false)
}

// The magento patch is tolerated: the API rejects its configuration.
func magentoConnector(tables scenario.FieldTables) (Scenario, error) {
	return connector(tables, "magento", "magento_connector", true)
}

func clientJobs() Scenario {
	return Scenario{
		Name:  "client-jobs",
		Roles: []scenario.Role{merchant},
		Steps: []Step{
			{
				Name:  "list",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().ClientJobs().All(ctx, connect.PageOptions{Page: 1, PerPage: 5})
				},
			},
			{
				Name:  "find",
				Print: true,
				Skip:  scenario.NeedResult[Session]("list", "data[0].id", "no job listed"),
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().ClientJobs().Find(ctx, intAt(x, "list", "data[0].id"))
				},
			},
		},
	}
}
