package suites

import (
	"context"

	"github.com/mypromo/connect-sdk-test/internal/connect"
	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

func production() Scenario {
	first := func(x *Exec) int { return intAt(x, "all", "data[0].id") }
	needOrder := scenario.NeedResult[Session]("all", "data[0].id", "no production orders listed")
	return Scenario{
		Name:  "production",
		Roles: []scenario.Role{fulfiller},
		Steps: []Step{
			{
				Name:  "all",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().ProductionOrders().All(ctx, connect.ProductionOptions{
						PageOptions: connect.PageOptions{Page: 1, PerPage: 5},
						From:        1,
					})
				},
			},
			{
				Name:  "find",
				Print: true,
				Skip:  needOrder,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().ProductionOrders().Find(ctx, first(x))
				},
			},
			{
				Name:  "generic-label",
				Print: true,
				Skip:  needOrder,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().ProductionOrders().GenericLabel(ctx, first(x))
				},
			},
			{
				Name: "download-label",
				Skip: scenario.NeedResult[Session]("generic-label", "url", "no label url"),
				Call: func(ctx context.Context, x *Exec) (any, error) {
					data, err := x.Session().Misc().DownloadFile(ctx, stringAt(x, "generic-label", "url"))
					if err != nil {
						return nil, err
					}
					return fileSummary(data), nil
				},
			},
			check("download-label", "signature", "%PDF-"),
			{
				Name:  "add-shipment",
				Print: true,
				Skip:  needOrder,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().ProductionOrders().AddShipment(ctx, first(x), connect.Shipment{
						Carrier:    "UPS",
						TrackingID: "132415XYZ",
						Height:     30,
						Width:      45,
						Depth:      20,
						Weight:     10000,
					})
				},
			},
			check("add-shipment", "carrier", "UPS"),
			check("add-shipment", "tracking_id", "132415XYZ"),
		},
	}
}

func miscellaneous() Scenario {
	lookup := func(name string, fn func(ctx context.Context, m connect.Misc) (connect.Payload, error)) Step {
		return Step{
			Name:  name,
			Print: true,
			Call: func(ctx context.Context, x *Exec) (any, error) {
				return fn(ctx, x.Session().Misc())
			},
		}
	}
	return Scenario{
		Name:  "miscellaneous",
		Roles: []scenario.Role{merchant},
		Steps: []Step{
			lookup("status", func(ctx context.Context, m connect.Misc) (connect.Payload, error) { return m.APIStatus(ctx) }),
			check("status", "message", "OK"),
			lookup("carriers", func(ctx context.Context, m connect.Misc) (connect.Payload, error) { return m.Carriers(ctx, list) }),
			lookup("countries", func(ctx context.Context, m connect.Misc) (connect.Payload, error) { return m.Countries(ctx, list) }),
			lookup("locales", func(ctx context.Context, m connect.Misc) (connect.Payload, error) { return m.Locales(ctx, list) }),
			lookup("states", func(ctx context.Context, m connect.Misc) (connect.Payload, error) { return m.States(ctx, list) }),
			lookup("timezones", func(ctx context.Context, m connect.Misc) (connect.Payload, error) { return m.Timezones(ctx, list) }),
		},
	}
}
