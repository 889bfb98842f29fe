package suites

import (
	"context"

	"github.com/mypromo/connect-sdk-test/internal/config"
	"github.com/mypromo/connect-sdk-test/internal/connect"
	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

func products() Scenario {
	productID := func(x *Exec) int { return intAt(x, "all", "data[0].id") }
	needProduct := scenario.NeedResult[Session]("all", "data[0].id", "no products listed")
	return Scenario{
		Name:  "products",
		Roles: []scenario.Role{merchant, fulfiller},
		Steps: []Step{
			{
				Name:  "all",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().All(ctx, connect.ProductOptions{
						PageOptions:     list,
						From:            1,
						ShippingFrom:    "DE",
						Available:       connect.Bool(true),
						Currency:        "EUR",
						Lang:            "DE",
						IncludeVariants: connect.Bool(true),
					})
				},
			},
			checkIf(needProduct, "all", "data[0].shipping_from", "DE"),
			{
				Name:  "find",
				Print: true,
				Skip:  needProduct,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().Find(ctx, productID(x), connect.ProductOptions{
						Lang:            "DE",
						IncludeVariants: connect.Bool(true),
					})
				},
			},
			{
				Name:  "variants",
				Print: true,
				Skip:  scenario.NeedResult[Session]("all", "data[0].variants[0].id", "no variants listed for the first product"),
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().Variants(ctx, connect.VariantOptions{
						PageOptions: list,
						From:        1,
						ID:          productID(x),
						Lang:        "DE",
					})
				},
			},
			{
				Name:  "prices-merchant",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().Prices(ctx, connect.CatalogOptions{PageOptions: list, ShippingFrom: "DE"})
				},
			},
			{
				Name:  "prices-fulfiller",
				Role:  fulfiller,
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().Prices(ctx, connect.CatalogOptions{PageOptions: list})
				},
			},
			{
				Name:  "inventory-merchant",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().Inventory(ctx, connect.CatalogOptions{PageOptions: list, ShippingFrom: "DE"})
				},
			},
			{
				Name:  "inventory-fulfiller",
				Role:  fulfiller,
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().Inventory(ctx, connect.CatalogOptions{PageOptions: list})
				},
			},
			{
				Name:  "seo",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Products().Seo(ctx, connect.CatalogOptions{PageOptions: list})
				},
			},
		},
	}
}

func sampleExport(fx config.Fixtures) connect.ProductExport {
	return connect.ProductExport{
		TemplateKey: "prices",
		Format:      "xlsx",
		Filters: connect.ExportFilters{
			Currency:     "EUR",
			Lang:         "DE",
			ProductTypes: connect.ProductTypesAll,
			ShippingFrom: "DE",
		},
		Callback: callback(fx.CallbackURL),
	}
}

// requestThen requests a fresh feed under key and runs op on its id.
func requestThen(key string, request func(ctx context.Context, x *Exec) (any, error), name string, op func(ctx context.Context, x *Exec, id int) (any, error)) []Step {
	return []Step{
		{Name: key, Print: true, Call: request},
		{
			Name:                    name,
			Print:                   true,
			ContinueOnResponseError: true,
			Call: func(ctx context.Context, x *Exec) (any, error) {
				return op(ctx, x, intAt(x, key, "id"))
			},
		},
	}
}

func productExport(fx config.Fixtures) Scenario {
	request := func(ctx context.Context, x *Exec) (any, error) {
		return x.Session().ProductExports().Request(ctx, sampleExport(fx))
	}
	steps := []Step{
		{Name: "request", Print: true, Call: request},
		check("request", "template_key", "prices"),
		{
			Name:  "find",
			Print: true,
			Call: func(ctx context.Context, x *Exec) (any, error) {
				return x.Session().ProductExports().Find(ctx, intAt(x, "request", "id"))
			},
		},
		{
			Name:  "all",
			Print: true,
			Call: func(ctx context.Context, x *Exec) (any, error) {
				return x.Session().ProductExports().All(ctx, connect.FeedOptions{PageOptions: list})
			},
		},
	}
	steps = append(steps, requestThen("request-cancel", request, "cancel", func(ctx context.Context, x *Exec, id int) (any, error) {
		return x.Session().ProductExports().Cancel(ctx, id)
	})...)
	steps = append(steps, requestThen("request-delete", request, "delete", func(ctx context.Context, x *Exec, id int) (any, error) {
		return x.Session().ProductExports().Delete(ctx, id)
	})...)
	return Scenario{Name: "product-export", Roles: []scenario.Role{merchant}, Steps: steps}
}

// importURL is a price sheet reachable by the API.
const importURL = "https://downloads.test.mypromo.com/feeds/Merchant-Prices.xlsx"

func sampleImport(fx config.Fixtures) connect.ProductImport {
	return connect.ProductImport{
		TemplateKey: "prices",
		Input:       connect.ImportInput{URL: importURL, Format: "xlsx"},
		Callback:    callback(fx.CallbackURL),
	}
}

func productImport(fx config.Fixtures) Scenario {
	request := func(ctx context.Context, x *Exec) (any, error) {
		return x.Session().ProductImports().Request(ctx, sampleImport(fx))
	}
	steps := []Step{
		{Name: "request", Print: true, Call: request},
		check("request", "template_key", "prices"),
		{
			Name:  "find",
			Print: true,
			Call: func(ctx context.Context, x *Exec) (any, error) {
				return x.Session().ProductImports().Find(ctx, intAt(x, "request", "id"))
			},
		},
		{
			Name:  "all",
			Print: true,
			Call: func(ctx context.Context, x *Exec) (any, error) {
				return x.Session().ProductImports().All(ctx, connect.FeedOptions{PageOptions: list})
			},
		},
	}
	steps = append(steps, requestThen("request-cancel", request, "cancel", func(ctx context.Context, x *Exec, id int) (any, error) {
		return x.Session().ProductImports().Cancel(ctx, id)
	})...)
	steps = append(steps, requestThen("request-delete", request, "delete", func(ctx context.Context, x *Exec, id int) (any, error) {
		return x.Session().ProductImports().Delete(ctx, id)
	})...)
	steps = append(steps, requestThen("request-validate", request, "validate", func(ctx context.Context, x *Exec, id int) (any, error) {
		return x.Session().ProductImports().Validate(ctx, id)
	})...)
	steps = append(steps, Step{
		Name:                    "confirm",
		Print:                   true,
		ContinueOnResponseError: true,
		Call: func(ctx context.Context, x *Exec) (any, error) {
			return x.Session().ProductImports().Confirm(ctx, intAt(x, "request-validate", "id"))
		},
	})
	return Scenario{Name: "product-import", Roles: []scenario.Role{merchant}, Steps: steps}
}
