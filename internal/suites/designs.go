package suites

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mypromo/connect-sdk-test/internal/config"
	"github.com/mypromo/connect-sdk-test/internal/connect"
	"github.com/mypromo/connect-sdk-test/internal/scenario"
)

// designInput is the export name of the submitted design's id.
const designInput = "design.id"

func design(opts Options) Scenario {
	fx := opts.Fixtures
	return Scenario{
		Name:  "design",
		Title: "Design module",
		Roles: []scenario.Role{merchant},
		Steps: []Step{
			{
				Name:  "user-hash",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Designs().CreateEditorUserHash(ctx)
				},
			},
			{
				Name:  "create",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Designs().Create(ctx, connect.Design{
						EditorUserHash: stringAt(x, "user-hash", "editor_user_hash"),
						ReturnURL:      fx.ShopURL,
						CancelURL:      fx.ShopURL,
						SKU:            fx.ParentSKU,
						Intent:         fx.Intent,
						Options:        map[string]string{"example-key": "example-value"},
					})
				},
			},
			check("create", "sku", fx.ParentSKU),
			check("create", "intent", fx.Intent),
			{
				Name:   "submit",
				Print:  true,
				Export: map[string]string{designInput: "id"},
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Designs().Submit(ctx, stringAt(x, "create", "id"))
				},
			},
			check("submit", "status", "submitted"),
			{
				Name: "preview",
				Call: func(ctx context.Context, x *Exec) (any, error) {
					data, err := x.Session().Designs().PreviewPDF(ctx, stringAt(x, "create", "id"))
					if err != nil {
						return nil, err
					}
					return fileSummary(data), nil
				},
			},
			check("preview", "signature", "%PDF-"),
			{
				Name:  "save-preview",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					path := filepath.Join(opts.PreviewDir, "preview.pdf")
					return x.Session().Designs().SavePreview(ctx, stringAt(x, "create", "id"), path)
				},
			},
		},
	}
}

// sampleAddress is the recipient and invoice address of the sample order.
func sampleAddress() *connect.Address {
	return &connect.Address{
		Reference:               "your-reference-code",
		Company:                 "Sample Company",
		Firstname:               "Sam",
		Lastname:                "Sample",
		Street:                  "Sample Street 1",
		CareOf:                  "Street Add",
		Zip:                     "12345",
		City:                    "Sample Town",
		StateCode:               "NW",
		District:                "your-district",
		CountryCode:             "DE",
		Phone:                   "your-phone",
		Fax:                     "your-fax",
		Mobile:                  "your-mobile",
		Email:                   "sam@sample.com",
		VatID:                   "DE1234567890",
		EoriNumber:              "55555555555",
		AccountHolder:           "account-holder",
		IBAN:                    "your-iban",
		BicOrSwift:              "your-bic-or-swift",
		CommercialRegisterEntry: "your-commercial-register-entry",
	}
}

func orders(fx config.Fixtures) Scenario {
	orderID := func(x *Exec) int { return intAt(x, "create-order", "id") }
	return Scenario{
		Name:   "orders",
		Title:  "Orders module",
		Roles:  []scenario.Role{merchant},
		Inputs: []string{designInput},
		Steps: []Step{
			{
				Name:  "create-order",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Orders().Create(ctx, connect.Order{
						Reference:     "your-order-reference",
						Reference2:    "your-order-reference2",
						Comment:       "your comment for order here",
						Recipient:     sampleAddress(),
						Invoice:       sampleAddress(),
						FakePreflight: true,
						FakeShipment:  true,
					})
				},
			},
			{
				Name:  "add-design-item",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					id, _ := x.Input(designInput)
					return x.Session().Orders().AddItem(ctx, orderID(x), connect.OrderItem{
						Reference: "your-reference",
						Comment:   "comment for order item here",
						Quantity:  fx.Quantity,
						DesignID:  fmt.Sprint(id),
					})
				},
			},
			{
				Name:  "add-product-item",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Orders().AddItem(ctx, orderID(x), connect.OrderItem{
						Reference: "your-reference",
						Comment:   "comment for order item here",
						Quantity:  fx.Quantity,
						SKU:       fx.ChildSKU,
					})
				},
			},
			{
				Name:  "find",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Orders().Find(ctx, orderID(x))
				},
			},
			check("find", "reference", "your-order-reference"),
			check("find", "recipient.country_code", "DE"),
			check("find", "items[1].sku", fx.ChildSKU),
			{
				Name:  "submit",
				Print: true,
				Call: func(ctx context.Context, x *Exec) (any, error) {
					return x.Session().Orders().Submit(ctx, orderID(x))
				},
			},
			check("submit", "status", "submitted"),
		},
	}
}
