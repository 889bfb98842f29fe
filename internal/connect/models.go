package connect

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

// Bool returns a pointer to b. Request models use pointers so false and 0
// are sent instead of omitted.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// ---------------------------------------------------------------------------
// Listing options
// ---------------------------------------------------------------------------

// PageOptions are the paging parameters shared by every list endpoint.
type PageOptions struct {
	Page       int
	PerPage    int
	Pagination *bool
}

func (o PageOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Pagination != nil {
		v.Set("pagination", strconv.FormatBool(*o.Pagination))
	}
	return v
}

// ConnectorOptions filter the client connector list.
type ConnectorOptions struct {
	PageOptions
	ConnectorID  int
	ConnectorKey string
	Target       string
}

func (o ConnectorOptions) values() url.Values {
	v := o.PageOptions.values()
	if o.ConnectorID > 0 {
		v.Set("connector_id", strconv.Itoa(o.ConnectorID))
	}
	setIf(v, "connector_key", o.ConnectorKey)
	setIf(v, "target", o.Target)
	return v
}

// ProductOptions filter product listings.
type ProductOptions struct {
	PageOptions
	From            int
	ShippingFrom    string
	SKU             string
	Currency        string
	Lang            string
	Search          string
	Available       *bool
	IncludeVariants *bool
}

func (o ProductOptions) values() url.Values {
	v := o.PageOptions.values()
	if o.From > 0 {
		v.Set("from", strconv.Itoa(o.From))
	}
	setIf(v, "shipping_from", o.ShippingFrom)
	setIf(v, "sku", o.SKU)
	setIf(v, "currency", o.Currency)
	setIf(v, "lang", o.Lang)
	setIf(v, "search", o.Search)
	if o.Available != nil {
		v.Set("available", strconv.FormatBool(*o.Available))
	}
	if o.IncludeVariants != nil {
		v.Set("include_variants", strconv.FormatBool(*o.IncludeVariants))
	}
	return v
}

// FeedOptions filter product export and import listings.
type FeedOptions struct {
	PageOptions
	CreatedFrom time.Time
	CreatedTo   time.Time
}

func (o FeedOptions) values() url.Values {
	v := o.PageOptions.values()
	if !o.CreatedFrom.IsZero() {
		v.Set("created_from", o.CreatedFrom.UTC().Format(time.RFC3339))
	}
	if !o.CreatedTo.IsZero() {
		v.Set("created_to", o.CreatedTo.UTC().Format(time.RFC3339))
	}
	return v
}

// VariantOptions select the variants of one product.
type VariantOptions struct {
	PageOptions
	From      int
	ID        int
	SKU       string
	Reference string
	Lang      string
}

func (o VariantOptions) values() url.Values {
	v := o.PageOptions.values()
	if o.From > 0 {
		v.Set("from", strconv.Itoa(o.From))
	}
	if o.ID > 0 {
		v.Set("id", strconv.Itoa(o.ID))
	}
	setIf(v, "sku", o.SKU)
	setIf(v, "reference", o.Reference)
	setIf(v, "lang", o.Lang)
	return v
}

// CatalogOptions filter price, inventory and seo lookups.
type CatalogOptions struct {
	PageOptions
	ShippingFrom string
	SKU          string
}

func (o CatalogOptions) values() url.Values {
	v := o.PageOptions.values()
	setIf(v, "shipping_from", o.ShippingFrom)
	setIf(v, "sku", o.SKU)
	return v
}

// ProductionOptions filter production order listings.
type ProductionOptions struct {
	PageOptions
	From   int
	Status string
}

func (o ProductionOptions) values() url.Values {
	v := o.PageOptions.values()
	if o.From > 0 {
		v.Set("from", strconv.Itoa(o.From))
	}
	setIf(v, "status", o.Status)
	return v
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

// ---------------------------------------------------------------------------
// Client settings
// ---------------------------------------------------------------------------

// MerchantSettings is the patchable subset of a merchant's client settings.
type MerchantSettings struct {
	ActivateNewFulfiller    *bool `json:"activate_new_fulfiller,omitempty"`
	ActivateNewProducts     *bool `json:"activate_new_products,omitempty"`
	HasToSupplyCarrier      *bool `json:"has_to_supply_carrier,omitempty"`
	HasToSupplyTrackingCode *bool `json:"has_to_supply_tracking_code,omitempty"`
	PriceResetLogic         *int  `json:"price_reset_logic,omitempty"`
	AdjustMaxUpPercentage   *int  `json:"adjust_max_up_percentage,omitempty"`
	AdjustMaxDownPercentage *int  `json:"adjust_max_down_percentage,omitempty"`
	SentToProductionDelay   *int  `json:"sent_to_production_delay,omitempty"`
}

// Validate checks ranges before the request is sent.
func (m MerchantSettings) Validate() error {
	v := &apierr.ValidationError{Message: "invalid merchant settings"}
	checkRange(v, "adjust_max_up_percentage", m.AdjustMaxUpPercentage, 0, 100)
	checkRange(v, "adjust_max_down_percentage", m.AdjustMaxDownPercentage, 0, 100)
	checkRange(v, "sent_to_production_delay", m.SentToProductionDelay, 0, 720)
	checkRange(v, "price_reset_logic", m.PriceResetLogic, 0, 2)
	return v.OrNil()
}

// FulfillerSettings is the patchable subset of a fulfiller's client settings.
type FulfillerSettings struct {
	HasToSupplyCarrier      *bool `json:"has_to_supply_carrier,omitempty"`
	HasToSupplyTrackingCode *bool `json:"has_to_supply_tracking_code,omitempty"`
}

// Validate always succeeds; every field is optional.
func (FulfillerSettings) Validate() error { return nil }

func checkRange(v *apierr.ValidationError, field string, n *int, lo, hi int) {
	if n != nil && (*n < lo || *n > hi) {
		v.Add(field, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
}

// ---------------------------------------------------------------------------
// Client connectors
// ---------------------------------------------------------------------------

// Connector targets.
const (
	TargetSalesChannel = "sales_channel"
)

// ClientConnector configures one shop integration.
type ClientConnector struct {
	ConnectorID  int    `json:"connector_id,omitempty"`
	ConnectorKey string `json:"connector_key"`
	Target       string `json:"target"`
	// Configuration is a ShopifyConfiguration, a MagentoConfiguration or
	// a decoded JSON object.
	Configuration any `json:"configuration"`
}

// Validate checks the connector identity.
func (c ClientConnector) Validate() error {
	v := &apierr.ValidationError{Message: "invalid client connector"}
	if c.ConnectorKey == "" && c.ConnectorID == 0 {
		v.Add("connector_key", "connector_key or connector_id is required")
	}
	if c.Target == "" {
		v.Add("target", "required")
	}
	return v.OrNil()
}

// ShopifyConfiguration is the configuration block of a shopify connector.
type ShopifyConfiguration struct {
	ShopName                    string `json:"shop_name"`
	Token                       string `json:"token"`
	ShopURL                     string `json:"shop_url"`
	SalePriceConfig             string `json:"sale_price_config,omitempty"`
	ShopCurrency                string `json:"shop_currency,omitempty"`
	ProductsLanguage            string `json:"products_language,omitempty"`
	SyncProductSettings         string `json:"sync_product_settings,omitempty"`
	CreateCollections           *bool  `json:"create_collections,omitempty"`
	UpdateImages                *bool  `json:"update_images,omitempty"`
	UpdateProducts              *bool  `json:"update_products,omitempty"`
	UpdateSeo                   *bool  `json:"update_seo,omitempty"`
	RecreateDeletedCollection   *bool  `json:"recreate_deleted_collection,omitempty"`
	RecreateDeletedProducts     *bool  `json:"recreate_deleted_products,omitempty"`
	AddNewProductsAutomatically *bool  `json:"add_new_products_automatically,omitempty"`
	UseMegaMenu                 *bool  `json:"use_mega_menu,omitempty"`
}

// MagentoConfiguration is the configuration block of a magento connector.
type MagentoConfiguration struct {
	InstanceURL          string `json:"instance_url"`
	APIUsername          string `json:"api_username"`
	APIPassword          string `json:"api_password"`
	WebsiteCode          string `json:"website_code,omitempty"`
	WebsiteCodeID        int    `json:"website_code_id,omitempty"`
	WebsiteCodeName      string `json:"website_code_name,omitempty"`
	StoreCode            string `json:"store_code,omitempty"`
	StoreCodeID          int    `json:"store_code_id,omitempty"`
	StoreCodeName        string `json:"store_code_name,omitempty"`
	SyncProductsSettings string `json:"sync_products_settings,omitempty"`
	SalesPriceConfig     string `json:"sales_price_config,omitempty"`
}

// ---------------------------------------------------------------------------
// Designs and orders
// ---------------------------------------------------------------------------

// Design is a product personalization session in the Connect editor.
type Design struct {
	EditorUserHash string            `json:"editor_user_hash"`
	ReturnURL      string            `json:"return_url"`
	CancelURL      string            `json:"cancel_url"`
	SKU            string            `json:"sku"`
	Intent         string            `json:"intent"`
	Quantity       int               `json:"quantity,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
}

// Validate checks the fields the create endpoint requires.
func (d Design) Validate() error {
	v := &apierr.ValidationError{Message: "invalid design"}
	if d.EditorUserHash == "" {
		v.Add("editor_user_hash", "required")
	}
	if d.SKU == "" {
		v.Add("sku", "required")
	}
	switch d.Intent {
	case "customize", "upload":
	case "":
		v.Add("intent", "required")
	default:
		v.Add("intent", "must be customize or upload")
	}
	if d.Quantity < 0 {
		v.Add("quantity", "must not be negative")
	}
	checkURL(v, "return_url", d.ReturnURL)
	checkURL(v, "cancel_url", d.CancelURL)
	return v.OrNil()
}

// Address is a postal and billing identity used on orders.
type Address struct {
	Reference               string `json:"reference,omitempty"`
	Company                 string `json:"company,omitempty"`
	Department              string `json:"department,omitempty"`
	Salutation              string `json:"salutation,omitempty"`
	Gender                  string `json:"gender,omitempty"`
	DateOfBirth             string `json:"date_of_birth,omitempty"`
	Firstname               string `json:"firstname"`
	Middlename              string `json:"middlename,omitempty"`
	Lastname                string `json:"lastname"`
	Street                  string `json:"street"`
	CareOf                  string `json:"care_of,omitempty"`
	Zip                     string `json:"zip"`
	City                    string `json:"city"`
	District                string `json:"district,omitempty"`
	StateCode               string `json:"state_code,omitempty"`
	CountryCode             string `json:"country_code"`
	Phone                   string `json:"phone,omitempty"`
	Fax                     string `json:"fax,omitempty"`
	Mobile                  string `json:"mobile,omitempty"`
	Email                   string `json:"email,omitempty"`
	VatID                   string `json:"vat_id,omitempty"`
	EoriNumber              string `json:"eori_number,omitempty"`
	AccountHolder           string `json:"account_holder,omitempty"`
	IBAN                    string `json:"iban,omitempty"`
	BicOrSwift              string `json:"bic_or_swift,omitempty"`
	CommercialRegisterEntry string `json:"commercial_register_entry,omitempty"`
}

func (a Address) validate(v *apierr.ValidationError, prefix string) {
	required := map[string]string{
		"firstname":    a.Firstname,
		"lastname":     a.Lastname,
		"street":       a.Street,
		"zip":          a.Zip,
		"city":         a.City,
		"country_code": a.CountryCode,
	}
	for _, f := range []string{"firstname", "lastname", "street", "zip", "city", "country_code"} {
		if strings.TrimSpace(required[f]) == "" {
			v.Add(prefix+"."+f, "required")
		}
	}
	if a.CountryCode != "" && len(a.CountryCode) != 2 {
		v.Add(prefix+".country_code", "must be an ISO 3166-1 alpha-2 code")
	}
	if a.Email != "" && !strings.Contains(a.Email, "@") {
		v.Add(prefix+".email", "must be an email address")
	}
}

// Order is the header of a merchant order.
type Order struct {
	Reference     string   `json:"reference,omitempty"`
	Reference2    string   `json:"reference2,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	Recipient     *Address `json:"recipient"`
	Invoice       *Address `json:"invoice,omitempty"`
	Shipper       *Address `json:"shipper,omitempty"`
	FakePreflight bool     `json:"fake_preflight,omitempty"`
	FakeShipment  bool     `json:"fake_shipment,omitempty"`
}

// Validate checks addresses before the order is created.
func (o Order) Validate() error {
	v := &apierr.ValidationError{Message: "invalid order"}
	if o.Recipient == nil {
		v.Add("recipient", "required")
	} else {
		o.Recipient.validate(v, "recipient")
	}
	if o.Invoice != nil {
		o.Invoice.validate(v, "invoice")
	}
	if o.Shipper != nil {
		o.Shipper.validate(v, "shipper")
	}
	return v.OrNil()
}

// OrderItem adds a product or design to an order.
type OrderItem struct {
	Reference string `json:"reference,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Quantity  int    `json:"quantity"`
	SKU       string `json:"sku,omitempty"`
	DesignID  string `json:"design_id,omitempty"`
	// RelatedItemID links a service item to an earlier order item.
	RelatedItemID int `json:"related_order_item_id,omitempty"`
}

// Validate checks the item references a product or a design.
func (i OrderItem) Validate() error {
	v := &apierr.ValidationError{Message: "invalid order item"}
	if i.Quantity <= 0 {
		v.Add("quantity", "must be positive")
	}
	if i.SKU == "" && i.DesignID == "" {
		v.Add("sku", "sku or design_id is required")
	}
	return v.OrNil()
}

// ---------------------------------------------------------------------------
// Product feeds
// ---------------------------------------------------------------------------

// Callback tells the API where to report feed completion.
type Callback struct {
	URL string `json:"url"`
}

// ExportFilters narrows a product export.
type ExportFilters struct {
	CategoryID   *int   `json:"category_id"`
	Currency     string `json:"currency,omitempty"`
	Lang         string `json:"lang,omitempty"`
	ProductTypes string `json:"product_types,omitempty"`
	Search       string `json:"search,omitempty"`
	SKU          string `json:"sku,omitempty"`
	ShippingFrom string `json:"shipping_from,omitempty"`
}

// Export product type filters.
const (
	ProductTypesAll      = "all"
	ProductTypesProducts = "products"
	ProductTypesServices = "services"
)

// ProductExport requests an export file.
type ProductExport struct {
	TemplateKey string        `json:"template_key"`
	Format      string        `json:"format"`
	Filters     ExportFilters `json:"filters"`
	Callback    *Callback     `json:"callback,omitempty"`
}

// Validate checks template, format and filters.
func (e ProductExport) Validate() error {
	v := &apierr.ValidationError{Message: "invalid product export"}
	if e.TemplateKey == "" {
		v.Add("template_key", "required")
	}
	checkFormat(v, e.Format)
	switch e.Filters.ProductTypes {
	case "", ProductTypesAll, ProductTypesProducts, ProductTypesServices:
	default:
		v.Add("filters.product_types", "unknown product type "+e.Filters.ProductTypes)
	}
	if e.Callback != nil {
		checkURL(v, "callback.url", e.Callback.URL)
	}
	return v.OrNil()
}

// ImportInput points at the file to import.
type ImportInput struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// ProductImport requests an import of a feed file.
type ProductImport struct {
	TemplateID  int         `json:"template_id,omitempty"`
	TemplateKey string      `json:"template_key"`
	DryRun      bool        `json:"dry_run"`
	Input       ImportInput `json:"input"`
	Callback    *Callback   `json:"callback,omitempty"`
}

// Validate checks template and input.
func (i ProductImport) Validate() error {
	v := &apierr.ValidationError{Message: "invalid product import"}
	if i.TemplateKey == "" && i.TemplateID == 0 {
		v.Add("template_key", "template_key or template_id is required")
	}
	if i.Input.URL == "" {
		v.Add("input.url", "required")
	} else {
		checkURL(v, "input.url", i.Input.URL)
	}
	checkFormat(v, i.Input.Format)
	if i.Callback != nil {
		checkURL(v, "callback.url", i.Callback.URL)
	}
	return v.OrNil()
}

func checkFormat(v *apierr.ValidationError, format string) {
	switch format {
	case "xlsx", "csv", "xml":
	case "":
		v.Add("format", "required")
	default:
		v.Add("format", "must be xlsx, csv or xml")
	}
}

func checkURL(v *apierr.ValidationError, field, raw string) {
	if raw == "" {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		v.Add(field, "must be an absolute url")
	}
}

// ---------------------------------------------------------------------------
// Production
// ---------------------------------------------------------------------------

// Shipment reports a parcel sent for a production order.
type Shipment struct {
	Carrier    string         `json:"carrier"`
	TrackingID string         `json:"tracking_id"`
	Height     int            `json:"height,omitempty"`
	Width      int            `json:"width,omitempty"`
	Depth      int            `json:"depth,omitempty"`
	Weight     int            `json:"weight,omitempty"` // grams
	Items      []ShipmentItem `json:"production_order_items,omitempty"`
}

// ShipmentItem assigns a quantity of one production order item to a parcel.
type ShipmentItem struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// Validate checks carrier, tracking id and dimensions.
func (s Shipment) Validate() error {
	v := &apierr.ValidationError{Message: "invalid shipment"}
	if s.Carrier == "" {
		v.Add("carrier", "required")
	}
	if s.TrackingID == "" {
		v.Add("tracking_id", "required")
	}
	for field, n := range map[string]int{"height": s.Height, "width": s.Width, "depth": s.Depth, "weight": s.Weight} {
		if n < 0 {
			v.Add(field, "must not be negative")
		}
	}
	return v.OrNil()
}
