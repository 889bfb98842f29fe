package store

// Client roles.
const (
	RoleMerchant  = "merchant"
	RoleFulfiller = "fulfiller"
)

// Client is an API identity the twin accepts at /oauth/token.
type Client struct {
	Number int    `json:"number"`
	ID     string `json:"client_id"`
	Secret string `json:"-"`
	Role   string `json:"role"`
}

// Settings are the client settings of one client. Merchant-only fields are
// nil for fulfillers so they are omitted from responses.
type Settings struct {
	ClientID                string `json:"client_id"`
	ClientType              string `json:"client_type"`
	ActivateNewFulfiller    *bool  `json:"activate_new_fulfiller,omitempty"`
	ActivateNewProducts     *bool  `json:"activate_new_products,omitempty"`
	HasToSupplyCarrier      *bool  `json:"has_to_supply_carrier"`
	HasToSupplyTrackingCode *bool  `json:"has_to_supply_tracking_code"`
	PriceResetLogic         *int   `json:"price_reset_logic,omitempty"`
	AdjustMaxUpPercentage   *int   `json:"adjust_max_up_percentage,omitempty"`
	AdjustMaxDownPercentage *int   `json:"adjust_max_down_percentage,omitempty"`
	SentToProductionDelay   *int   `json:"sent_to_production_delay,omitempty"`
	UpdatedAt               string `json:"updated_at"`
}

// Connector is an integration the platform offers.
type Connector struct {
	ID       int      `json:"connector_id"`
	Key      string   `json:"connector_key"`
	Name     string   `json:"name"`
	Target   string   `json:"target"`
	Required []string `json:"-"`
}

// ClientConnector is a client's configuration of a Connector.
type ClientConnector struct {
	ID            int            `json:"id"`
	Owner         int            `json:"owner"`
	ConnectorID   int            `json:"connector_id"`
	ConnectorKey  string         `json:"connector_key"`
	Target        string         `json:"target"`
	Configuration map[string]any `json:"configuration"`
	UpdatedAt     string         `json:"updated_at"`
}

// Job is a background job of a client.
type Job struct {
	ID         int    `json:"id"`
	Owner      int    `json:"owner"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Reference  string `json:"reference,omitempty"`
	CreatedAt  string `json:"created_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// EditorUser is a personalization editor identity.
type EditorUser struct {
	ID    int    `json:"id"`
	Owner int    `json:"owner"`
	Hash  string `json:"editor_user_hash"`
}

// Design is a personalization session.
type Design struct {
	ID             string            `json:"id"`
	Owner          int               `json:"owner"`
	EditorUserHash string            `json:"editor_user_hash"`
	SKU            string            `json:"sku"`
	Intent         string            `json:"intent"`
	Quantity       int               `json:"quantity"`
	Options        map[string]string `json:"options,omitempty"`
	ReturnURL      string            `json:"return_url,omitempty"`
	CancelURL      string            `json:"cancel_url,omitempty"`
	Status         string            `json:"status"`
	EditorStartURL string            `json:"editor_start_url"`
	CreatedAt      string            `json:"created_at"`
	SubmittedAt    string            `json:"submitted_at,omitempty"`
}

// Address is a postal identity on an order.
type Address struct {
	Reference   string `json:"reference,omitempty"`
	Company     string `json:"company,omitempty"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Street      string `json:"street"`
	CareOf      string `json:"care_of,omitempty"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	VatID       string `json:"vat_id,omitempty"`
}

// Order is a merchant order.
type Order struct {
	ID            int         `json:"id"`
	Owner         int         `json:"owner"`
	Reference     string      `json:"reference,omitempty"`
	Reference2    string      `json:"reference2,omitempty"`
	Comment       string      `json:"comment,omitempty"`
	Status        string      `json:"status"`
	Recipient     *Address    `json:"recipient"`
	Invoice       *Address    `json:"invoice,omitempty"`
	Shipper       *Address    `json:"shipper,omitempty"`
	FakePreflight bool        `json:"fake_preflight"`
	FakeShipment  bool        `json:"fake_shipment"`
	Items         []OrderItem `json:"items"`
	CreatedAt     string      `json:"created_at"`
	SubmittedAt   string      `json:"submitted_at,omitempty"`
}

// OrderItem is a product or design line of an order.
type OrderItem struct {
	ID            int    `json:"id"`
	OrderID       int    `json:"order_id"`
	Reference     string `json:"reference,omitempty"`
	Comment       string `json:"comment,omitempty"`
	Quantity      int    `json:"quantity"`
	SKU           string `json:"sku"`
	DesignID      string `json:"design_id,omitempty"`
	RelatedItemID int    `json:"related_order_item_id,omitempty"`
}

// Feed statuses.
const (
	FeedQueued    = "queued"
	FeedValidated = "validated"
	FeedConfirmed = "confirmed"
	FeedCancelled = "cancelled"
	FeedDone      = "done"
)

// Export is a product export request.
type Export struct {
	ID          int            `json:"id"`
	Owner       int            `json:"owner"`
	TemplateKey string         `json:"template_key"`
	Format      string         `json:"format"`
	Filters     map[string]any `json:"filters"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Status      string         `json:"status"`
	JobID       int            `json:"job_id"`
	CreatedAt   string         `json:"created_at"`
}

// Import is a product import request.
type Import struct {
	ID          int        `json:"id"`
	Owner       int        `json:"owner"`
	TemplateID  int        `json:"template_id,omitempty"`
	TemplateKey string     `json:"template_key"`
	DryRun      bool       `json:"dry_run"`
	InputURL    string     `json:"input_url"`
	InputFormat string     `json:"input_format"`
	CallbackURL string     `json:"callback_url,omitempty"`
	Status      string     `json:"status"`
	Validation  *Validated `json:"validation,omitempty"`
	JobID       int        `json:"job_id"`
	CreatedAt   string     `json:"created_at"`
}

// Validated is the outcome of an import validation pass.
type Validated struct {
	Rows   int      `json:"rows"`
	Errors []string `json:"errors"`
}

// Product is a catalog product.
type Product struct {
	ID           int               `json:"id"`
	SKU          string            `json:"sku"`
	Type         string            `json:"type"`
	Names        map[string]string `json:"-"`
	CategoryID   int               `json:"category_id"`
	ShippingFrom string            `json:"shipping_from"`
	Available    bool              `json:"available"`
	Variants     []Variant         `json:"-"`
	MetaTitle    string            `json:"-"`
}

// Variant is a purchasable variant of a product.
type Variant struct {
	ID           int     `json:"id"`
	ProductID    int     `json:"product_id"`
	SKU          string  `json:"sku"`
	SKUFulfiller string  `json:"-"`
	Reference    string  `json:"reference"`
	Size         string  `json:"size,omitempty"`
	Color        string  `json:"color,omitempty"`
	Available    bool    `json:"available"`
	Price        float64 `json:"-"`
	PurchasePrc  float64 `json:"-"`
	Stock        int     `json:"-"`
}

// Production order statuses.
const (
	ProductionAccepted = "accepted"
	ProductionShipped  = "shipped"
)

// ProductionOrder is the fulfiller's view of an order to produce.
type ProductionOrder struct {
	ID        int              `json:"id"`
	Owner     int              `json:"owner"`
	OrderID   int              `json:"order_id"`
	Status    string           `json:"status"`
	Items     []ProductionItem `json:"items"`
	Shipments []Shipment       `json:"shipments"`
	CreatedAt string           `json:"created_at"`
}

// ProductionItem is one line of a production order.
type ProductionItem struct {
	ID       int    `json:"id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	DesignID string `json:"design_id,omitempty"`
}

// Shipment is a parcel sent for a production order.
type Shipment struct {
	ID         int            `json:"id"`
	Carrier    string         `json:"carrier"`
	TrackingID string         `json:"tracking_id"`
	Height     int            `json:"height"`
	Width      int            `json:"width"`
	Depth      int            `json:"depth"`
	Weight     int            `json:"weight"`
	Items      []ShipmentItem `json:"production_order_items"`
	CreatedAt  string         `json:"created_at"`
}

// ShipmentItem assigns a quantity of a production item to a parcel.
type ShipmentItem struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// Lookup is an entry of a static reference list (carriers, countries...).
type Lookup map[string]any
