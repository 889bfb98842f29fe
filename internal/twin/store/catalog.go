package store

import "strings"

// Connectors is the static connector catalog.
var Connectors = []Connector{
	{ID: 1, Key: "shopify", Name: "Shopify", Target: "sales_channel", Required: []string{"shop_name", "token", "shop_url"}},
	{ID: 2, Key: "magento", Name: "Magento 2", Target: "sales_channel", Required: []string{"instance_url", "api_username", "api_password"}},
	{ID: 3, Key: "woocommerce", Name: "WooCommerce", Target: "sales_channel", Required: []string{"shop_url", "consumer_key", "consumer_secret"}},
}

// FindConnector resolves a connector by key or decimal id.
func FindConnector(keyOrID string) (Connector, bool) {
	for _, c := range Connectors {
		if c.Key == keyOrID || itoa(c.ID) == keyOrID {
			return c, true
		}
	}
	return Connector{}, false
}

// Feed templates by kind.
var (
	ExportTemplates = []string{"prices", "products", "inventory", "seo"}
	ImportTemplates = []string{"prices", "inventory", "seo"}
)

// ImportTemplateIDs maps numeric import template ids to keys.
var ImportTemplateIDs = map[int]string{1: "prices", 2: "inventory", 3: "seo"}

// FeedFormats are the accepted feed file formats.
var FeedFormats = []string{"xlsx", "csv", "xml"}

// Design intents.
var DesignIntents = []string{"customize", "upload"}

// Products is the static catalog. IDs and variant IDs are stable.
var Products = []Product{
	{
		ID: 1, SKU: "MP-F10005", Type: "product", CategoryID: 10, ShippingFrom: "DE", Available: true,
		Names:     map[string]string{"de": "T-Shirt Classic", "en": "Classic T-Shirt", "fr": "T-shirt classique"},
		MetaTitle: "Classic T-Shirt | print on demand",
		Variants: []Variant{
			{ID: 11, ProductID: 1, SKU: "MP-F10005-C0000001", SKUFulfiller: "FF-TS-W-M", Reference: "TS-WHITE-M", Size: "M", Color: "white", Available: true, Price: 12.90, PurchasePrc: 6.45, Stock: 240},
			{ID: 12, ProductID: 1, SKU: "MP-F10005-C0000002", SKUFulfiller: "FF-TS-W-L", Reference: "TS-WHITE-L", Size: "L", Color: "white", Available: true, Price: 12.90, PurchasePrc: 6.45, Stock: 180},
			{ID: 13, ProductID: 1, SKU: "MP-F10005-C0000003", SKUFulfiller: "FF-TS-B-M", Reference: "TS-BLACK-M", Size: "M", Color: "black", Available: false, Price: 13.90, PurchasePrc: 6.95, Stock: 0},
		},
	},
	{
		ID: 2, SKU: "MP-F10011", Type: "product", CategoryID: 20, ShippingFrom: "DE", Available: true,
		Names:     map[string]string{"de": "Tasse", "en": "Mug", "fr": "Tasse"},
		MetaTitle: "Ceramic mug | print on demand",
		Variants: []Variant{
			{ID: 21, ProductID: 2, SKU: "MP-F10011-C0000001", SKUFulfiller: "FF-MUG-W", Reference: "MUG-WHITE", Color: "white", Available: true, Price: 9.50, PurchasePrc: 3.80, Stock: 500},
		},
	},
	{
		ID: 3, SKU: "MP-F10020", Type: "product", CategoryID: 30, ShippingFrom: "FR", Available: false,
		Names:     map[string]string{"de": "Stofftasche", "en": "Tote Bag", "fr": "Sac en toile"},
		MetaTitle: "Tote bag | print on demand",
		Variants: []Variant{
			{ID: 31, ProductID: 3, SKU: "MP-F10020-C0000001", SKUFulfiller: "FF-TOTE-N", Reference: "TOTE-NATURAL", Color: "natural", Available: false, Price: 7.90, PurchasePrc: 3.10, Stock: 0},
		},
	},
	{
		ID: 4, SKU: "MP-S00001", Type: "service", CategoryID: 90, ShippingFrom: "DE", Available: true,
		Names:     map[string]string{"de": "Geschenkverpackung", "en": "Gift wrapping", "fr": "Emballage cadeau"},
		MetaTitle: "Gift wrapping",
		Variants: []Variant{
			{ID: 41, ProductID: 4, SKU: "MP-S00001-C0000001", SKUFulfiller: "FF-GIFT", Reference: "GIFT-WRAP", Available: true, Price: 2.50, PurchasePrc: 1.00, Stock: 9999},
		},
	},
}

// FindVariant resolves a variant by SKU.
func FindVariant(sku string) (Product, Variant, bool) {
	for _, p := range Products {
		for _, v := range p.Variants {
			if v.SKU == sku {
				return p, v, true
			}
		}
	}
	return Product{}, Variant{}, false
}

// FindProduct resolves a product by id.
func FindProduct(id int) (Product, bool) {
	for _, p := range Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Name returns the product name in lang, falling back to English.
func (p Product) Name(lang string) string {
	if n, ok := p.Names[strings.ToLower(lang)]; ok {
		return n
	}
	return p.Names["en"]
}

// Carriers are the shipping carriers the platform accepts.
var Carriers = []Lookup{
	{"code": "DHL", "name": "DHL"},
	{"code": "DPD", "name": "DPD"},
	{"code": "FEDEX", "name": "FedEx"},
	{"code": "GLS", "name": "GLS"},
	{"code": "UPS", "name": "UPS"},
}

// IsCarrier reports whether code is a known carrier.
func IsCarrier(code string) bool {
	for _, c := range Carriers {
		if c["code"] == strings.ToUpper(code) {
			return true
		}
	}
	return false
}

var Countries = []Lookup{
	{"code": "AT", "name": "Austria", "currency": "EUR"},
	{"code": "CH", "name": "Switzerland", "currency": "CHF"},
	{"code": "DE", "name": "Germany", "currency": "EUR"},
	{"code": "FR", "name": "France", "currency": "EUR"},
	{"code": "GB", "name": "United Kingdom", "currency": "GBP"},
	{"code": "US", "name": "United States", "currency": "USD"},
}

// IsCountry reports whether code is a known ISO country code.
func IsCountry(code string) bool {
	for _, c := range Countries {
		if c["code"] == code {
			return true
		}
	}
	return false
}

var Locales = []Lookup{
	{"code": "de", "name": "Deutsch"},
	{"code": "en", "name": "English"},
	{"code": "fr", "name": "Français"},
}

var States = []Lookup{
	{"code": "BY", "country_code": "DE", "name": "Bayern"},
	{"code": "BE", "country_code": "DE", "name": "Berlin"},
	{"code": "NW", "country_code": "DE", "name": "Nordrhein-Westfalen"},
	{"code": "CA", "country_code": "US", "name": "California"},
	{"code": "NY", "country_code": "US", "name": "New York"},
}

var Timezones = []Lookup{
	{"name": "Europe/Berlin", "offset": "+01:00"},
	{"name": "Europe/London", "offset": "+00:00"},
	{"name": "Europe/Paris", "offset": "+01:00"},
	{"name": "UTC", "offset": "+00:00"},
}

// Currencies are accepted in product and catalog filters.
var Currencies = []string{"EUR", "CHF", "GBP", "USD"}
