package api

import (
	"math"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// exchangeRates convert catalog prices from EUR.
var exchangeRates = map[string]float64{"EUR": 1, "CHF": 1.05, "GBP": 0.86, "USD": 1.09}

func convert(eur float64, currency string) float64 {
	return math.Round(eur*exchangeRates[currency]*100) / 100
}

type productView struct {
	ID           int           `json:"id"`
	SKU          string        `json:"sku"`
	Type         string        `json:"type"`
	Name         string        `json:"name"`
	CategoryID   int           `json:"category_id"`
	ShippingFrom string        `json:"shipping_from"`
	Available    bool          `json:"available"`
	Variants     []variantView `json:"variants,omitempty"`
}

type variantView struct {
	store.Variant
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// catalogQuery holds the product filters shared by the catalog endpoints.
type catalogQuery struct {
	from         int
	sku          string
	search       string
	shippingFrom string
	lang         string
	currency     string
	available    *bool
}

func parseCatalogQuery(r *http.Request, errs fieldErrors) catalogQuery {
	q := r.URL.Query()
	c := catalogQuery{
		from:         intQuery(q, "from", errs),
		sku:          q.Get("sku"),
		search:       strings.ToLower(q.Get("search")),
		shippingFrom: strings.ToUpper(q.Get("shipping_from")),
		lang:         strings.ToLower(q.Get("lang")),
		currency:     strings.ToUpper(q.Get("currency")),
		available:    boolQuery(q, "available", errs),
	}
	if c.currency == "" {
		c.currency = "EUR"
	} else if !lo.Contains(store.Currencies, c.currency) {
		errs.add("currency", "The selected currency is invalid.")
	}
	if c.lang == "" {
		c.lang = "en"
	} else if !lo.ContainsBy(store.Locales, func(l store.Lookup) bool { return l["code"] == c.lang }) {
		errs.add("lang", "The selected lang is invalid.")
	}
	if c.shippingFrom != "" && !store.IsCountry(c.shippingFrom) {
		errs.add("shipping_from", "The selected shipping_from is invalid.")
	}
	return c
}

func (c catalogQuery) matchProduct(p store.Product) bool {
	if c.from != 0 && p.ID < c.from {
		return false
	}
	if c.shippingFrom != "" && p.ShippingFrom != c.shippingFrom {
		return false
	}
	if c.available != nil && p.Available != *c.available {
		return false
	}
	if c.search != "" && !strings.Contains(strings.ToLower(p.Name(c.lang)), c.search) && !strings.Contains(strings.ToLower(p.SKU), c.search) {
		return false
	}
	if c.sku != "" && !strings.HasPrefix(c.sku, p.SKU) && !strings.HasPrefix(p.SKU, c.sku) {
		return false
	}
	return true
}

func (c catalogQuery) variants(p store.Product) []variantView {
	var out []variantView
	for _, v := range p.Variants {
		if c.sku != "" && c.sku != p.SKU && v.SKU != c.sku {
			continue
		}
		out = append(out, variantView{Variant: v, Name: p.Name(c.lang), Price: convert(v.Price, c.currency), Currency: c.currency})
	}
	return out
}

func (c catalogQuery) view(p store.Product, withVariants bool) productView {
	v := productView{
		ID: p.ID, SKU: p.SKU, Type: p.Type, Name: p.Name(c.lang),
		CategoryID: p.CategoryID, ShippingFrom: p.ShippingFrom, Available: p.Available,
	}
	if withVariants {
		v.Variants = c.variants(p)
	}
	return v
}

// ListProducts handles GET /v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	errs := fieldErrors{}
	c := parseCatalogQuery(r, errs)
	include := boolQuery(r.URL.Query(), "include_variants", errs)

	var views []productView
	for _, p := range store.Products {
		if c.matchProduct(p) {
			views = append(views, c.view(p, include != nil && *include))
		}
	}
	writePage(w, r, views, errs)
}

// GetProduct handles GET /v1/products/{id}. Variants are always included.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Product")
	if !ok {
		return
	}
	p, ok := store.FindProduct(id)
	if !ok {
		notFound(w, "Product")
		return
	}
	errs := fieldErrors{}
	c := parseCatalogQuery(r, errs)
	if errs.write(w, "The given data was invalid.") {
		return
	}
	c.sku = ""
	twincore.JSON(w, http.StatusOK, c.view(p, true))
}

// ListVariants handles GET /v1/products/variants. The id filter selects
// the variants of one product.
func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	errs := fieldErrors{}
	c := parseCatalogQuery(r, errs)
	q := r.URL.Query()
	productID := intQuery(q, "id", errs)
	reference := q.Get("reference")

	var out []variantView
	for _, p := range store.Products {
		if productID != 0 && p.ID != productID {
			continue
		}
		for _, v := range p.Variants {
			if (c.from != 0 && v.ID < c.from) || (c.sku != "" && v.SKU != c.sku) || (reference != "" && v.Reference != reference) {
				continue
			}
			out = append(out, variantView{Variant: v, Name: p.Name(c.lang), Price: convert(v.Price, c.currency), Currency: c.currency})
		}
	}
	writePage(w, r, out, errs)
}

// catalogRows flattens the variants matching the request into one row per
// variant using row.
func (h *Handler) catalogRows(w http.ResponseWriter, r *http.Request, row func(c catalogQuery, p store.Product, v store.Variant) map[string]any) {
	errs := fieldErrors{}
	c := parseCatalogQuery(r, errs)
	var rows []map[string]any
	for _, p := range store.Products {
		if c.shippingFrom != "" && p.ShippingFrom != c.shippingFrom {
			continue
		}
		for _, v := range p.Variants {
			if c.sku != "" && v.SKU != c.sku && p.SKU != c.sku {
				continue
			}
			rows = append(rows, row(c, p, v))
		}
	}
	writePage(w, r, rows, errs)
}

// ProductPrices handles GET /v1/products/prices. Merchants see sales
// prices, fulfillers their purchase prices.
func (h *Handler) ProductPrices(w http.ResponseWriter, r *http.Request) {
	fulfiller := clientFrom(r).Role == store.RoleFulfiller
	h.catalogRows(w, r, func(c catalogQuery, p store.Product, v store.Variant) map[string]any {
		if fulfiller {
			return map[string]any{
				"sku_fulfiller":  v.SKUFulfiller,
				"purchase_price": v.PurchasePrc,
				"currency":       "EUR",
				"shipping_from":  p.ShippingFrom,
			}
		}
		return map[string]any{
			"sku":           v.SKU,
			"price":         convert(v.Price, c.currency),
			"currency":      c.currency,
			"shipping_from": p.ShippingFrom,
		}
	})
}

// ProductInventory handles GET /v1/products/inventory.
func (h *Handler) ProductInventory(w http.ResponseWriter, r *http.Request) {
	fulfiller := clientFrom(r).Role == store.RoleFulfiller
	h.catalogRows(w, r, func(_ catalogQuery, p store.Product, v store.Variant) map[string]any {
		if fulfiller {
			return map[string]any{"sku_fulfiller": v.SKUFulfiller, "stock": v.Stock}
		}
		return map[string]any{"sku": v.SKU, "available": v.Available && p.Available, "stock": v.Stock}
	})
}

// ProductSeo handles GET /v1/products/seo.
func (h *Handler) ProductSeo(w http.ResponseWriter, r *http.Request) {
	h.catalogRows(w, r, func(c catalogQuery, p store.Product, v store.Variant) map[string]any {
		return map[string]any{
			"sku":              v.SKU,
			"meta_title":       p.MetaTitle,
			"meta_description": p.Name(c.lang) + " " + v.Reference,
		}
	})
}

// lookup serves a static reference list.
func (h *Handler) lookup(items []store.Lookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePage(w, r, items, nil)
	}
}
