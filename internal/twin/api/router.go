// Package api implements the Connect-compatible HTTP API handlers for the
// twin.
package api

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// Handler holds all API handler state.
type Handler struct {
	store  *store.MemoryStore
	mw     *twincore.Middleware
	logger *zap.Logger

	mu     sync.RWMutex
	tokens map[string]store.Client
	issued int
}

// NewHandler creates a new API handler.
func NewHandler(s *store.MemoryStore, mw *twincore.Middleware, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:  s,
		mw:     mw,
		logger: logger,
		tokens: make(map[string]store.Client),
	}
}

// Routes mounts the Connect API routes.
func (h *Handler) Routes(r chi.Router) {
	r.With(h.mw.FaultInjection).Post("/oauth/token", h.IssueToken)

	r.Route("/v1", func(r chi.Router) {
		r.Use(h.mw.FaultInjection)
		r.Use(h.authenticate)

		r.Get("/status", h.Status)

		r.Route("/client", func(r chi.Router) {
			r.Get("/settings", h.GetSettings)
			r.Patch("/settings", h.PatchSettings)
			r.With(h.requireRole(store.RoleMerchant)).Get("/connectors", h.ListConnectors)
			r.With(h.requireRole(store.RoleMerchant)).Patch("/connectors/{key}", h.UpdateConnector)
			r.Get("/jobs", h.ListJobs)
			r.Get("/jobs/{id}", h.GetJob)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireRole(store.RoleMerchant))

			r.Post("/designs/user-hash", h.CreateEditorUserHash)
			r.Post("/designs", h.CreateDesign)
			r.Patch("/designs/{id}/submit", h.SubmitDesign)
			r.Get("/designs/{id}/preview", h.DesignPreview)

			r.Post("/orders", h.CreateOrder)
			r.Get("/orders/{id}", h.GetOrder)
			r.Post("/orders/{id}/items", h.AddOrderItem)
			r.Patch("/orders/{id}/submit", h.SubmitOrder)

			r.Post("/feeds/exports", h.RequestExport)
			r.Get("/feeds/exports", h.ListExports)
			r.Get("/feeds/exports/{id}", h.GetExport)
			r.Patch("/feeds/exports/{id}/cancel", h.CancelExport)
			r.Delete("/feeds/exports/{id}", h.DeleteExport)

			r.Post("/feeds/imports", h.RequestImport)
			r.Get("/feeds/imports", h.ListImports)
			r.Get("/feeds/imports/{id}", h.GetImport)
			r.Patch("/feeds/imports/{id}/cancel", h.CancelImport)
			r.Delete("/feeds/imports/{id}", h.DeleteImport)
			r.Patch("/feeds/imports/{id}/validate", h.ValidateImport)
			r.Patch("/feeds/imports/{id}/confirm", h.ConfirmImport)

			r.Get("/products/seo", h.ProductSeo)
		})

		r.Get("/products", h.ListProducts)
		r.Get("/products/variants", h.ListVariants)
		r.Get("/products/prices", h.ProductPrices)
		r.Get("/products/inventory", h.ProductInventory)
		r.Get("/products/{id}", h.GetProduct)

		r.Route("/production/orders", func(r chi.Router) {
			r.Use(h.requireRole(store.RoleFulfiller))
			r.Get("/", h.ListProductionOrders)
			r.Get("/{id}", h.GetProductionOrder)
			r.Get("/{id}/generic-label", h.GenericLabel)
			r.Post("/{id}/shipments", h.AddShipment)
		})
		r.Get("/files/labels/{name}", h.DownloadLabel)

		r.Get("/carriers", h.lookup(store.Carriers))
		r.Get("/countries", h.lookup(store.Countries))
		r.Get("/locales", h.lookup(store.Locales))
		r.Get("/states", h.lookup(store.States))
		r.Get("/timezones", h.lookup(store.Timezones))
	})
}
