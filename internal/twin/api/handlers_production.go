package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

func (h *Handler) ownedProductionOrder(w http.ResponseWriter, r *http.Request) (store.ProductionOrder, bool) {
	id, ok := idParam(w, r, "id", "Production order")
	if !ok {
		return store.ProductionOrder{}, false
	}
	p, ok := h.store.Production.Get(id)
	if !ok || p.Owner != clientFrom(r).Number {
		notFound(w, "Production order")
		return store.ProductionOrder{}, false
	}
	return h.store.WithShipments(p), true
}

// ListProductionOrders handles GET /v1/production/orders.
func (h *Handler) ListProductionOrders(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	q := r.URL.Query()
	errs := fieldErrors{}
	from := intQuery(q, "from", errs)
	status := q.Get("status")

	orders := h.store.Production.Filter(func(id int, p store.ProductionOrder) bool {
		return p.Owner == client.Number && id >= from && (status == "" || p.Status == status)
	})
	writePage(w, r, lo.Map(orders, func(p store.ProductionOrder, _ int) store.ProductionOrder {
		return h.store.WithShipments(p)
	}), errs)
}

// GetProductionOrder handles GET /v1/production/orders/{id}.
func (h *Handler) GetProductionOrder(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.ownedProductionOrder(w, r); ok {
		twincore.JSON(w, http.StatusOK, p)
	}
}

// GenericLabel handles GET /v1/production/orders/{id}/generic-label. The
// label is served by the files endpoint of the same host.
func (h *Handler) GenericLabel(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProductionOrder(w, r)
	if !ok {
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{
		"production_order_id": p.ID,
		"format":              "pdf",
		"url":                 fmt.Sprintf("%s/v1/files/labels/%d.pdf", baseURL(r), p.ID),
	})
}

// DownloadLabel handles GET /v1/files/labels/{name}.
func (h *Handler) DownloadLabel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id, err := strconv.Atoi(strings.TrimSuffix(name, ".pdf"))
	if err != nil || !strings.HasSuffix(name, ".pdf") {
		notFound(w, "File")
		return
	}
	p, ok := h.store.Production.Get(id)
	if !ok || p.Owner != clientFrom(r).Number {
		notFound(w, "File")
		return
	}
	writePDF(w, fmt.Sprintf("Shipping label for production order %d (order %d)", p.ID, p.OrderID))
}

// AddShipment handles POST /v1/production/orders/{id}/shipments. Carrier
// and tracking id are mandatory when the fulfiller's settings say so;
// otherwise a known carrier or an empty one is accepted.
func (h *Handler) AddShipment(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	p, ok := h.ownedProductionOrder(w, r)
	if !ok {
		return
	}
	var req store.Shipment
	if !decode(w, r, &req) {
		return
	}

	settings, _ := h.store.Settings.Get(client.Number)
	errs := fieldErrors{}
	if req.Carrier == "" {
		if settings.HasToSupplyCarrier != nil && *settings.HasToSupplyCarrier {
			errs.add("carrier", "The carrier field is required.")
		}
	} else if !store.IsCarrier(req.Carrier) {
		errs.add("carrier", "The selected carrier is invalid.")
	}
	if req.TrackingID == "" && settings.HasToSupplyTrackingCode != nil && *settings.HasToSupplyTrackingCode {
		errs.add("tracking_id", "The tracking_id field is required.")
	}
	for field, n := range map[string]int{"height": req.Height, "width": req.Width, "depth": req.Depth, "weight": req.Weight} {
		if n < 0 {
			errs.add(field, fmt.Sprintf("The %s must be at least 0.", field))
		}
	}
	for i, it := range req.Items {
		item, ok := lo.Find(p.Items, func(pi store.ProductionItem) bool { return pi.ID == it.ID })
		key := fmt.Sprintf("production_order_items.%d", i)
		switch {
		case !ok:
			errs.add(key+".id", "The selected id is invalid.")
		case it.Quantity < 1 || it.Quantity > item.Quantity:
			errs.add(key+".quantity", fmt.Sprintf("The quantity must be between 1 and %d.", item.Quantity))
		}
	}
	if errs.write(w, "The given data was invalid.") {
		return
	}
	if len(req.Items) == 0 {
		req.Items = lo.Map(p.Items, func(pi store.ProductionItem, _ int) store.ShipmentItem {
			return store.ShipmentItem{ID: pi.ID, Quantity: pi.Quantity}
		})
	}
	req.Carrier = strings.ToUpper(req.Carrier)

	defer h.store.Lock()()
	now := h.store.Now()
	rec := h.store.Shipments.Insert(func(id int) store.ShipmentRecord {
		req.ID = id
		req.CreatedAt = now
		return store.ShipmentRecord{Shipment: req, ProductionOrderID: p.ID}
	})
	h.store.Production.Update(p.ID, func(p *store.ProductionOrder) bool {
		p.Status = store.ProductionShipped
		return true
	})
	h.logger.Debug("shipment added", zap.Int("production_order_id", p.ID), zap.String("carrier", rec.Carrier))
	twincore.JSON(w, http.StatusCreated, rec)
}
