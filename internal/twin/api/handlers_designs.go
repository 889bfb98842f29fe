package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// Design statuses.
const (
	designDraft     = "draft"
	designSubmitted = "submitted"
)

// Order statuses.
const (
	orderOpen      = "open"
	orderSubmitted = "submitted"
)

// CreateEditorUserHash handles POST /v1/designs/user-hash.
func (h *Handler) CreateEditorUserHash(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	defer h.store.Lock()()
	n := 1 + len(h.store.EditorUsers.Filter(func(_ int, u store.EditorUser) bool { return u.Owner == client.Number }))
	user := h.store.EditorUsers.Insert(func(id int) store.EditorUser {
		return store.EditorUser{ID: id, Owner: client.Number, Hash: store.NewEditorUserHash(client.Number, n)}
	})
	twincore.JSON(w, http.StatusCreated, user)
}

type designRequest struct {
	EditorUserHash string            `json:"editor_user_hash"`
	ReturnURL      string            `json:"return_url"`
	CancelURL      string            `json:"cancel_url"`
	SKU            string            `json:"sku"`
	Intent         string            `json:"intent"`
	Quantity       int               `json:"quantity"`
	Options        map[string]string `json:"options"`
}

// CreateDesign handles POST /v1/designs.
func (h *Handler) CreateDesign(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	var req designRequest
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if req.EditorUserHash == "" {
		errs.add("editor_user_hash", "The editor_user_hash field is required.")
	} else if len(h.store.EditorUsers.Filter(func(_ int, u store.EditorUser) bool {
		return u.Owner == client.Number && u.Hash == req.EditorUserHash
	})) == 0 {
		errs.add("editor_user_hash", "The selected editor_user_hash is invalid.")
	}
	if req.SKU == "" {
		errs.add("sku", "The sku field is required.")
	} else if _, _, ok := store.FindVariant(req.SKU); !ok {
		errs.add("sku", "The selected sku is invalid.")
	}
	if !lo.Contains(store.DesignIntents, req.Intent) {
		errs.add("intent", "The selected intent is invalid.")
	}
	if req.Quantity < 0 {
		errs.add("quantity", "The quantity must be at least 1.")
	}
	for field, v := range map[string]string{"return_url": req.ReturnURL, "cancel_url": req.CancelURL} {
		if v != "" && !absoluteURL(v) {
			errs.add(field, fmt.Sprintf("The %s must be a valid URL.", field))
		}
	}
	if errs.write(w, "The given data was invalid.") {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	now := h.store.Now()
	design := h.store.Designs.Insert(func(id int) store.Design {
		return store.Design{
			ID:             store.NewDesignID(id),
			Owner:          client.Number,
			EditorUserHash: req.EditorUserHash,
			SKU:            req.SKU,
			Intent:         req.Intent,
			Quantity:       req.Quantity,
			Options:        req.Options,
			ReturnURL:      req.ReturnURL,
			CancelURL:      req.CancelURL,
			Status:         designDraft,
			EditorStartURL: "https://editor.connect.test/start/" + req.EditorUserHash,
			CreatedAt:      now,
		}
	})
	h.logger.Debug("design created", zap.String("design_id", design.ID), zap.String("sku", design.SKU))
	twincore.JSON(w, http.StatusCreated, design)
}

// ownedDesign resolves a design of the calling client, writing a 404
// otherwise.
func (h *Handler) ownedDesign(w http.ResponseWriter, r *http.Request) (store.Design, bool) {
	d, ok := h.store.FindDesign(chi.URLParam(r, "id"))
	if !ok || d.Owner != clientFrom(r).Number {
		notFound(w, "Design")
		return store.Design{}, false
	}
	return d, true
}

// SubmitDesign handles PATCH /v1/designs/{id}/submit.
func (h *Handler) SubmitDesign(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDesign(w, r)
	if !ok {
		return
	}
	now := h.store.Now()
	updated, ok := h.store.UpdateDesign(d.ID, func(d *store.Design) bool {
		if d.Status == designSubmitted {
			return false
		}
		d.Status = designSubmitted
		d.SubmittedAt = now
		return true
	})
	if !ok {
		conflict(w, "design_already_submitted", "The design has already been submitted.")
		return
	}
	twincore.JSON(w, http.StatusOK, updated)
}

// DesignPreview handles GET /v1/designs/{id}/preview. Only submitted
// designs have a preview.
func (h *Handler) DesignPreview(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDesign(w, r)
	if !ok {
		return
	}
	if d.Status != designSubmitted {
		conflict(w, "design_not_submitted", "The design must be submitted before a preview is available.")
		return
	}
	writePDF(w, fmt.Sprintf("Design %s (%s)", d.ID, d.SKU))
}

// writePDF writes a minimal single-page PDF showing title.
func writePDF(w http.ResponseWriter, title string) {
	title = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(title)
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", title)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(b.String()))
}

type orderRequest struct {
	Reference     string         `json:"reference"`
	Reference2    string         `json:"reference2"`
	Comment       string         `json:"comment"`
	Recipient     *store.Address `json:"recipient"`
	Invoice       *store.Address `json:"invoice"`
	Shipper       *store.Address `json:"shipper"`
	FakePreflight bool           `json:"fake_preflight"`
	FakeShipment  bool           `json:"fake_shipment"`
}

func validateAddress(errs fieldErrors, prefix string, a *store.Address) {
	required := []struct{ field, value string }{
		{"firstname", a.Firstname},
		{"lastname", a.Lastname},
		{"street", a.Street},
		{"zip", a.Zip},
		{"city", a.City},
		{"country_code", a.CountryCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs.add(prefix+"."+f.field, fmt.Sprintf("The %s.%s field is required.", prefix, f.field))
		}
	}
	if a.CountryCode != "" && !store.IsCountry(a.CountryCode) {
		errs.add(prefix+".country_code", "The selected country_code is invalid.")
	}
	if a.Email != "" && !strings.Contains(a.Email, "@") {
		errs.add(prefix+".email", "The email must be a valid email address.")
	}
}

// CreateOrder handles POST /v1/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	var req orderRequest
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if req.Recipient == nil {
		errs.add("recipient", "The recipient field is required.")
	} else {
		validateAddress(errs, "recipient", req.Recipient)
	}
	if req.Invoice != nil {
		validateAddress(errs, "invoice", req.Invoice)
	}
	if req.Shipper != nil {
		validateAddress(errs, "shipper", req.Shipper)
	}
	if errs.write(w, "The given data was invalid.") {
		return
	}

	now := h.store.Now()
	order := h.store.Orders.Insert(func(id int) store.Order {
		return store.Order{
			ID:            id,
			Owner:         client.Number,
			Reference:     req.Reference,
			Reference2:    req.Reference2,
			Comment:       req.Comment,
			Status:        orderOpen,
			Recipient:     req.Recipient,
			Invoice:       req.Invoice,
			Shipper:       req.Shipper,
			FakePreflight: req.FakePreflight,
			FakeShipment:  req.FakeShipment,
			CreatedAt:     now,
		}
	})
	twincore.JSON(w, http.StatusCreated, h.store.WithItems(order))
}

// ownedOrder resolves an order of the calling client, writing a 404
// otherwise.
func (h *Handler) ownedOrder(w http.ResponseWriter, r *http.Request) (store.Order, bool) {
	id, ok := idParam(w, r, "id", "Order")
	if !ok {
		return store.Order{}, false
	}
	o, ok := h.store.Orders.Get(id)
	if !ok || o.Owner != clientFrom(r).Number {
		notFound(w, "Order")
		return store.Order{}, false
	}
	return o, true
}

// GetOrder handles GET /v1/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}
	twincore.JSON(w, http.StatusOK, h.store.WithItems(o))
}

// AddOrderItem handles POST /v1/orders/{id}/items. An item references a
// submitted design or a catalog SKU; service items may link to an earlier
// item of the same order.
func (h *Handler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	o, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}
	if o.Status != orderOpen {
		conflict(w, "order_not_open", "Items can only be added to open orders.")
		return
	}

	var req store.OrderItem
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if req.Quantity < 1 {
		errs.add("quantity", "The quantity must be at least 1.")
	}
	switch {
	case req.DesignID != "":
		d, ok := h.store.FindDesign(req.DesignID)
		if !ok || d.Owner != client.Number {
			errs.add("design_id", "The selected design_id is invalid.")
		} else if d.Status != designSubmitted {
			errs.add("design_id", "The design must be submitted first.")
		} else if req.SKU == "" {
			req.SKU = d.SKU
		}
	case req.SKU != "":
		if _, _, ok := store.FindVariant(req.SKU); !ok {
			errs.add("sku", "The selected sku is invalid.")
		}
	default:
		errs.add("sku", "The sku field is required when design_id is not present.")
	}
	if req.RelatedItemID != 0 {
		rel, ok := h.store.OrderItems.Get(req.RelatedItemID)
		if !ok || rel.OrderID != o.ID {
			errs.add("related_order_item_id", "The selected related_order_item_id is invalid.")
		}
	}
	if errs.write(w, "The given data was invalid.") {
		return
	}

	item := h.store.OrderItems.Insert(func(id int) store.OrderItem {
		req.ID = id
		req.OrderID = o.ID
		return req
	})
	twincore.JSON(w, http.StatusCreated, item)
}

// SubmitOrder handles PATCH /v1/orders/{id}/submit. Submitting hands the
// order to the first fulfiller as a production order.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}

	defer h.store.Lock()()
	o = h.store.WithItems(o)
	if o.Status != orderOpen {
		conflict(w, "order_not_open", "The order has already been submitted.")
		return
	}
	if len(o.Items) == 0 {
		twincore.ValidationError(w, "The given data was invalid.", map[string][]string{
			"items": {"The order must contain at least one item."},
		})
		return
	}

	now := h.store.Now()
	o, _ = h.store.Orders.Update(o.ID, func(o *store.Order) bool {
		o.Status = orderSubmitted
		o.SubmittedAt = now
		return true
	})

	if fulfiller, ok := h.store.FirstClient(store.RoleFulfiller); ok {
		items := lo.Map(h.store.WithItems(o).Items, func(it store.OrderItem, _ int) store.ProductionItem {
			sku := it.SKU
			if _, v, ok := store.FindVariant(it.SKU); ok && v.SKUFulfiller != "" {
				sku = v.SKUFulfiller
			}
			return store.ProductionItem{ID: it.ID, SKU: sku, Quantity: it.Quantity, DesignID: it.DesignID}
		})
		p := h.store.Production.Insert(func(id int) store.ProductionOrder {
			return store.ProductionOrder{
				ID: id, Owner: fulfiller.Number, OrderID: o.ID, Status: store.ProductionAccepted,
				Items: items, Shipments: []store.Shipment{}, CreatedAt: now,
			}
		})
		h.logger.Debug("production order created", zap.Int("order_id", o.ID), zap.Int("production_order_id", p.ID))
	}
	twincore.JSON(w, http.StatusOK, h.store.WithItems(o))
}
