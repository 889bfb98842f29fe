package store

import (
	"encoding/json"
	"testing"
	"time"
)

func testStore() *MemoryStore {
	return New([]Client{
		{ID: "m", Secret: "ms", Role: RoleMerchant},
		{ID: "f", Secret: "fs", Role: RoleFulfiller},
	})
}

func TestNewNumbersClientsAndSeeds(t *testing.T) {
	s := testStore()

	clients := s.Clients()
	if clients[0].Number != 1 || clients[1].Number != 2 {
		t.Fatalf("unexpected client numbers %+v", clients)
	}
	if s.Settings.Count() != 2 || s.Jobs.Count() != 4 || s.Production.Count() != 2 {
		t.Errorf("unexpected seed counts: settings=%d jobs=%d production=%d",
			s.Settings.Count(), s.Jobs.Count(), s.Production.Count())
	}
	for _, p := range s.Production.List() {
		if p.Owner != 2 {
			t.Errorf("production orders must belong to the fulfiller, got owner %d", p.Owner)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	s := testStore()
	if c, ok := s.Authenticate("m", "ms"); !ok || c.Role != RoleMerchant {
		t.Errorf("expected merchant, got %+v %v", c, ok)
	}
	if _, ok := s.Authenticate("m", "fs"); ok {
		t.Error("expected wrong secret to be rejected")
	}
}

func TestDefaultSettingsByRole(t *testing.T) {
	m := DefaultSettings(Client{ID: "m", Role: RoleMerchant}, "now")
	if m.PriceResetLogic == nil || *m.AdjustMaxUpPercentage != 10 {
		t.Errorf("merchant defaults missing: %+v", m)
	}
	f := DefaultSettings(Client{ID: "f", Role: RoleFulfiller}, "now")
	if f.PriceResetLogic != nil || f.HasToSupplyCarrier == nil || *f.HasToSupplyCarrier {
		t.Errorf("unexpected fulfiller defaults: %+v", f)
	}
}

func TestDerivedIdentifiersAreStable(t *testing.T) {
	if NewEditorUserHash(1, 1) != NewEditorUserHash(1, 1) {
		t.Error("editor user hash must be stable")
	}
	if NewEditorUserHash(1, 1) == NewEditorUserHash(1, 2) || NewEditorUserHash(1, 1) == NewEditorUserHash(2, 1) {
		t.Error("editor user hashes must differ per owner and sequence")
	}
	if len(NewEditorUserHash(1, 1)) != 32 {
		t.Errorf("expected 32 hex characters, got %q", NewEditorUserHash(1, 1))
	}
	if NewDesignID(1) != NewDesignID(1) || NewDesignID(1) == NewDesignID(2) {
		t.Error("design ids must be stable and distinct")
	}
}

func TestUpdateDesign(t *testing.T) {
	s := testStore()
	d := s.Designs.Insert(func(id int) Design { return Design{ID: NewDesignID(id), Status: "draft"} })

	updated, ok := s.UpdateDesign(d.ID, func(d *Design) bool {
		d.Status = "submitted"
		return true
	})
	if !ok || updated.Status != "submitted" {
		t.Fatalf("expected update, got %+v %v", updated, ok)
	}
	if got, _ := s.FindDesign(d.ID); got.Status != "submitted" {
		t.Errorf("expected stored status submitted, got %s", got.Status)
	}
	if _, ok := s.UpdateDesign("missing", func(*Design) bool { return true }); ok {
		t.Error("expected missing design to report false")
	}
}

func TestWithItemsAndShipments(t *testing.T) {
	s := testStore()
	o := s.Orders.Insert(func(id int) Order { return Order{ID: id} })
	if items := s.WithItems(o).Items; items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil items, got %#v", items)
	}
	s.OrderItems.Insert(func(id int) OrderItem { return OrderItem{ID: id, OrderID: o.ID, Quantity: 2} })
	s.OrderItems.Insert(func(id int) OrderItem { return OrderItem{ID: id, OrderID: o.ID + 1} })
	if items := s.WithItems(o).Items; len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("unexpected items %+v", items)
	}

	p, _ := s.Production.Get(1)
	s.Shipments.Insert(func(id int) ShipmentRecord {
		return ShipmentRecord{Shipment: Shipment{ID: id, Carrier: "UPS"}, ProductionOrderID: p.ID}
	})
	if sh := s.WithShipments(p).Shipments; len(sh) != 1 || sh[0].Carrier != "UPS" {
		t.Errorf("unexpected shipments %+v", sh)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := testStore()
	s.Orders.Insert(func(id int) Order { return Order{ID: id, Owner: 1, Reference: "R-1", Status: "open"} })

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}

	restored := testStore()
	if err := restored.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	o, ok := restored.Orders.Get(1)
	if !ok || o.Reference != "R-1" || o.Owner != 1 {
		t.Errorf("expected order to survive the round trip, got %+v", o)
	}
	if restored.Jobs.Count() != 4 {
		t.Errorf("expected seeded jobs in snapshot, got %d", restored.Jobs.Count())
	}
}

func TestLoadStateRejectsBadJSON(t *testing.T) {
	s := testStore()
	if err := s.LoadState([]byte("{bad")); err == nil {
		t.Fatal("expected error")
	}
	if s.Jobs.Count() != 4 {
		t.Error("state must be untouched after a failed load")
	}
}

func TestResetReseedsAndRewindsClock(t *testing.T) {
	s := testStore()
	s.Orders.Insert(func(id int) Order { return Order{ID: id} })
	s.Clock.Advance(time.Hour)

	s.Reset()

	if s.Orders.Count() != 0 || s.Jobs.Count() != 4 {
		t.Errorf("expected seed state, got orders=%d jobs=%d", s.Orders.Count(), s.Jobs.Count())
	}
	if s.Now() != BaseTime.Format(time.RFC3339) {
		t.Errorf("expected clock at base time, got %s", s.Now())
	}
}

func TestCatalogLookups(t *testing.T) {
	if _, v, ok := FindVariant("MP-F10005-C0000001"); !ok || v.ProductID != 1 {
		t.Errorf("expected variant of product 1, got %+v", v)
	}
	if _, _, ok := FindVariant("MP-F10005"); ok {
		t.Error("parent sku is not a variant")
	}
	if c, ok := FindConnector("2"); !ok || c.Key != "magento" {
		t.Errorf("expected connector lookup by id, got %+v", c)
	}
	if !IsCarrier("ups") || IsCarrier("PIGEON") {
		t.Error("unexpected carrier lookup result")
	}
	p, _ := FindProduct(1)
	if p.Name("DE") != "T-Shirt Classic" || p.Name("es") != "Classic T-Shirt" {
		t.Errorf("unexpected product names %q %q", p.Name("DE"), p.Name("es"))
	}
}
