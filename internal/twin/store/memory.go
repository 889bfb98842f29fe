package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mypromo/connect-sdk-test/pkg/admin"
	pkgstore "github.com/mypromo/connect-sdk-test/pkg/store"
)

// BaseTime anchors the simulated clock.
var BaseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// idSpace namespaces the name-based UUIDs the twin derives, so ids and
// hashes are stable across runs and resets.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://connect.test/twin"))

// MemoryStore holds all Connect twin state in memory.
type MemoryStore struct {
	mu      sync.Mutex
	clients []Client

	Settings    *pkgstore.Store[Settings] // keyed by client number
	Connectors  *pkgstore.Store[ClientConnector]
	Jobs        *pkgstore.Store[Job]
	EditorUsers *pkgstore.Store[EditorUser]
	Designs     *pkgstore.Store[Design]
	Orders      *pkgstore.Store[Order]
	OrderItems  *pkgstore.Store[OrderItem]
	Exports     *pkgstore.Store[Export]
	Imports     *pkgstore.Store[Import]
	Production  *pkgstore.Store[ProductionOrder]
	Shipments   *pkgstore.Store[ShipmentRecord]
	Clock       *pkgstore.Clock
}

// ShipmentRecord is a Shipment stored against its production order.
type ShipmentRecord struct {
	Shipment
	ProductionOrderID int `json:"production_order_id"`
}

// New creates a MemoryStore for the given clients and loads the seed data.
// Client numbers are assigned in order starting at 1.
func New(clients []Client) *MemoryStore {
	s := &MemoryStore{
		clients:     make([]Client, len(clients)),
		Settings:    pkgstore.New[Settings](),
		Connectors:  pkgstore.New[ClientConnector](),
		Jobs:        pkgstore.New[Job](),
		EditorUsers: pkgstore.New[EditorUser](),
		Designs:     pkgstore.New[Design](),
		Orders:      pkgstore.New[Order](),
		OrderItems:  pkgstore.New[OrderItem](),
		Exports:     pkgstore.New[Export](),
		Imports:     pkgstore.New[Import](),
		Production:  pkgstore.New[ProductionOrder](),
		Shipments:   pkgstore.New[ShipmentRecord](),
		Clock:       pkgstore.NewClock(BaseTime),
	}
	for i, c := range clients {
		c.Number = i + 1
		s.clients[i] = c
	}
	s.seed()
	return s
}

// Clients returns the configured clients.
func (s *MemoryStore) Clients() []Client {
	out := make([]Client, len(s.clients))
	copy(out, s.clients)
	return out
}

// APIClients lists the clients for the admin plane, without secrets.
func (s *MemoryStore) APIClients() []admin.APIClient {
	return lo.Map(s.clients, func(c Client, _ int) admin.APIClient {
		return admin.APIClient{ID: c.ID, Role: c.Role}
	})
}

// Authenticate resolves a client by credentials.
func (s *MemoryStore) Authenticate(id, secret string) (Client, bool) {
	for _, c := range s.clients {
		if c.ID == id && c.Secret == secret {
			return c, true
		}
	}
	return Client{}, false
}

// FirstClient returns the first client with the given role.
func (s *MemoryStore) FirstClient(role string) (Client, bool) {
	for _, c := range s.clients {
		if c.Role == role {
			return c, true
		}
	}
	return Client{}, false
}

// Now returns the simulated time formatted for API responses.
func (s *MemoryStore) Now() string {
	return s.Clock.Now().Format(time.RFC3339)
}

func (s *MemoryStore) seed() {
	now := s.Now()
	for _, c := range s.clients {
		s.Settings.Set(c.Number, DefaultSettings(c, now))
		for _, typ := range []string{"catalog_sync", "price_update"} {
			owner := c.Number
			s.Jobs.Insert(func(id int) Job {
				return Job{ID: id, Owner: owner, Type: typ, Status: "done", CreatedAt: now, FinishedAt: now}
			})
		}
	}

	fulfiller, ok := s.FirstClient(RoleFulfiller)
	if !ok {
		return
	}
	seeded := []struct {
		orderID int
		items   []ProductionItem
	}{
		{900001, []ProductionItem{{ID: 5001, SKU: "FF-TS-W-M", Quantity: 10}, {ID: 5002, SKU: "FF-MUG-W", Quantity: 2}}},
		{900002, []ProductionItem{{ID: 5003, SKU: "FF-TS-W-L", Quantity: 4}}},
	}
	for _, p := range seeded {
		s.Production.Insert(func(id int) ProductionOrder {
			return ProductionOrder{
				ID: id, Owner: fulfiller.Number, OrderID: p.orderID, Status: ProductionAccepted,
				Items: p.items, Shipments: []Shipment{}, CreatedAt: now,
			}
		})
	}
}

// DefaultSettings are the settings a client starts with.
func DefaultSettings(c Client, now string) Settings {
	st := Settings{
		ClientID:                c.ID,
		ClientType:              c.Role,
		HasToSupplyCarrier:      ptr(false),
		HasToSupplyTrackingCode: ptr(false),
		UpdatedAt:               now,
	}
	if c.Role == RoleMerchant {
		st.ActivateNewFulfiller = ptr(false)
		st.ActivateNewProducts = ptr(false)
		st.PriceResetLogic = ptr(0)
		st.AdjustMaxUpPercentage = ptr(10)
		st.AdjustMaxDownPercentage = ptr(10)
		st.SentToProductionDelay = ptr(0)
	}
	return st
}

func ptr[T any](v T) *T { return &v }

// NewEditorUserHash derives the editor user hash for the n-th user of a
// client.
func NewEditorUserHash(owner, n int) string {
	u := uuid.NewSHA1(idSpace, []byte(fmt.Sprintf("editor-user/%d/%d", owner, n)))
	return hex.EncodeToString(u[:])
}

// NewTokenID derives the jti of the n-th access token issued to a client.
func NewTokenID(clientID string, n int) string {
	return uuid.NewSHA1(idSpace, []byte(fmt.Sprintf("token/%s/%d", clientID, n))).String()
}

// NewDesignID derives the public id of the n-th design.
func NewDesignID(n int) string {
	return uuid.NewSHA1(idSpace, []byte("design/"+itoa(n))).String()
}

// FindDesign resolves a design by public id.
func (s *MemoryStore) FindDesign(id string) (Design, bool) {
	found := s.Designs.Filter(func(_ int, d Design) bool { return d.ID == id })
	if len(found) == 0 {
		return Design{}, false
	}
	return found[0], true
}

// UpdateDesign applies fn to the design with the given public id.
func (s *MemoryStore) UpdateDesign(id string, fn func(d *Design) bool) (Design, bool) {
	key := 0
	s.Designs.Filter(func(k int, d Design) bool {
		if d.ID == id {
			key = k
		}
		return false
	})
	if key == 0 {
		return Design{}, false
	}
	return s.Designs.Update(key, fn)
}

// WithItems returns o with its items attached.
func (s *MemoryStore) WithItems(o Order) Order {
	o.Items = s.OrderItems.Filter(func(_ int, it OrderItem) bool { return it.OrderID == o.ID })
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	return o
}

// WithShipments returns p with its shipments attached.
func (s *MemoryStore) WithShipments(p ProductionOrder) ProductionOrder {
	p.Shipments = []Shipment{}
	for _, rec := range s.Shipments.Filter(func(_ int, r ShipmentRecord) bool { return r.ProductionOrderID == p.ID }) {
		p.Shipments = append(p.Shipments, rec.Shipment)
	}
	return p
}

// AddJob records a job for owner and returns it.
func (s *MemoryStore) AddJob(owner int, typ, reference string) Job {
	now := s.Now()
	return s.Jobs.Insert(func(id int) Job {
		return Job{ID: id, Owner: owner, Type: typ, Status: "queued", Reference: reference, CreatedAt: now}
	})
}

// Lock serializes operations that span several tables.
func (s *MemoryStore) Lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// stateSnapshot is the JSON-serializable state for admin endpoints.
type stateSnapshot struct {
	Settings    map[string]Settings        `json:"settings"`
	Connectors  map[string]ClientConnector `json:"connectors"`
	Jobs        map[string]Job             `json:"jobs"`
	EditorUsers map[string]EditorUser      `json:"editor_users"`
	Designs     map[string]Design          `json:"designs"`
	Orders      map[string]Order           `json:"orders"`
	OrderItems  map[string]OrderItem       `json:"order_items"`
	Exports     map[string]Export          `json:"exports"`
	Imports     map[string]Import          `json:"imports"`
	Production  map[string]ProductionOrder `json:"production_orders"`
	Shipments   map[string]ShipmentRecord  `json:"shipments"`
}

// Snapshot returns the full state as a JSON-serializable value.
func (s *MemoryStore) Snapshot() any {
	defer s.Lock()()
	return stateSnapshot{
		Settings:    s.Settings.Snapshot(),
		Connectors:  s.Connectors.Snapshot(),
		Jobs:        s.Jobs.Snapshot(),
		EditorUsers: s.EditorUsers.Snapshot(),
		Designs:     s.Designs.Snapshot(),
		Orders:      s.Orders.Snapshot(),
		OrderItems:  s.OrderItems.Snapshot(),
		Exports:     s.Exports.Snapshot(),
		Imports:     s.Imports.Snapshot(),
		Production:  s.Production.Snapshot(),
		Shipments:   s.Shipments.Snapshot(),
	}
}

// LoadState replaces the full state from a JSON body. Tables missing from
// the body are emptied; a body that does not decode leaves state untouched.
func (s *MemoryStore) LoadState(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	defer s.Lock()()
	loads := []func() error{
		func() error { return s.Settings.LoadSnapshot(snap.Settings) },
		func() error { return s.Connectors.LoadSnapshot(snap.Connectors) },
		func() error { return s.Jobs.LoadSnapshot(snap.Jobs) },
		func() error { return s.EditorUsers.LoadSnapshot(snap.EditorUsers) },
		func() error { return s.Designs.LoadSnapshot(snap.Designs) },
		func() error { return s.Orders.LoadSnapshot(snap.Orders) },
		func() error { return s.OrderItems.LoadSnapshot(snap.OrderItems) },
		func() error { return s.Exports.LoadSnapshot(snap.Exports) },
		func() error { return s.Imports.LoadSnapshot(snap.Imports) },
		func() error { return s.Production.LoadSnapshot(snap.Production) },
		func() error { return s.Shipments.LoadSnapshot(snap.Shipments) },
	}
	for _, load := range loads {
		if err := load(); err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
	}
	return nil
}

// Reset clears all state and reloads the seed data.
func (s *MemoryStore) Reset() {
	defer s.Lock()()
	s.Settings.Reset()
	s.Connectors.Reset()
	s.Jobs.Reset()
	s.EditorUsers.Reset()
	s.Designs.Reset()
	s.Orders.Reset()
	s.OrderItems.Reset()
	s.Exports.Reset()
	s.Imports.Reset()
	s.Production.Reset()
	s.Shipments.Reset()
	s.Clock.Reset()
	s.seed()
}

func itoa(n int) string { return strconv.Itoa(n) }
