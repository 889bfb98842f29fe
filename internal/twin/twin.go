// Package twin assembles the in-memory fake of the Connect API: the API
// handlers, the admin control plane and the seeded state behind them.
package twin

import (
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/twin/api"
	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/admin"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// Default credentials the twin accepts when none are configured.
const (
	DefaultMerchantID      = "merchant"
	DefaultMerchantSecret  = "merchant-secret"
	DefaultFulfillerID     = "fulfiller"
	DefaultFulfillerSecret = "fulfiller-secret"
)

// DefaultClients returns one merchant and one fulfiller.
func DefaultClients() []store.Client {
	return []store.Client{
		{ID: DefaultMerchantID, Secret: DefaultMerchantSecret, Role: store.RoleMerchant},
		{ID: DefaultFulfillerID, Secret: DefaultFulfillerSecret, Role: store.RoleFulfiller},
	}
}

// Options configure a Twin.
type Options struct {
	Port    int
	Verbose bool
	Clients []store.Client // DefaultClients when empty
	Logger  *zap.Logger
}

// Twin is a ready-to-serve Connect fake. Serve and ServeListener come
// from the embedded twincore server.
type Twin struct {
	*twincore.Twin
	Store *store.MemoryStore
}

// New wires the store, API and admin handlers onto a twincore server.
func New(opts Options) *Twin {
	clients := opts.Clients
	if len(clients) == 0 {
		clients = DefaultClients()
	}
	cfg := &twincore.Config{Name: "connect", Port: opts.Port, Verbose: opts.Verbose}
	core := twincore.New(cfg, opts.Logger)

	mem := store.New(clients)
	api.NewHandler(mem, core.Middleware(), core.Logger).Routes(core.Router)
	admin.NewHandler(mem, core.Middleware(), mem.Clock).Routes(core.Router)

	return &Twin{Twin: core, Store: mem}
}
