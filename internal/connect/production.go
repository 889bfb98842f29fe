package connect

import (
	"context"
)

// ProductionOrders is the fulfiller's view of orders to produce.
type ProductionOrders struct{ s *Session }

// ProductionOrders returns the production order repository.
func (s *Session) ProductionOrders() ProductionOrders { return ProductionOrders{s} }

// All lists production orders.
func (r ProductionOrders) All(ctx context.Context, opts ProductionOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/production/orders", opts.values())
}

// Find returns one production order.
func (r ProductionOrders) Find(ctx context.Context, id int) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return r.s.get(ctx, "/v1/production/orders/"+itoa(id), nil)
}

// GenericLabel returns a carrier-independent shipping label reference.
func (r ProductionOrders) GenericLabel(ctx context.Context, id int) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return r.s.get(ctx, "/v1/production/orders/"+itoa(id)+"/generic-label", nil)
}

// AddShipment records a parcel for a production order.
func (r ProductionOrders) AddShipment(ctx context.Context, id int, sh Shipment) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	return r.s.post(ctx, "/v1/production/orders/"+itoa(id)+"/shipments", sh)
}
