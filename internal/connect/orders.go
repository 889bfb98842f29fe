package connect

import (
	"context"
)

// Orders creates and submits merchant orders.
type Orders struct{ s *Session }

// Orders returns the order repository.
func (s *Session) Orders() Orders { return Orders{s} }

// Create opens an order with its addresses.
func (r Orders) Create(ctx context.Context, o Order) (Payload, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return r.s.post(ctx, "/v1/orders", o)
}

// Find returns one order including its items.
func (r Orders) Find(ctx context.Context, id int) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return r.s.get(ctx, "/v1/orders/"+itoa(id), nil)
}

// AddItem adds a product or design item to an open order.
func (r Orders) AddItem(ctx context.Context, orderID int, item OrderItem) (Payload, error) {
	if err := requireID("order_id", orderID); err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return r.s.post(ctx, "/v1/orders/"+itoa(orderID)+"/items", item)
}

// Submit sends an order to production.
func (r Orders) Submit(ctx context.Context, id int) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return r.s.patch(ctx, "/v1/orders/"+itoa(id)+"/submit", struct{}{})
}
