package connect

import (
	"context"
)

// ClientSettings reads and patches the settings of the session's client.
type ClientSettings struct{ s *Session }

// ClientSettings returns the client settings repository.
func (s *Session) ClientSettings() ClientSettings { return ClientSettings{s} }

// Get returns the current settings.
func (r ClientSettings) Get(ctx context.Context) (Payload, error) {
	return r.s.get(ctx, "/v1/client/settings", nil)
}

// UpdateMerchant patches merchant settings.
func (r ClientSettings) UpdateMerchant(ctx context.Context, m MerchantSettings) (Payload, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return r.s.patch(ctx, "/v1/client/settings", m)
}

// UpdateFulfiller patches fulfiller settings.
func (r ClientSettings) UpdateFulfiller(ctx context.Context, f FulfillerSettings) (Payload, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return r.s.patch(ctx, "/v1/client/settings", f)
}
