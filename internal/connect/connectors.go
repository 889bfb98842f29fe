package connect

import (
	"context"
	"net/url"
)

// ClientConnectors lists and configures shop integrations.
type ClientConnectors struct{ s *Session }

// ClientConnectors returns the client connector repository.
func (s *Session) ClientConnectors() ClientConnectors { return ClientConnectors{s} }

// All lists configured connectors.
func (r ClientConnectors) All(ctx context.Context, opts ConnectorOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/client/connectors", opts.values())
}

// Update replaces the configuration of the connector identified by key.
func (r ClientConnectors) Update(ctx context.Context, c ClientConnector) (Payload, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	key := c.ConnectorKey
	if key == "" {
		key = itoa(c.ConnectorID)
	}
	return r.s.patch(ctx, "/v1/client/connectors/"+url.PathEscape(key), c)
}

// ClientJobs lists background jobs of the client.
type ClientJobs struct{ s *Session }

// ClientJobs returns the client job repository.
func (s *Session) ClientJobs() ClientJobs { return ClientJobs{s} }

// All lists jobs.
func (r ClientJobs) All(ctx context.Context, opts PageOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/client/jobs", opts.values())
}

// Find returns one job.
func (r ClientJobs) Find(ctx context.Context, id int) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return r.s.get(ctx, "/v1/client/jobs/"+itoa(id), nil)
}
