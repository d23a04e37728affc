package restapi

import (
	"context"
	"encoding/json"
	"net/url"

	"daylog/internal/service"
)

// ListLogs implements service.Service.
func (c *Client) ListLogs(ctx context.Context) ([]service.LogEntry, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/logs", &raw); err != nil {
		return nil, err
	}
	var logs []service.LogEntry
	if err := decodeItems(raw, "logs", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateLog implements service.Service.
func (c *Client) CreateLog(ctx context.Context, in service.CreateLogInput) (service.LogEntry, error) {
	if err := service.Validate(in); err != nil {
		return service.LogEntry{}, err
	}
	var l service.LogEntry
	if err := c.post(ctx, "/logs", in, &l); err != nil {
		return service.LogEntry{}, err
	}
	c.cache.invalidate()
	return l, nil
}

// DeleteLog implements service.Service.
func (c *Client) DeleteLog(ctx context.Context, id string) error {
	if err := c.del(ctx, "/logs/"+url.PathEscape(id)); err != nil {
		return err
	}
	c.cache.invalidate()
	return nil
}

// Dashboard implements service.Service. Results are cached for the
// configured TTL; task and log mutations made through this client drop
// the cached copy.
func (c *Client) Dashboard(ctx context.Context) (service.Dashboard, error) {
	if d, ok := c.cache.dashboard(); ok {
		return d, nil
	}
	var d service.Dashboard
	if err := c.get(ctx, "/dashboard/summary", &d); err != nil {
		return service.Dashboard{}, err
	}
	c.cache.setDashboard(d)
	return d, nil
}
