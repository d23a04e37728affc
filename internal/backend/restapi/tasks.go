package restapi

import (
	"context"
	"encoding/json"
	"net/url"

	"daylog/internal/service"
)

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/tasks", &raw); err != nil {
		return nil, err
	}
	var tasks []service.Task
	if err := decodeItems(raw, "tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	var t service.Task
	err := c.get(ctx, "/tasks/"+url.PathEscape(id), &t)
	return t, err
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in service.CreateTaskInput) (service.Task, error) {
	if err := service.Validate(in); err != nil {
		return service.Task{}, err
	}
	var t service.Task
	if err := c.post(ctx, "/tasks", in, &t); err != nil {
		return service.Task{}, err
	}
	c.cache.invalidate()
	return t, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if err := service.Validate(patch); err != nil {
		return service.Task{}, err
	}
	var t service.Task
	if err := c.patch(ctx, "/tasks/"+url.PathEscape(id), patch, &t); err != nil {
		return service.Task{}, err
	}
	c.cache.invalidate()
	return t, nil
}

// SetTaskStatus implements service.Service.
func (c *Client) SetTaskStatus(ctx context.Context, id string, status service.Status) (service.Task, error) {
	body := struct {
		Status service.Status `json:"status"`
	}{status}
	var t service.Task
	if err := c.patch(ctx, "/tasks/"+url.PathEscape(id)+"/status", body, &t); err != nil {
		return service.Task{}, err
	}
	c.cache.invalidate()
	return t, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.del(ctx, "/tasks/"+url.PathEscape(id)); err != nil {
		return err
	}
	c.cache.invalidate()
	return nil
}

// decodeItems accepts either a bare JSON array or an object holding the
// array under key.
func decodeItems[T any](raw json.RawMessage, key string, out *[]T) error {
	if len(raw) == 0 || string(raw) == "null" {
		*out = nil
		return nil
	}
	if raw[0] == '[' {
		return json.Unmarshal(raw, out)
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	items, ok := wrapped[key]
	if !ok {
		*out = nil
		return nil
	}
	return json.Unmarshal(items, out)
}
