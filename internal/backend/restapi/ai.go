package restapi

import (
	"context"
	"encoding/json"
	"fmt"

	"daylog/internal/service"
)

// Analyze implements service.Service.
func (c *Client) Analyze(ctx context.Context, req service.AnalyzeRequest) (string, error) {
	if err := service.Validate(req); err != nil {
		return "", err
	}
	var raw json.RawMessage
	if err := c.post(ctx, "/ai/analyze", req, &raw); err != nil {
		return "", err
	}
	return textOf(raw)
}

// BreakdownTask implements service.Service.
func (c *Client) BreakdownTask(ctx context.Context, req service.BreakdownRequest) (service.TaskBreakdown, error) {
	if err := service.Validate(req); err != nil {
		return service.TaskBreakdown{}, err
	}
	var b service.TaskBreakdown
	err := c.post(ctx, "/ai/breakdown-task", req, &b)
	return b, err
}

// Chat implements service.Service.
func (c *Client) Chat(ctx context.Context, req service.ChatRequest) (string, error) {
	if err := service.Validate(req); err != nil {
		return "", err
	}
	var raw json.RawMessage
	if err := c.post(ctx, "/ai/simple-chat", req, &raw); err != nil {
		return "", err
	}
	return textOf(raw)
}

// StreamAnalyze implements service.Service.
func (c *Client) StreamAnalyze(ctx context.Context, req service.AnalyzeRequest, cb service.StreamCallbacks) (service.Stream, error) {
	if err := service.Validate(req); err != nil {
		return nil, err
	}
	return c.openStream(ctx, "/ai/stream-analyze", req, cb)
}

// StreamBreakdown implements service.Service.
func (c *Client) StreamBreakdown(ctx context.Context, req service.BreakdownRequest, cb service.StreamCallbacks) (service.Stream, error) {
	if err := service.Validate(req); err != nil {
		return nil, err
	}
	return c.openStream(ctx, "/ai/stream-breakdown-task", req, cb)
}

// StreamChat implements service.Service.
func (c *Client) StreamChat(ctx context.Context, req service.ChatRequest, cb service.StreamCallbacks) (service.Stream, error) {
	if err := service.Validate(req); err != nil {
		return nil, err
	}
	return c.openStream(ctx, "/ai/stream-simple-chat", req, cb)
}

// textOf extracts the reply text from an AI response, which is either a
// bare string or an object carrying it under one of a few keys.
func textOf(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("decode AI response: %w", err)
	}
	for _, key := range []string{"response", "content", "analysis", "reply", "message"} {
		if v, ok := obj[key]; ok {
			if err := json.Unmarshal(v, &s); err == nil {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("decode AI response: no text field")
}
