package restapi

import (
	"context"
	"net/http"

	"daylog/internal/service"
)

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, in service.LoginInput) (service.AuthResult, error) {
	if err := service.Validate(in); err != nil {
		return service.AuthResult{}, err
	}
	var res service.AuthResult
	err := c.do(ctx, c.public, http.MethodPost, "/auth/login", in, &res)
	return res, err
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, in service.RegisterInput) (service.AuthResult, error) {
	if err := service.Validate(in); err != nil {
		return service.AuthResult{}, err
	}
	var res service.AuthResult
	err := c.do(ctx, c.public, http.MethodPost, "/auth/register", in, &res)
	return res, err
}

// SendVerificationCode implements service.Service.
func (c *Client) SendVerificationCode(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email" validate:"required,email"`
	}{email}
	if err := service.Validate(body); err != nil {
		return err
	}
	return c.do(ctx, c.public, http.MethodPost, "/auth/send-verification-code", body, nil)
}
