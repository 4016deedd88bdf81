package api

import (
	"context"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.SessionDescriptor, error) {
	req, err := c.jsonRequest("auth.login", http.MethodPost, "/auth/login", creds)
	if err != nil {
		return domain.SessionDescriptor{}, err
	}

	var resp struct {
		Session domain.SessionDescriptor `json:"session"`
	}
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.SessionDescriptor{}, err
	}
	return resp.Session, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	req, err := multipartRequest("auth.register", http.MethodPost, "/auth/register",
		[][2]string{
			{"name", reg.Name},
			{"email", reg.Email},
			{"password", reg.Password},
		},
		formFile{field: "picture", name: reg.PictureName, data: reg.Picture},
	)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
