package api

import (
	"context"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (c *Client) Balance(ctx context.Context) (int64, error) {
	var resp struct {
		Point int64 `json:"point"`
	}
	req := request{endpoint: "points.balance", method: http.MethodGet, path: "/transfer-point/point"}
	if err := c.do(ctx, req, &resp); err != nil {
		return 0, err
	}
	return resp.Point, nil
}

func (c *Client) Transfer(ctx context.Context, tr domain.TransferRequest) (domain.TransferResult, error) {
	req, err := c.jsonRequest("points.transfer", http.MethodPost, "/transfer-point", tr)
	if err != nil {
		return domain.TransferResult{}, err
	}

	var resp struct {
		Message  string `json:"message"`
		Transfer struct {
			Sender struct {
				Points int64 `json:"points"`
			} `json:"sender"`
		} `json:"transfer"`
	}
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.TransferResult{}, err
	}
	return domain.TransferResult{Message: resp.Message, SenderBalance: resp.Transfer.Sender.Points}, nil
}
