package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type PointService struct {
	api port.PointsAPI
	log logrus.FieldLogger
}

func NewPointService(api port.PointsAPI, log logrus.FieldLogger) *PointService {
	return &PointService{api: api, log: log}
}

func (p *PointService) Balance(ctx context.Context) (int64, error) {
	points, err := p.api.Balance(ctx)
	if err != nil {
		p.log.WithError(err).Error("fetch point balance failed")
		return 0, userMessage(err, "failed to fetch points")
	}
	return points, nil
}

// Transfer sends points to another customer. The returned message is ready
// to show; on failure the error is a *domain.UserError.
func (p *PointService) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	if err := validateInput(req); err != nil {
		return domain.TransferResult{}, err
	}

	res, err := p.api.Transfer(ctx, req)
	if err != nil {
		p.log.WithError(err).WithField("receiver", req.ReceiverEmail).Error("point transfer failed")
		return domain.TransferResult{}, userMessage(err, "Transfer failed.")
	}

	res.Message = fmt.Sprintf("Success! Transferred %d points: %s", req.Amount, res.Message)
	return res, nil
}
