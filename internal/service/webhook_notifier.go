package service

import (
	"context"
	"time"

	"bloodlink-data/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier posts critical requests to an external endpoint, e.g. an
// alerting bridge. Delivery is best effort; a failed post is logged and
// dropped.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &WebhookNotifier{client: client, url: url, logger: logger}
}

var _ Notifier = (*WebhookNotifier)(nil)

type criticalRequestPayload struct {
	Event         string `json:"event"`
	RequestID     string `json:"request_id"`
	BloodType     string `json:"blood_group"`
	UnitsRequired int    `json:"units_required"`
	HospitalName  string `json:"hospital_name"`
	City          string `json:"city"`
	ContactPhone  string `json:"contact_phone"`
	RequiredBy    string `json:"required_by"`
}

func (n *WebhookNotifier) NotifyCriticalRequest(ctx context.Context, req *domain.BloodRequest) {
	payload := criticalRequestPayload{
		Event:         "critical_blood_request",
		RequestID:     req.RequestID,
		BloodType:     string(req.BloodType),
		UnitsRequired: req.UnitsRequired,
		HospitalName:  req.HospitalName,
		City:          req.City,
		ContactPhone:  req.ContactPhone,
		RequiredBy:    req.RequiredBy.Format("2006-01-02"),
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		n.logger.Warn("critical request webhook failed",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		n.logger.Warn("critical request webhook rejected",
			zap.String("request_id", req.RequestID),
			zap.Int("status", resp.StatusCode()),
		)
		return
	}
	n.logger.Info("critical request webhook delivered",
		zap.String("request_id", req.RequestID),
	)
}
