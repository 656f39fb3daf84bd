package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

// SMSSender dispatches an outbound SMS. The boolean reports whether the
// message actually went out; an unconfigured or inactive gateway is a
// skipped send (false, nil), not an error.
type SMSSender interface {
	Send(ctx context.Context, phone, message string, userID uuid.UUID) (bool, error)
}

// HTTPSMSGateway posts messages to an external SMS provider. Every call is
// bounded by the client timeout so a slow provider can never stall a sweep.
type HTTPSMSGateway struct {
	url    string
	apiKey string
	sender string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPSMSGateway(url, apiKey, sender string, timeout time.Duration, logger *zap.Logger) *HTTPSMSGateway {
	return &HTTPSMSGateway{
		url:    url,
		apiKey: apiKey,
		sender: sender,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
	UserRef string `json:"user_ref,omitempty"`
}

func (g *HTTPSMSGateway) Send(ctx context.Context, phone, message string, userID uuid.UUID) (bool, error) {
	if g.url == "" {
		g.logger.Debug("sms gateway not configured, skipping send",
			zap.String("user_id", userID.String()))
		return false, nil
	}

	payload, err := json.Marshal(smsRequest{
		To:      phone,
		Message: message,
		Sender:  g.sender,
		UserRef: userID.String(),
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("X-API-Key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: gateway returned %d", apperrors.ErrGatewayUnavailable, resp.StatusCode)
	}

	return true, nil
}
