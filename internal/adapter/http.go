package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/utils"
	"github.com/mvoronkov/go-ledger-sync/models"
)

type httpRelayAdapter struct {
	client *utils.HTTPClient

	token string

	logger *logger.Logger
}

// NewHTTPRelayAdapter constructs an HTTP/JSON implementation of
// [RelayAdapter]. It normalises and validates the base URL from
// relayCfg.BaseURL and configures the underlying HTTP client with the
// resolved base URL and request timeout.
//
// Returns an error if relayCfg.BaseURL is empty or cannot be parsed as a
// valid URL.
func NewHTTPRelayAdapter(relayCfg config.ClientRelay, logger *logger.Logger) (RelayAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(relayCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay base url: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(relayCfg.RequestTimeout)

	return &httpRelayAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RelayAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent requests.
func (h *httpRelayAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)
}

// Token implements [RelayAdapter].
func (h *httpRelayAdapter) Token() string {
	return h.token
}

// Push implements [RelayAdapter]. It POSTs the batch to
// POST /api/sync/push and decodes the accepted/rejected partition.
func (h *httpRelayAdapter) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	var result models.PushResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(h.token).
		SetBody(req).
		SetResult(&result).
		Post("/api/sync/push")
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("%w: push request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PushResponse{}, err
	}

	return result, nil
}

// Pull implements [RelayAdapter]. It GETs one page of changes from
// GET /api/sync/pull with the cursor and device carried as query
// parameters.
func (h *httpRelayAdapter) Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error) {
	var result models.PullResponse

	request := h.client.R().
		SetContext(ctx).
		SetAuthToken(h.token).
		SetQueryParam("protocol_version", fmt.Sprintf("%d", req.ProtocolVersion)).
		SetQueryParam("device_id", req.DeviceID).
		SetQueryParam("company_id", req.CompanyID).
		SetQueryParam("since_offset", fmt.Sprintf("%d", req.SinceOffset)).
		SetResult(&result)
	if req.Limit > 0 {
		request.SetQueryParam("limit", fmt.Sprintf("%d", req.Limit))
	}

	resp, err := request.Get("/api/sync/pull")
	if err != nil {
		return models.PullResponse{}, fmt.Errorf("%w: pull request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	return result, nil
}

// Ack implements [RelayAdapter]. It POSTs the device's high-water mark to
// POST /api/sync/ack.
func (h *httpRelayAdapter) Ack(ctx context.Context, req models.AckRequest) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(h.token).
		SetBody(req).
		Post("/api/sync/ack")
	if err != nil {
		return fmt.Errorf("%w: ack request: %w", ErrNetwork, err)
	}

	return mapHTTPError(resp)
}

// Health implements [RelayAdapter]. It GETs /health without credentials.
func (h *httpRelayAdapter) Health(ctx context.Context) (models.HealthResponse, error) {
	var result models.HealthResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/health")
	if err != nil {
		return models.HealthResponse{}, fmt.Errorf("%w: health request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.HealthResponse{}, err
	}

	return result, nil
}
