// Package gr4vy is a thin HTTP client for the Gr4vy checkout APIs.
package gr4vy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 10 << 20

// Client calls one Gr4vy instance with fixed credentials.
type Client struct {
	config     Config
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// New validates cfg and creates a client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		raw = HostURL(cfg.ID, cfg.Server)
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, badURL(raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, badURL(raw, fmt.Errorf("missing scheme or host"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		config:  cfg,
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// BaseURL returns the API root the client calls.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetCardDetails looks up card details for a checkout.
func (c *Client) GetCardDetails(ctx context.Context, req CardDetailsRequest) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/card-details", req.query(), nil, "")
}

// ListPaymentOptions lists the payment options available for a checkout.
func (c *Client) ListPaymentOptions(ctx context.Context, req PaymentOptionsRequest) (*Response, error) {
	merchantID := ""
	if req.MerchantID != nil {
		merchantID = *req.MerchantID
	}
	return c.do(ctx, http.MethodPost, "/payment-options", nil, req, merchantID)
}

// ListPaymentMethods lists stored payment methods for a buyer.
func (c *Client) ListPaymentMethods(ctx context.Context, req PaymentMethodsRequest) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/buyers/payment-methods", req.query(), nil, "")
}

// Tokenize attaches a payment method to a checkout session.
func (c *Client) Tokenize(ctx context.Context, req TokenizeRequest) (*Response, error) {
	path := "/checkout/sessions/" + url.PathEscape(req.CheckoutSessionID) + "/fields"
	return c.do(ctx, http.MethodPut, path, nil, req, "")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, merchantID string) (*Response, error) {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, decodingError(fmt.Sprintf("encoding request: %v", err), err)
		}
		reqBody = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return nil, badURL(endpoint.String(), err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.Token)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if merchantID == "" {
		merchantID = c.config.MerchantID
	}
	if merchantID != "" {
		httpReq.Header.Set("x-gr4vy-merchant-account-id", merchantID)
	}

	start := time.Now()
	if c.config.Debug {
		c.logger.Debug("gr4vy request",
			"method", method,
			"url", endpoint.String(),
			"token", MaskToken(c.config.Token),
			"merchant_id", merchantID,
		)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, networkError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, networkError(err)
	}

	if c.config.Debug {
		c.logger.Debug("gr4vy response",
			"method", method,
			"path", path,
			"status", httpResp.StatusCode,
			"bytes", len(respBody),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if httpResp.StatusCode >= 400 {
		return nil, &Error{
			Kind:       KindHTTP,
			StatusCode: httpResp.StatusCode,
			Message:    apiMessage(respBody),
			Body:       string(respBody),
		}
	}

	if len(bytes.TrimSpace(respBody)) > 0 && !json.Valid(respBody) {
		return nil, decodingError(fmt.Sprintf("response from %s is not valid JSON", path), nil)
	}

	return &Response{
		StatusCode:  httpResp.StatusCode,
		RawResponse: string(respBody),
	}, nil
}

// apiMessage extracts the message field of an API error body.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Message
}

// MaskToken keeps the last four characters of a secret.
func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
