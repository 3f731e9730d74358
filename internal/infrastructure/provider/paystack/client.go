package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/clearbridge-dev/payments/internal/domain/provider"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 15 * time.Second

	providerName = "paystack"
)

// Client talks to the Paystack transaction API over HTTPS. It is stateless:
// the secret key is supplied per call so that rotated credentials take effect
// immediately, and it never touches the transaction store.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a gateway client. An empty baseURL selects the production
// API; a zero timeout selects the default bounded timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetProviderName returns the provider name
func (c *Client) GetProviderName() string {
	return providerName
}

// envelope is the wrapper every gateway response arrives in.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize registers a payment with the gateway.
// POST /transaction/initialize
func (c *Client) Initialize(ctx context.Context, secretKey string, req *provider.InitializeRequest) (*provider.InitializeResponse, error) {
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.AmountMinor,
		"currency":  req.Currency,
		"reference": req.Reference,
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Code:    "MARSHAL_ERROR",
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	reqURL := fmt.Sprintf("%s/transaction/initialize", c.baseURL)
	respBody, perr := c.do(ctx, http.MethodPost, reqURL, secretKey, bytes.NewBuffer(jsonBody))
	if perr != nil {
		c.logger.Error("gateway initialize failed",
			zap.String("reference", req.Reference),
			zap.Error(perr))
		return nil, perr
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}
	if !env.Status {
		c.logger.Error("gateway rejected initialize",
			zap.String("reference", req.Reference),
			zap.String("message", env.Message))
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Message: env.Message,
			Details: string(respBody),
		}
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response data",
			Details: err.Error(),
		}
	}

	c.logger.Info("gateway initialize succeeded",
		zap.String("reference", req.Reference),
		zap.String("access_code", data.AccessCode))

	return &provider.InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify fetches the gateway's record of a transaction.
// GET /transaction/verify/{reference}
func (c *Client) Verify(ctx context.Context, secretKey string, reference string) (*provider.VerifyResponse, error) {
	reqURL := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	respBody, perr := c.do(ctx, http.MethodGet, reqURL, secretKey, nil)
	if perr != nil {
		c.logger.Error("gateway verify failed",
			zap.String("reference", reference),
			zap.Error(perr))
		return nil, perr
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}
	if !env.Status {
		c.logger.Error("gateway rejected verify",
			zap.String("reference", reference),
			zap.String("message", env.Message))
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Message: env.Message,
			Details: string(respBody),
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response data",
			Details: err.Error(),
		}
	}

	resp := &provider.VerifyResponse{Raw: raw}
	if status, ok := raw["status"].(string); ok {
		resp.Status = status
	}
	if amount, ok := raw["amount"].(float64); ok {
		resp.AmountMinor = int64(amount)
	}
	if currency, ok := raw["currency"].(string); ok {
		resp.Currency = currency
	}
	if paidAt, ok := raw["paid_at"].(string); ok {
		resp.PaidAt = paidAt
	}

	return resp, nil
}

// do sends one request with the secret key as a bearer credential and
// classifies transport failures. A client-side timeout only abandons the
// response; it is classified as timeout, never as payment failure.
func (c *Client) do(ctx context.Context, method, reqURL, secretKey string, body io.Reader) ([]byte, *provider.ProviderError) {
	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindRejected,
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		kind := provider.ErrKindUnavailable
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = provider.ErrKindTimeout
		} else if errors.Is(err, context.DeadlineExceeded) {
			kind = provider.ErrKindTimeout
		}
		return nil, &provider.ProviderError{
			Kind:    kind,
			Code:    "API_ERROR",
			Message: "gateway request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Kind:    provider.ErrKindUnavailable,
			Code:    "RESPONSE_ERROR",
			Message: "Failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp map[string]interface{}
		json.Unmarshal(respBody, &errResp)

		code, _ := errResp["code"].(string)
		message, _ := errResp["message"].(string)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}

		kind := provider.ErrKindRejected
		if resp.StatusCode >= http.StatusInternalServerError {
			kind = provider.ErrKindUnavailable
		}
		return nil, &provider.ProviderError{
			Kind:    kind,
			Code:    code,
			Message: message,
			Details: string(respBody),
		}
	}

	return respBody, nil
}
