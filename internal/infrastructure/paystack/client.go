package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domainerrors "wallet-core.backend/internal/domain/errors"
)

const defaultBaseURL = "https://api.paystack.co"

// Client is a client for the Paystack API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a new Paystack API client. The secret key authenticates
// outbound calls and signs inbound webhooks.
func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// InitializeRequest is the payload for transaction initialization.
type InitializeRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"` // smallest currency unit
	Reference string `json:"reference"`
}

// InitializeResponse is the provider's initialization result.
type InitializeResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// VerifyResponse is the provider's charge verification result.
type VerifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// Initialize starts a hosted payment and returns the redirect URL.
func (c *Client) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var resp InitializeResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return nil, domainerrors.Upstream("paystack initialization rejected")
	}
	return &resp, nil
}

// Verify fetches the provider-side status of a charge by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, domainerrors.Upstream("paystack verification rejected")
	}
	return &resp, nil
}

// VerifySignature recomputes HMAC-SHA512 over the exact raw body and compares
// it to the hex signature header in constant time.
func (c *Client) VerifySignature(rawBody []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return domainerrors.UpstreamTimeout("paystack request timed out")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return domainerrors.UpstreamTimeout("paystack request timed out")
		}
		return domainerrors.Upstream(fmt.Sprintf("paystack request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.Upstream("failed to read paystack response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainerrors.Upstream(fmt.Sprintf("paystack returned status %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return domainerrors.Upstream("malformed paystack response")
		}
	}
	return nil
}
