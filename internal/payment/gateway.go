// Package payment creates Razorpay orders and grants premium access on
// verified payments.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the Razorpay REST endpoint.
const DefaultBaseURL = "https://api.razorpay.com/v1"

// Currency is the only currency orders are created in.
const Currency = "INR"

// Gateway creates orders.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int) (string, error)
}

// RazorpayConfig holds API credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

// Razorpay is a minimal Orders API client.
type Razorpay struct {
	cfg    RazorpayConfig
	client *http.Client
}

// NewRazorpay returns a client. An empty BaseURL uses DefaultBaseURL.
func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Razorpay{cfg: cfg, client: &http.Client{Timeout: 15 * time.Second}}
}

type orderRequest struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// CreateOrder creates an INR order for amountMinor paise and returns its id.
func (r *Razorpay) CreateOrder(ctx context.Context, amountMinor int) (string, error) {
	if amountMinor <= 0 {
		return "", fmt.Errorf("invalid amount %d", amountMinor)
	}
	body, err := json.Marshal(orderRequest{
		Amount:   amountMinor,
		Currency: Currency,
		Receipt:  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(r.cfg.KeyID, r.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read order response: %w", err)
	}
	var out orderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode order response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("razorpay: %s: %s", out.Error.Code, out.Error.Description)
		}
		return "", fmt.Errorf("razorpay: status %d", resp.StatusCode)
	}
	if out.ID == "" {
		return "", fmt.Errorf("razorpay: order response has no id")
	}
	return out.ID, nil
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID" under secret.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a checkout signature in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	want := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(want), []byte(signature))
}
