package paygate

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

	"medibook/internal/pkg/config"
	"medibook/internal/pkg/errs"
	"medibook/internal/usecase/commands"
)

const (
	defaultTimeout = 15 * time.Second
	currency       = "INR"
)

// Client talks to a Razorpay-compatible payment provider. Amounts are
// paise throughout, matching the fee engine.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type orderRequest struct {
	Amount   int32  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int32  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, amount int32, receipt string) (*commands.GatewayOrder, error) {
	var resp orderResponse
	err := c.post(ctx, "/v1/orders", orderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, &resp)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create gateway order")
	}
	return &commands.GatewayOrder{
		OrderID:  resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
	}, nil
}

// VerifySignature checks the checkout callback signature: hex HMAC-SHA256
// of "orderID|paymentID" under the key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type refundRequest struct {
	Amount int32 `json:"amount"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Amount int32  `json:"amount"`
	Status string `json:"status"`
}

func (c *Client) Refund(ctx context.Context, paymentID string, amount int32) (*commands.RefundResult, error) {
	var resp refundResponse
	path := fmt.Sprintf("/v1/payments/%s/refund", paymentID)
	if err := c.post(ctx, path, refundRequest{Amount: amount}, &resp); err != nil {
		return nil, errs.Wrap(err, "failed to refund payment")
	}
	return &commands.RefundResult{
		RefundID: resp.ID,
		Amount:   resp.Amount,
		Status:   resp.Status,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}
