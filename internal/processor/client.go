// Package processor wraps the external payment processor: charges against a
// company, hosted checkout sessions, transfers to affiliate payout accounts
// and account status queries. Confirmation for anything asynchronous arrives
// through the webhook, never through these calls.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/config"
	"affiliate-settlement-api/internal/utils"
)

type ChargeReq struct {
	Purpose         string          `json:"purpose"`
	ReferenceID     uint64          `json:"reference_id"` // our batch id
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentMethodID string          `json:"payment_method_id"`
	Sign            string          `json:"sign"`
}

type ChargeResp struct {
	ChargeRef string `json:"charge_ref"`
	Captured  bool   `json:"captured"` // true when the charge settled synchronously
	Declined  bool   `json:"declined"`
	Reason    string `json:"reason"`
}

type CheckoutReq struct {
	Purpose     string          `json:"purpose"`
	ReferenceID uint64          `json:"reference_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Sign        string          `json:"sign"`
}

type CheckoutResp struct {
	ChargeRef   string `json:"charge_ref"`
	CheckoutURL string `json:"checkout_url"`
}

type TransferReq struct {
	ReferenceID uint64          `json:"reference_id"` // our payout id
	AccountRef  string          `json:"account_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Sign        string          `json:"sign"`
}

type TransferResp struct {
	TransferRef string `json:"transfer_ref"`
	Declined    bool   `json:"declined"`
	Reason      string `json:"reason"`
}

type AccountStatusResp struct {
	AccountRef string `json:"account_ref"`
	Status     string `json:"status"`
}

// Client is the outbound processor surface. Services depend on this
// interface; tests substitute a fake.
type Client interface {
	CreateCharge(ctx context.Context, req ChargeReq) (*ChargeResp, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutReq) (*CheckoutResp, error)
	CreateTransfer(ctx context.Context, req TransferReq) (*TransferResp, error)
	GetAccountStatus(ctx context.Context, accountRef string) (*AccountStatusResp, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewClient() Client {
	c := config.C.Processor
	return &httpClient{
		baseURL: c.ApiUrl,
		apiKey:  c.ApiKey,
		hc:      &http.Client{Timeout: time.Duration(c.TimeoutSec) * time.Second},
	}
}

const postMaxRetry = 3

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	log.Printf("[PROCESSOR] POST %s payload=%s", path, utils.MapToJSON(body))
	return utils.DoWithRetry(ctx, postMaxRetry, 2*time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("processor returned %d: %s", resp.StatusCode, string(respBody))
		}
		return json.Unmarshal(respBody, out)
	})
}

func (c *httpClient) CreateCharge(ctx context.Context, req ChargeReq) (*ChargeResp, error) {
	req.Sign = utils.GenerateSign(map[string]string{
		"purpose":      req.Purpose,
		"reference_id": fmt.Sprintf("%d", req.ReferenceID),
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
	}, c.apiKey)
	var out ChargeResp
	if err := c.post(ctx, "/v1/charges", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreateCheckoutSession(ctx context.Context, req CheckoutReq) (*CheckoutResp, error) {
	req.Sign = utils.GenerateSign(map[string]string{
		"purpose":      req.Purpose,
		"reference_id": fmt.Sprintf("%d", req.ReferenceID),
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
	}, c.apiKey)
	var out CheckoutResp
	if err := c.post(ctx, "/v1/checkout/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreateTransfer(ctx context.Context, req TransferReq) (*TransferResp, error) {
	req.Sign = utils.GenerateSign(map[string]string{
		"reference_id": fmt.Sprintf("%d", req.ReferenceID),
		"account_ref":  req.AccountRef,
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
	}, c.apiKey)
	var out TransferResp
	if err := c.post(ctx, "/v1/transfers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetAccountStatus(ctx context.Context, accountRef string) (*AccountStatusResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/accounts/"+accountRef, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("processor returned %d: %s", resp.StatusCode, string(respBody))
	}
	var out AccountStatusResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
