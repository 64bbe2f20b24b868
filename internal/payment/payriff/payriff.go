package payriff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("payriff config invalid")
	ErrRequestFailed   = errors.New("payriff request failed")
	ErrResponseInvalid = errors.New("payriff response invalid")
)

const (
	defaultAPIBaseURL = "https://api.payriff.com/api/v2"
	defaultTimeout    = 5 * time.Second

	codeSuccess = "00000"

	// StatusApproved 网关侧支付成功状态
	StatusApproved = "APPROVED"
	// StatusDeclined 网关侧支付拒绝状态
	StatusDeclined = "DECLINED"
	// StatusPending 网关侧待支付状态
	StatusPending = "PENDING"
	// StatusExpired 网关侧过期状态
	StatusExpired = "EXPIRED"
)

// Config Payriff 渠道配置。
type Config struct {
	BaseURL     string `json:"base_url"`
	MerchantID  string `json:"merchant_id"`
	SecretKey   string `json:"secret_key"`
	CallbackURL string `json:"callback_url"`
	TimeoutMS   int    `json:"timeout_ms"`
}

// CreateInput 创建支付输入。
type CreateInput struct {
	OrderNo     string
	Amount      string
	Currency    string
	Description string
	Language    string
}

// CreateResult 创建支付返回。
type CreateResult struct {
	Success       bool
	PaymentURL    string
	TransactionID string
	Raw           map[string]interface{}
}

// QueryResult 查询支付返回。
type QueryResult struct {
	OrderNo       string
	Status        string
	Amount        string
	Currency      string
	TransactionID string
	Raw           map[string]interface{}
}

// Client Payriff HTTP 客户端。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.MerchantID) == "" {
		return fmt.Errorf("%w: merchant_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// New 创建客户端。
func New(cfg Config) (*Client, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultAPIBaseURL
	}
	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type createOrderRequest struct {
	MerchantID  string `json:"merchant"`
	Amount      string `json:"amount"`
	Currency    string `json:"currencyType"`
	Description string `json:"description"`
	OrderNo     string `json:"orderNo"`
	Language    string `json:"language"`
	CallbackURL string `json:"approveURL,omitempty"`
}

type apiEnvelope struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Payload map[string]interface{} `json:"payload"`
}

// CreateOrder 创建支付订单，返回支付跳转地址。
func (c *Client) CreateOrder(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if strings.TrimSpace(input.OrderNo) == "" || strings.TrimSpace(input.Amount) == "" {
		return nil, fmt.Errorf("%w: order_no and amount are required", ErrRequestFailed)
	}
	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = "AZ"
	}
	req := createOrderRequest{
		MerchantID:  c.cfg.MerchantID,
		Amount:      input.Amount,
		Currency:    strings.ToUpper(strings.TrimSpace(input.Currency)),
		Description: input.Description,
		OrderNo:     input.OrderNo,
		Language:    language,
		CallbackURL: c.cfg.CallbackURL,
	}
	envelope, err := c.post(ctx, "/createOrder", req)
	if err != nil {
		return nil, err
	}
	result := &CreateResult{
		Success: envelope.Code == codeSuccess,
		Raw:     envelope.Payload,
	}
	if !result.Success {
		return result, nil
	}
	result.PaymentURL = payloadString(envelope.Payload, "paymentUrl")
	result.TransactionID = payloadString(envelope.Payload, "transactionId")
	if result.PaymentURL == "" {
		return nil, fmt.Errorf("%w: missing paymentUrl", ErrResponseInvalid)
	}
	return result, nil
}

type orderStatusRequest struct {
	MerchantID string `json:"merchant"`
	OrderNo    string `json:"orderNo"`
}

// GetOrderStatus 查询支付订单状态。
func (c *Client) GetOrderStatus(ctx context.Context, orderNo string) (*QueryResult, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, fmt.Errorf("%w: order_no is required", ErrRequestFailed)
	}
	envelope, err := c.post(ctx, "/getStatusOrder", orderStatusRequest{
		MerchantID: c.cfg.MerchantID,
		OrderNo:    orderNo,
	})
	if err != nil {
		return nil, err
	}
	if envelope.Code != codeSuccess {
		return nil, fmt.Errorf("%w: code=%s message=%s", ErrResponseInvalid, envelope.Code, envelope.Message)
	}
	return &QueryResult{
		OrderNo:       orderNo,
		Status:        strings.ToUpper(payloadString(envelope.Payload, "orderStatus")),
		Amount:        payloadString(envelope.Payload, "amount"),
		Currency:      payloadString(envelope.Payload, "currencyType"),
		TransactionID: payloadString(envelope.Payload, "transactionId"),
		Raw:           envelope.Payload,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*apiEnvelope, error) {
	payload, err := json.Marshal(map[string]interface{}{"body": body})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request failed", ErrRequestFailed)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrRequestFailed, resp.StatusCode, truncate(string(raw), 256))
	}
	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return &envelope, nil
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if value, ok := payload[key]; ok {
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v)
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
