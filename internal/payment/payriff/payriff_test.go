package payriff

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{
		BaseURL:    server.URL,
		MerchantID: "ES1000001",
		SecretKey:  "test-secret",
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected config invalid, got %v", err)
	}
	if err := ValidateConfig(&Config{MerchantID: "m"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected missing secret rejected, got %v", err)
	}
	if err := ValidateConfig(&Config{MerchantID: "m", SecretKey: "s"}); err != nil {
		t.Fatalf("expected default base url accepted, got %v", err)
	}
}

func TestCreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/createOrder" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-secret" {
			t.Errorf("missing authorization header")
		}
		var body struct {
			Body createOrderRequest `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		if body.Body.OrderNo != "RC001" || body.Body.Amount != "25.00" {
			t.Errorf("unexpected request body: %+v", body.Body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "00000",
			"message": "OPERATION_IS_SUCCESSFUL",
			"payload": map[string]interface{}{
				"paymentUrl":    "https://pay.payriff.com/RC001",
				"transactionId": float64(123456),
			},
		})
	})

	result, err := client.CreateOrder(context.Background(), CreateInput{
		OrderNo:  "RC001",
		Amount:   "25.00",
		Currency: "AZN",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success")
	}
	if result.PaymentURL != "https://pay.payriff.com/RC001" {
		t.Fatalf("unexpected payment url: %s", result.PaymentURL)
	}
	if result.TransactionID != "123456" {
		t.Fatalf("unexpected transaction id: %s", result.TransactionID)
	}
}

func TestCreateOrderGatewayRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "15000",
			"message": "MERCHANT_NOT_FOUND",
		})
	})

	result, err := client.CreateOrder(context.Background(), CreateInput{OrderNo: "RC002", Amount: "10.00"})
	if err != nil {
		t.Fatalf("expected soft failure, got %v", err)
	}
	if result.Success {
		t.Fatalf("expected rejection flagged")
	}
}

func TestCreateOrderMissingPaymentURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "00000",
			"payload": map[string]interface{}{},
		})
	})

	if _, err := client.CreateOrder(context.Background(), CreateInput{OrderNo: "RC003", Amount: "10.00"}); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected response invalid, got %v", err)
	}
}

func TestCreateOrderValidatesInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not be sent")
	})
	if _, err := client.CreateOrder(context.Background(), CreateInput{}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected request failed, got %v", err)
	}
}

func TestGetOrderStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getStatusOrder" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "00000",
			"payload": map[string]interface{}{
				"orderStatus":   "approved",
				"amount":        float64(25),
				"currencyType":  "AZN",
				"transactionId": "tx-1",
			},
		})
	})

	status, err := client.GetOrderStatus(context.Background(), "RC001")
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if status.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", status.Status)
	}
	if status.Amount != "25" {
		t.Fatalf("unexpected amount: %s", status.Amount)
	}
}

func TestGetOrderStatusHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := client.GetOrderStatus(context.Background(), "RC001"); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected request failed, got %v", err)
	}
}
