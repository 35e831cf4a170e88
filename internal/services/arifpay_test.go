package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSessionSendsCredentialHeader(t *testing.T) {
	var gotKey, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-arifpay-key")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"error":false,"msg":"ok","data":{"sessionId":"s1","paymentUrl":"https://pay/s1","cancelUrl":"https://pay/s1/cancel"}}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArifPayEndpoint = server.URL

	data, err := NewArifPayService(cfg).CreateSession(context.Background(), &SessionRequest{Nonce: "n1"})
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("x-arifpay-key = %q; want test-key", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", gotContentType)
	}
	if data.SessionID == nil || *data.SessionID != "s1" {
		t.Errorf("SessionID = %v; want s1", data.SessionID)
	}
	if data.PaymentURL == nil || *data.PaymentURL != "https://pay/s1" {
		t.Errorf("PaymentURL = %v; want https://pay/s1", data.PaymentURL)
	}
}

func TestCreateSessionMissingDataEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":false,"msg":"accepted"}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArifPayEndpoint = server.URL

	data, err := NewArifPayService(cfg).CreateSession(context.Background(), &SessionRequest{})
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if data.SessionID != nil || data.PaymentURL != nil || data.CancelURL != nil {
		t.Errorf("expected nil fields for missing data envelope, got %+v", data)
	}
}

func TestCreateSessionRejected(t *testing.T) {
	upstream := `{"error":true,"msg":"invalid phone"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(upstream))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArifPayEndpoint = server.URL

	_, err := NewArifPayService(cfg).CreateSession(context.Background(), &SessionRequest{})
	if !errors.Is(err, ErrGatewayRejected) {
		t.Fatalf("CreateSession error = %v; want ErrGatewayRejected", err)
	}

	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("error %v does not carry GatewayError", err)
	}
	if ge.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d; want 400", ge.StatusCode)
	}
	if ge.Body != upstream {
		t.Errorf("Body = %q; want upstream body attached", ge.Body)
	}
}

func TestCreateSessionMalformedSuccessBody(t *testing.T) {
	upstream := `<html>gateway busy</html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(upstream))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArifPayEndpoint = server.URL

	_, err := NewArifPayService(cfg).CreateSession(context.Background(), &SessionRequest{})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("CreateSession error = %v; want ErrGatewayUnavailable", err)
	}
	if errors.Is(err, ErrGatewayRejected) {
		t.Errorf("an accepted but undecodable answer must not read as a rejection")
	}

	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("error %v does not carry GatewayError", err)
	}
	if ge.Body != upstream {
		t.Errorf("Body = %q; want raw body attached", ge.Body)
	}
}

func TestCreateSessionUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // transport failure

	cfg := testConfig()
	cfg.ArifPayEndpoint = server.URL

	_, err := NewArifPayService(cfg).CreateSession(context.Background(), &SessionRequest{})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("CreateSession error = %v; want ErrGatewayUnavailable", err)
	}
}

func TestGetSessionStatus(t *testing.T) {
	doc := `{"data":{"transactionStatus":"SUCCESS","totalAmount":500}}`
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(doc))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArifPayStatusEndpoint = server.URL

	got, err := NewArifPayService(cfg).GetSessionStatus(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSessionStatus returned error: %v", err)
	}
	if gotPath != "/s1" {
		t.Errorf("request path = %q; want /s1", gotPath)
	}
	if string(got) != doc {
		t.Errorf("GetSessionStatus = %s; want document verbatim", got)
	}
}

func TestGetSessionStatusEmptyID(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArifPayStatusEndpoint = server.URL

	_, err := NewArifPayService(cfg).GetSessionStatus(context.Background(), "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("GetSessionStatus error = %v; want ErrInvalidArgument", err)
	}
	if calls != 0 {
		t.Errorf("gateway reached %d times for empty sessionId; want 0", calls)
	}
}
