package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gympay_backend/internal/config"
)

// Wire types for the ArifPay checkout API. ArifPay ships no Go SDK, so the
// request and response shapes are declared here.

// LineItem is one purchasable entry in a checkout session.
type LineItem struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

// Beneficiary is the bank account credited on successful payment.
type Beneficiary struct {
	AccountNumber string  `json:"accountNumber"`
	Bank          string  `json:"bank"`
	Amount        float64 `json:"amount"`
}

// SessionRequest is the checkout-session creation payload.
type SessionRequest struct {
	CancelURL      string        `json:"cancelUrl"`
	ErrorURL       string        `json:"errorUrl"`
	NotifyURL      string        `json:"notifyUrl"`
	SuccessURL     string        `json:"successUrl"`
	Phone          string        `json:"phone"`
	Email          string        `json:"email"`
	Nonce          string        `json:"nonce"`
	PaymentMethods []string      `json:"paymentMethods"`
	ExpireDate     string        `json:"expireDate"`
	Items          []LineItem    `json:"items"`
	Beneficiaries  []Beneficiary `json:"beneficiaries"`
	Lang           string        `json:"lang"`
}

// SessionData is the useful portion of ArifPay's creation response. The
// gateway's schema is not guaranteed, so every field is optional; absent
// fields stay nil and are surfaced to the caller as nulls.
type SessionData struct {
	SessionID  *string `json:"sessionId,omitempty"`
	PaymentURL *string `json:"paymentUrl,omitempty"`
	CancelURL  *string `json:"cancelUrl,omitempty"`
}

type sessionResponse struct {
	Error bool         `json:"error"`
	Msg   string       `json:"msg"`
	Data  *SessionData `json:"data"`
}

// ArifPayGateway abstracts the two ArifPay call shapes used by the
// orchestrator.
type ArifPayGateway interface {
	CreateSession(ctx context.Context, payload *SessionRequest) (*SessionData, error)
	GetSessionStatus(ctx context.Context, sessionID string) (json.RawMessage, error)
}

// ArifPayService is the concrete HTTP client. One request per operation, no
// retries; the bounded client timeout turns a hung gateway into
// ErrGatewayUnavailable.
type ArifPayService struct {
	cfg    *config.Config
	client *http.Client
}

func NewArifPayService(cfg *config.Config) *ArifPayService {
	return &ArifPayService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateSession issues the checkout-session creation call.
func (s *ArifPayService) CreateSession(ctx context.Context, payload *SessionRequest) (*SessionData, error) {
	body, err := s.doRequest(ctx, http.MethodPost, s.cfg.ArifPayEndpoint, payload)
	if err != nil {
		return nil, err
	}

	var parsed sessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// A 2xx answer the client cannot decode is no usable answer at all.
		return nil, &GatewayError{Err: ErrGatewayUnavailable, Body: string(body)}
	}
	if parsed.Data == nil {
		// The data envelope itself may be missing; the caller tolerates nulls.
		return &SessionData{}, nil
	}
	return parsed.Data, nil
}

// GetSessionStatus fetches the gateway-defined status document for a session.
func (s *ArifPayService) GetSessionStatus(ctx context.Context, sessionID string) (json.RawMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidArgument)
	}
	return s.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%s", s.cfg.ArifPayStatusEndpoint, sessionID), nil)
}

func (s *ArifPayService) doRequest(ctx context.Context, method, url string, payload interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-arifpay-key", s.cfg.ArifPayAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("ArifPay request failed: %v", err)
		return nil, &GatewayError{Err: ErrGatewayUnavailable, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Err: ErrGatewayUnavailable, Body: err.Error()}
	}

	if resp.StatusCode >= 400 {
		log.Printf("ArifPay responded with status %d: %s", resp.StatusCode, string(body))
		return nil, &GatewayError{Err: ErrGatewayRejected, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
