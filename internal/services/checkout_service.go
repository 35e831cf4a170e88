package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"gorm.io/gorm"

	"gympay_backend/internal/config"
	"gympay_backend/internal/models"
)

// Payment methods offered at checkout.
var paymentMethods = []string{"TELEBIRR"}

const (
	sessionLifetime  = 30 * time.Minute
	placeholderImage = "https://via.placeholder.com/150"
	statusCacheTTL   = 30 * time.Second
	expireDateLayout = "2006-01-02T15:04:05.000Z"
)

// CheckoutRequest is the caller-supplied purchase intent.
type CheckoutRequest struct {
	UserID       string  `json:"userId"`
	GymID        string  `json:"gymId"`
	PlanID       string  `json:"planId"`
	GymName      string  `json:"gymName"`
	PlanName     string  `json:"planName"`
	DurationDays int     `json:"durationDays"`
	Amount       float64 `json:"amount"`
	Quantity     int     `json:"quantity"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	UserName     string  `json:"userName"`
}

// CheckoutResult is the success envelope returned to the caller. The gateway
// may omit any of the extracted fields, hence the pointers.
type CheckoutResult struct {
	SessionID  *string
	PaymentURL *string
	CancelURL  *string
	Message    string
}

// CheckoutService orchestrates checkout creation and status lookups against
// the gateway.
type CheckoutService struct {
	cfg     *config.Config
	gateway ArifPayGateway
	db      *gorm.DB
	cache   Cache
	now     func() time.Time
}

// NewCheckoutService wires the orchestrator. db and cache may be nil; the
// service then runs in the original stateless single-shot mode.
func NewCheckoutService(cfg *config.Config, gateway ArifPayGateway, db *gorm.DB, cache Cache) *CheckoutService {
	return &CheckoutService{cfg: cfg, gateway: gateway, db: db, cache: cache, now: time.Now}
}

// Validate checks that the request carries every required field.
func (s *CheckoutService) Validate(req *CheckoutRequest) error {
	if req.UserID == "" || req.GymID == "" || req.PlanID == "" || req.Amount <= 0 || req.Phone == "" || req.Email == "" {
		return ErrMissingFields
	}
	return nil
}

// BuildSessionPayload converts a validated request into the gateway payload.
// Pure given the request and instant. Never called with an invalid request.
func (s *CheckoutService) BuildSessionPayload(req *CheckoutRequest, at time.Time) *SessionRequest {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	item := LineItem{
		Name:        fmt.Sprintf("%s - %s", req.GymName, req.PlanName),
		Quantity:    quantity,
		Price:       req.Amount,
		Description: fmt.Sprintf("%s subscription for %d days at %s", req.PlanName, req.DurationDays, req.GymName),
		Image:       placeholderImage, // gym logo URL could go here
	}

	return &SessionRequest{
		CancelURL:  callbackURL(s.cfg.CancelURL, url.Values{"userId": {req.UserID}, "subscriptionId": {req.PlanID}}),
		ErrorURL:   callbackURL(s.cfg.ErrorURL, url.Values{"userId": {req.UserID}}),
		NotifyURL:  s.cfg.NotifyURL,
		SuccessURL: callbackURL(s.cfg.SuccessURL, url.Values{"userId": {req.UserID}, "gymId": {req.GymID}, "planId": {req.PlanID}}),
		Phone:      req.Phone,
		Email:      req.Email,
		// Unique per (user, plan, instant); a retry at a later instant never
		// collides with an earlier session.
		Nonce:          fmt.Sprintf("%s_%s_%d", req.UserID, req.PlanID, at.UnixMilli()),
		PaymentMethods: paymentMethods,
		ExpireDate:     at.Add(sessionLifetime).UTC().Format(expireDateLayout),
		Items:          []LineItem{item},
		Beneficiaries: []Beneficiary{{
			AccountNumber: s.cfg.BeneficiaryAccount,
			Bank:          s.cfg.BeneficiaryBank,
			Amount:        req.Amount,
		}},
		Lang: "EN",
	}
}

func callbackURL(base string, params url.Values) string {
	return base + "?" + params.Encode()
}

// CreateCheckout validates, builds the payload, creates the gateway session
// and records it locally when a database is configured.
func (s *CheckoutService) CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	at := s.now()
	payload := s.BuildSessionPayload(req, at)

	data, err := s.gateway.CreateSession(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.recordSession(req, payload, data, at)

	return &CheckoutResult{
		SessionID:  data.SessionID,
		PaymentURL: data.PaymentURL,
		CancelURL:  data.CancelURL,
		Message:    "Checkout session created successfully",
	}, nil
}

// recordSession persists the created session for later reconciliation by the
// notify webhook. A nil db keeps the original stateless behavior.
func (s *CheckoutService) recordSession(req *CheckoutRequest, payload *SessionRequest, data *SessionData, at time.Time) {
	if s.db == nil {
		return
	}

	reqBytes, _ := json.Marshal(payload)
	respBytes, _ := json.Marshal(data)

	session := models.CheckoutSession{
		UserID:           req.UserID,
		GymID:            req.GymID,
		PlanID:           req.PlanID,
		Nonce:            payload.Nonce,
		Amount:           req.Amount,
		PaymentGateway:   models.PaymentGatewayArifPay,
		Status:           models.SessionStatusCreated,
		ExpiresAt:        at.Add(sessionLifetime),
		RequestMetadata:  reqBytes,
		ResponseMetadata: respBytes,
	}
	if data.SessionID != nil {
		session.SessionID = *data.SessionID
	}
	if data.PaymentURL != nil {
		session.PaymentURL = *data.PaymentURL
	}
	if err := s.db.Create(&session).Error; err != nil {
		log.Printf("Failed to record checkout session: %v", err)
	}
}

// StatusCacheKey returns the cache key under which a session's gateway status
// document is stored.
func StatusCacheKey(sessionID string) string {
	return "arifpay:session:" + sessionID
}

// CheckStatus fetches the gateway status document for a session, caching it
// briefly when Redis is configured.
func (s *CheckoutService) CheckStatus(ctx context.Context, sessionID string) (json.RawMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidArgument)
	}

	if s.cache == nil {
		return s.gateway.GetSessionStatus(ctx, sessionID)
	}

	return GetOrSet(s.cache, ctx, StatusCacheKey(sessionID), statusCacheTTL, func() (json.RawMessage, error) {
		return s.gateway.GetSessionStatus(ctx, sessionID)
	})
}
