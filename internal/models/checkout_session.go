package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionStatusCreated   SessionStatus = "created"
	SessionStatusPaid      SessionStatus = "paid"
	SessionStatusCancelled SessionStatus = "cancelled"
	SessionStatusErrored   SessionStatus = "errored"
	SessionStatusExpired   SessionStatus = "expired"
)

// Terminal reports whether the status can no longer change.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionStatusPaid, SessionStatusCancelled, SessionStatusErrored, SessionStatusExpired:
		return true
	}
	return false
}

// StatusFromGateway maps a transaction status string reported by ArifPay onto
// the local state machine. The second return is false for statuses that are
// not terminal outcomes (e.g. pending).
func StatusFromGateway(raw string) (SessionStatus, bool) {
	switch strings.ToUpper(raw) {
	case "SUCCESS", "PAID", "SETTLED":
		return SessionStatusPaid, true
	case "CANCELLED", "CANCELED":
		return SessionStatusCancelled, true
	case "EXPIRED":
		return SessionStatusExpired, true
	case "FAILED", "ERROR", "DECLINED":
		return SessionStatusErrored, true
	}
	return "", false
}

// CheckoutSession records one gateway checkout attempt. The gateway owns the
// authoritative state; rows here are reconciled from its notify callbacks and
// the expiry sweeper.
type CheckoutSession struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           string          `gorm:"type:varchar(100);index" json:"user_id"`
	GymID            string          `gorm:"type:varchar(100)" json:"gym_id"`
	PlanID           string          `gorm:"type:varchar(100)" json:"plan_id"`
	Nonce            string          `gorm:"type:varchar(200)" json:"nonce"`
	Amount           float64         `json:"amount"`
	PaymentGateway   PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	SessionID        string          `gorm:"type:varchar(100);index" json:"session_id"`
	PaymentURL       string          `gorm:"type:varchar(500)" json:"payment_url"`
	Status           SessionStatus   `gorm:"type:varchar(50);default:created" json:"status"`
	ExpiresAt        time.Time       `json:"expires_at"`
	RequestMetadata  json.RawMessage `gorm:"type:jsonb" json:"request_metadata"`
	ResponseMetadata json.RawMessage `gorm:"type:jsonb" json:"response_metadata"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
