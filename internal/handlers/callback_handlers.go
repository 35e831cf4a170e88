package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gympay_backend/internal/models"
	"gympay_backend/internal/services"
)

// CallbackHandler receives the gateway's browser redirects and its notify
// webhook. db and cache may be nil; redirects then display without a status
// lookup and notifications are acknowledged without being recorded.
type CallbackHandler struct {
	db    *gorm.DB
	cache services.Cache
}

func NewCallbackHandler(db *gorm.DB, cache services.Cache) *CallbackHandler {
	return &CallbackHandler{db: db, cache: cache}
}

// PaymentSuccess renders the post-payment confirmation page. Display only;
// the authoritative outcome arrives on the notify webhook.
func (h *CallbackHandler) PaymentSuccess(c echo.Context) error {
	userID := c.QueryParam("userId")
	gymID := c.QueryParam("gymId")
	planID := c.QueryParam("planId")

	data := map[string]interface{}{
		"UserID": userID,
		"GymID":  gymID,
		"PlanID": planID,
	}

	// Read-only lookup so the page reflects what the webhook recorded.
	if h.db != nil {
		var session models.CheckoutSession
		err := h.db.Where("user_id = ? AND gym_id = ? AND plan_id = ?", userID, gymID, planID).
			Order("created_at desc").First(&session).Error
		if err == nil {
			data["Status"] = string(session.Status)
		}
	}

	return c.Render(http.StatusOK, "payment_success.html", data)
}

// PaymentCancel renders the cancellation notice.
func (h *CallbackHandler) PaymentCancel(c echo.Context) error {
	return c.Render(http.StatusOK, "payment_cancel.html", nil)
}

// PaymentError renders the failure notice.
func (h *CallbackHandler) PaymentError(c echo.Context) error {
	return c.Render(http.StatusOK, "payment_error.html", nil)
}

// PaymentNotify handles the server-to-server outcome notification. The
// payload is recorded and acknowledged regardless of shape; reconciliation
// must never bounce a notification back to the gateway.
// Known gap carried over from the reference behavior: the notification is
// not authenticated, ArifPay does not sign its webhooks.
func (h *CallbackHandler) PaymentNotify(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		log.Printf("Payment notification with unreadable body: %v", err)
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	log.Printf("Payment notification received: %v", payload)

	sessionID := stringField(payload, "sessionId", "session_id", "uuid")

	if h.db != nil {
		h.recordNotification(sessionID, payload)
	}
	if h.cache != nil && sessionID != "" {
		// The cached status document is stale once an outcome arrives.
		if err := h.cache.Delete(c.Request().Context(), services.StatusCacheKey(sessionID)); err != nil {
			log.Printf("Failed to invalidate status cache for %s: %v", sessionID, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

// recordNotification appends the payload to the callback history and, when it
// names a known session with a terminal outcome, transitions that session.
func (h *CallbackHandler) recordNotification(sessionID string, payload map[string]interface{}) {
	metadata, err := json.Marshal(payload)
	if err != nil {
		return
	}

	history := models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayArifPay,
		SessionID:      sessionID,
		Metadata:       metadata,
	}
	if err := h.db.Create(&history).Error; err != nil {
		log.Printf("Failed to record callback history: %v", err)
	}

	status, ok := models.StatusFromGateway(stringField(payload, "transactionStatus", "transaction_status", "status"))
	if !ok || sessionID == "" {
		return
	}

	// A session already terminal keeps the outcome the webhook first
	// recorded, so replays are harmless.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var session models.CheckoutSession
		if err := tx.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
			return err
		}
		if session.Status.Terminal() {
			return nil
		}
		session.Status = status
		return tx.Save(&session).Error
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to reconcile session %s: %v", sessionID, err)
	}
}

func stringField(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if val, ok := payload[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}
