package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"gympay_backend/internal/services"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// CreateSubscriptionCheckout handles POST /api/create-subscription-checkout
func (h *CheckoutHandler) CreateSubscriptionCheckout(c echo.Context) error {
	var req services.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	result, err := h.checkoutService.CreateCheckout(c.Request().Context(), &req)
	if err != nil {
		// Which fields are missing is deliberately not disclosed.
		if errors.Is(err, services.ErrMissingFields) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		}
		log.Printf("ArifPay subscription error: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create subscription checkout",
			Details: upstreamDetails(err),
		})
	}

	return c.JSON(http.StatusOK, CheckoutResponse{
		Success:    true,
		SessionID:  result.SessionID,
		PaymentURL: result.PaymentURL,
		CancelURL:  result.CancelURL,
		Message:    result.Message,
	})
}

// CheckPaymentStatus handles POST /api/payment/status
func (h *CheckoutHandler) CheckPaymentStatus(c echo.Context) error {
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "sessionId is required"})
	}

	doc, err := h.checkoutService.CheckStatus(c.Request().Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "sessionId is required"})
		}
		log.Printf("Status check error: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to check payment status",
			Details: upstreamDetails(err),
		})
	}

	// The gateway's status document is returned verbatim.
	return c.JSONBlob(http.StatusOK, doc)
}

// upstreamDetails surfaces the gateway's own error body, decoded when it is
// JSON so the envelope nests it rather than double-encoding a string.
func upstreamDetails(err error) interface{} {
	detail := services.UpstreamDetails(err)
	var decoded interface{}
	if json.Unmarshal([]byte(detail), &decoded) == nil {
		return decoded
	}
	return detail
}
