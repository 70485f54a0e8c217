package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/verdandi/internal/billing"
	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/handler"
)

// PaymentHandler processes asynchronous payment gateway callbacks.
//
// Gateways retry callbacks aggressively, so this endpoint must be safe to
// hit any number of times with the same event. Idempotency lives in the
// payment service; the handler only verifies authenticity and translates.
type PaymentHandler struct {
	provider billing.Provider
	payments domain.PaymentService
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment callback handler.
func NewPaymentHandler(provider billing.Provider, payments domain.PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{
		provider: provider,
		payments: payments,
		logger:   logger,
	}
}

// Register mounts the callback route.
func (h *PaymentHandler) Register(e *echo.Echo) {
	e.POST("/webhooks/payment", h.HandleCallback)
}

// callbackPayload is the gateway's callback body.
type callbackPayload struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents"`
}

// HandleCallback handles POST /webhooks/payment.
func (h *PaymentHandler) HandleCallback(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return handler.Error(c, h.logger, domain.Invalid("webhook.payment", "Failed to read request body"))
	}

	signature := c.Request().Header.Get("X-Gateway-Signature")
	if err := h.provider.VerifyWebhookSignature(payload, signature); err != nil {
		h.logger.Warn("webhook signature rejected", "error", err)
		return handler.Error(c, h.logger, domain.Errorf(domain.EUNAUTHORIZED, "webhook.payment", "Invalid webhook signature"))
	}

	var event callbackPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return handler.Error(c, h.logger, domain.Invalid("webhook.payment", "Invalid callback payload"))
	}

	var status domain.PaymentStatus
	switch event.Status {
	case billing.StatusSucceeded:
		status = domain.PaymentPaid
	case billing.StatusFailed:
		status = domain.PaymentFailed
	default:
		// Intermediate gateway states are acknowledged and dropped; only
		// terminal outcomes touch the payment record.
		h.logger.Debug("ignoring non-terminal callback",
			"transaction_id", event.TransactionID,
			"status", event.Status,
		)
		return handler.OK(c, http.StatusOK, map[string]string{"received": "true"})
	}

	order, err := h.payments.ApplyGatewayResult(c.Request().Context(), domain.GatewayResult{
		TransactionID: event.TransactionID,
		Status:        status,
		AmountCents:   event.AmountCents,
	})
	if err != nil {
		// Unknown transactions get a 404 so the gateway stops retrying;
		// anything else is a 5xx and retried.
		return handler.Error(c, h.logger, err)
	}

	h.logger.Info("payment callback applied",
		"transaction_id", event.TransactionID,
		"status", status,
		"order_id", order.ID,
	)
	return handler.OK(c, http.StatusOK, map[string]string{
		"received": "true",
		"order_id": order.ID,
	})
}
