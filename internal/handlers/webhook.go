package handlers

import (
	"errors"
	"log/slog"

	"tradefy/internal/services/webhook"
	"tradefy/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// Signature headers accepted from the processor, in order of preference.
var (
	MonerooSignatureHeaders = []string{"X-Moneroo-Signature", "X-Signature"}
	StripeSignatureHeaders  = []string{"Stripe-Signature"}
)

type WebhookHandler struct {
	service webhook.Service
	headers []string
	logger  *slog.Logger
}

func NewWebhookHandler(service webhook.Service, headers []string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		headers: headers,
		logger:  logger,
	}
}

// Handle verifies the raw body exactly as received, so it must not be parsed
// before this point.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)

	var signature string
	for _, name := range h.headers {
		if signature = c.Get(name); signature != "" {
			break
		}
	}

	result, err := h.service.Handle(c.UserContext(), body, signature)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{
			"ok":      true,
			"outcome": result.Outcome,
		})
	case errors.Is(err, webhook.ErrInvalidSignature):
		return response.BadRequest(c, "invalid signature")
	case errors.Is(err, webhook.ErrMalformedPayload):
		return response.BadRequest(c, "malformed payload")
	case errors.Is(err, webhook.ErrUnknownTransaction):
		return response.NotFound(c, "unknown transaction")
	default:
		h.logger.ErrorContext(c.UserContext(), "Webhook processing failed", "error", err)
		return response.ServerError(c, "webhook processing failed")
	}
}
