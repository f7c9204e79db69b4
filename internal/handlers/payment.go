package handlers

import (
	"errors"
	"log/slog"

	"tradefy/internal/middleware"
	"tradefy/internal/services/payment"
	"tradefy/internal/services/provider"
	"tradefy/internal/utils"
	"tradefy/internal/utils/response"
	"tradefy/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	service payment.Service
	logger  *slog.Logger
}

func NewPaymentHandler(service payment.Service, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger,
	}
}

// CreateSession opens a hosted checkout for a product on behalf of the caller.
func (h *PaymentHandler) CreateSession(c *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		ProductID    uint   `json:"product_id"`
		BuyerContact string `json:"buyer_contact"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	v := validation.New()
	v.Check(input.ProductID > 0, "product_id", "is required")
	contact := v.Contact("buyer_contact", input.BuyerContact)
	if !v.Valid() {
		return response.ValidationError(c, v.Errors)
	}

	req := payment.Request{
		ProductID:    input.ProductID,
		BuyerID:      claims.UserID,
		BuyerEmail:   claims.Email,
		BuyerContact: contact,
	}
	if claims.Role == "vendor" {
		req.ActingSellerID = claims.UserID
	}

	result, err := h.service.CreateSession(c.UserContext(), req)
	if err != nil {
		return h.sessionError(c, err)
	}
	return response.Created(c, "Payment session created", result)
}

func (h *PaymentHandler) sessionError(c *fiber.Ctx, err error) error {
	var perr *provider.Error
	switch {
	case errors.Is(err, payment.ErrProductNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, payment.ErrProductUnavailable):
		return response.Conflict(c, err.Error())
	case errors.Is(err, payment.ErrSelfPurchase):
		return response.Error(c, fiber.StatusForbidden, err.Error())
	case errors.As(err, &perr):
		return response.ErrorWithDetails(c, fiber.StatusBadGateway, "payment provider error", fiber.Map{
			"provider":        perr.Provider,
			"upstream_status": perr.StatusCode,
			"upstream_body":   perr.Body,
		})
	default:
		h.logger.ErrorContext(c.UserContext(), "Payment session failed", "error", err)
		return response.ServerError(c, "Failed to create payment session")
	}
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	tx, err := h.service.GetStatus(c.UserContext(), c.Params("externalId"))
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			return response.NotFound(c, err.Error())
		}
		h.logger.ErrorContext(c.UserContext(), "Failed to load transaction", "error", err)
		return response.ServerError(c, "Failed to load transaction")
	}
	// Not found rather than forbidden, so ids of other users' payments do not leak.
	if !middleware.CanAccess(claims, tx.BuyerID, tx.SellerID) {
		return response.NotFound(c, payment.ErrTransactionNotFound.Error())
	}

	return response.Success(c, "Transaction retrieved", tx)
}
