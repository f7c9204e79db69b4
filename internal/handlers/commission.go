package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"tradefy/internal/middleware"
	"tradefy/internal/money"
	"tradefy/internal/services/commission"
	"tradefy/internal/utils"
	"tradefy/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type CommissionHandler struct {
	service commission.Service
	logger  *slog.Logger
}

func NewCommissionHandler(service commission.Service, logger *slog.Logger) *CommissionHandler {
	return &CommissionHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CommissionHandler) Ranks(c *fiber.Ctx) error {
	return response.Success(c, "Rank table", h.service.Table().Bands())
}

func (h *CommissionHandler) Rank(c *fiber.Ctx) error {
	sales, err := salesParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return response.Success(c, "Rank", h.service.Rank(sales))
}

func (h *CommissionHandler) Breakdown(c *fiber.Ctx) error {
	sales, err := salesParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return response.Success(c, "Commission breakdown", h.service.Breakdown(sales))
}

func (h *CommissionHandler) Quote(c *fiber.Ctx) error {
	sales, err := salesParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	price, err := money.Parse(c.Query("price"))
	if err != nil {
		return response.BadRequest(c, "price must be a decimal amount")
	}

	result, err := h.service.Compute(sales, price)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return response.Success(c, "Commission quote", result)
}

func (h *CommissionHandler) SellerCommission(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid seller id")
	}
	// Vendors only see their own standing.
	if claims, ok := utils.ClaimsFromContext(c); ok && !middleware.CanAccess(claims, 0, uint(id)) {
		return response.Forbidden(c)
	}

	b, err := h.service.SellerBreakdown(c.UserContext(), uint(id))
	if err != nil {
		if errors.Is(err, commission.ErrSellerNotFound) {
			return response.NotFound(c, err.Error())
		}
		h.logger.ErrorContext(c.UserContext(), "Failed to compute seller commission", "seller_id", id, "error", err)
		return response.ServerError(c, "Failed to compute seller commission")
	}
	return response.Success(c, "Seller commission", b)
}

func salesParam(c *fiber.Ctx) (int64, error) {
	raw := c.Query("sales")
	if raw == "" {
		return 0, errors.New("sales is required")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, commission.ErrInvalidSales
	}
	return n, nil
}
