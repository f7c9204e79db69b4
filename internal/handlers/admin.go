package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"tradefy/internal/models"
	"tradefy/internal/repositories"
	"tradefy/internal/services/commission"
	"tradefy/internal/utils/pagination"
	"tradefy/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	transactions repositories.TransactionRepository
	commission   commission.Service
	logger       *slog.Logger
}

func NewAdminHandler(transactions repositories.TransactionRepository, commission commission.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		transactions: transactions,
		commission:   commission,
		logger:       logger,
	}
}

func (h *AdminHandler) ListTransactions(c *fiber.Ctx) error {
	status := models.TransactionStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return response.BadRequest(c, "Invalid status filter")
	}

	p := pagination.ParseFromRequest(c)
	list, total, err := h.transactions.List(c.UserContext(), status, p.Limit, p.Offset)
	if err != nil {
		h.logger.ErrorContext(c.UserContext(), "Failed to list transactions", "error", err)
		return response.ServerError(c, "Failed to list transactions")
	}
	p.Total = total

	return c.JSON(pagination.Response(p, list))
}

// Refund records a refund made outside the processor flow: paid -> refunded.
func (h *AdminHandler) Refund(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid transaction id")
	}
	ctx := c.UserContext()

	tx, err := h.transactions.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return response.NotFound(c, err.Error())
		}
		h.logger.ErrorContext(ctx, "Failed to load transaction", "transaction_id", id, "error", err)
		return response.ServerError(c, "Failed to load transaction")
	}

	applied, err := h.transactions.Transition(ctx, tx.ID, models.TransactionStatusPaid, models.TransactionStatusRefunded)
	if err != nil && !errors.Is(err, repositories.ErrInvalidTransition) {
		h.logger.ErrorContext(ctx, "Failed to refund transaction", "transaction_id", id, "error", err)
		return response.ServerError(c, "Failed to refund transaction")
	}
	if !applied {
		return response.Conflict(c, "only paid transactions can be refunded")
	}

	if err := h.commission.InvalidateSeller(ctx, tx.SellerID); err != nil {
		h.logger.WarnContext(ctx, "Failed to invalidate seller commission cache", "seller_id", tx.SellerID, "error", err)
	}
	h.logger.InfoContext(ctx, "Transaction refunded", "transaction_id", tx.ID, "seller_id", tx.SellerID)

	tx.Status = models.TransactionStatusRefunded
	return response.Success(c, "Transaction refunded", tx)
}
